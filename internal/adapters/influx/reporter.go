// Package influx delivers readings to an InfluxDB v1 /write endpoint.
package influx

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/temp-service/pkg/tlsconfig"
)

const (
	clientName    = "temp-agent"
	clientVersion = "1.0.0"

	defaultTimeout = 5 * time.Second
)

// Config holds the sink destination and credentials. Nothing here is mutated
// after New.
type Config struct {
	// BaseURL of the sink, e.g. "http://influx:8086".
	BaseURL string

	// Database written to (the db query parameter).
	Database string

	// Measurement name carried in the line protocol body.
	Measurement string

	// Credentials as a single "user:pass" string for HTTP Basic auth.
	Credentials string

	// Timeout for one delivery attempt. Defaults to 5s.
	Timeout time.Duration

	// Optional client certificate and CA for an HTTPS sink.
	TLSCert string
	TLSKey  string
	TLSCA   string
}

// Reporter implements ports.Reporter with best-effort, at-most-once delivery:
// one authenticated POST per complete reading, no retry, no buffering.
// Deliveries run concurrently and failures never reach the caller.
type Reporter struct {
	client      *http.Client
	writeURL    string
	measurement string
	username    string
	password    string
}

// New validates the config and builds the reporter.
func New(cfg Config) (*Reporter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sink base URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("sink database is required")
	}
	if cfg.Measurement == "" {
		return nil, fmt.Errorf("sink measurement is required")
	}

	username, password, _ := strings.Cut(cfg.Credentials, ":")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{Timeout: timeout}
	if cfg.TLSCert != "" {
		tlsCfg, err := tlsconfig.LoadClientTLS(cfg.TLSCert, cfg.TLSKey, cfg.TLSCA)
		if err != nil {
			return nil, fmt.Errorf("load sink TLS config: %w", err)
		}
		client.Transport = &http.Transport{TLSClientConfig: tlsCfg}
	}

	return &Reporter{
		client:      client,
		writeURL:    strings.TrimRight(cfg.BaseURL, "/") + "/write?db=" + url.QueryEscape(cfg.Database),
		measurement: cfg.Measurement,
		username:    username,
		password:    password,
	}, nil
}

// HandleReading validates the reading and, if complete, delivers it in its
// own goroutine. The caller never waits on network I/O.
//
// A reading missing either field is dropped without a network call. That is
// the expected state before the first successful sample, so it is not logged
// as an error.
func (r *Reporter) HandleReading(reading domain.Reading) {
	if !reading.Complete() {
		log.Debug().Msg("dropping incomplete reading")
		return
	}
	go r.deliver(reading)
}

// deliver issues the single write request for one reading.
func (r *Reporter) deliver(reading domain.Reading) {
	body := fmt.Sprintf("%s celsius=%g %d", r.measurement, reading.Value(), reading.Timestamp.UnixNano())

	req, err := http.NewRequest(http.MethodPost, r.writeURL, strings.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("failed to build sink request")
		return
	}
	req.SetBasicAuth(r.username, r.password)
	req.Header.Set("User-Agent", clientName+"/"+clientVersion)

	resp, err := r.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", r.writeURL).Msg("failed to deliver reading")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		log.Error().
			Int("status", resp.StatusCode).
			Str("url", r.writeURL).
			Msg("sink rejected reading")
		return
	}

	log.Debug().
		Float64("celsius", reading.Value()).
		Str("measurement", r.measurement).
		Msg("delivered reading")
}
