package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/console"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/influx"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/memory"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/mock"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/sqlite"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/w1"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/ports"
	"github.com/quentinrf/plant-monitor/services/temp-service/pkg/tlsconfig"
)

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("starting temperature service")

	// Read configuration from environment
	config := loadConfig()

	// Initialize history repository
	var repo domain.ReadingRepository
	switch config.RepoType {
	case "sqlite":
		r, err := sqlite.NewReadingRepository(config.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db_path", config.DBPath).Msg("failed to open SQLite database")
		}
		defer r.Close()
		repo = r
		log.Info().Str("db_path", config.DBPath).Msg("initialized SQLite repository")
	default:
		repo = memory.NewReadingRepository()
		log.Info().Msg("initialized in-memory repository")
	}

	// Initialize sensor
	var sensor ports.TemperatureSensor
	switch config.SensorType {
	case "w1":
		sensor = w1.NewSensor()
		log.Info().Str("device_id", config.DeviceID).Msg("initialized w1 sensor")
	default:
		sensor = mock.NewFakeSensor(21.0, 1.5) // 21±1.5°C (room temperature)
		log.Info().Msg("initialized mock sensor")
	}
	defer sensor.Close()

	// Initialize reporter
	reporter, err := influx.New(influx.Config{
		BaseURL:     config.SinkURL,
		Database:    config.SinkDatabase,
		Measurement: config.SinkMeasurement,
		Credentials: config.SinkCredentials,
		TLSCert:     config.SinkTLSCert,
		TLSKey:      config.SinkTLSKey,
		TLSCA:       config.SinkTLSCA,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure sink reporter")
	}
	log.Info().Str("url", config.SinkURL).Str("db", config.SinkDatabase).Msg("initialized sink reporter")

	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	if config.TLSCert != "" {
		tlsCfg, err := tlsconfig.LoadServerTLS(config.TLSCert, config.TLSKey, config.TLSCA)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load TLS config")
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("TLS_CERT not set — starting without TLS (dev mode only)")
	}

	// Create gRPC ops server: standard health service + reflection
	grpcServer := grpc.NewServer(serverOpts...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", config.Port))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}

	log.Info().Str("port", config.Port).Msg("gRPC ops server listening")

	// Start server in goroutine
	go func() {
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal().Err(err).Msg("failed to serve")
		}
	}()

	// Start the sampling monitor
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ports.StartMonitor(ctx, ports.MonitorConfig{
		DeviceID:     config.DeviceID,
		Interval:     config.SampleInterval,
		TimerEnabled: config.TimerEnabled,
		ReadTimeout:  config.ReadTimeout,
		Retention:    config.Retention,
	}, sensor, console.NewDisplay(), reporter, repo)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Graceful shutdown
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	cancel() // Stop monitor
	grpcServer.GracefulStop()

	log.Info().Msg("server stopped")
}

// Config holds application configuration
type Config struct {
	Port            string
	DeviceID        string
	SampleInterval  time.Duration
	TimerEnabled    bool
	ReadTimeout     time.Duration
	Retention       time.Duration
	SensorType      string // "mock" | "w1"
	RepoType        string // "memory" | "sqlite"
	DBPath          string // SQLite database file path (used when RepoType=sqlite)
	SinkURL         string
	SinkDatabase    string
	SinkMeasurement string
	SinkCredentials string // "user:pass"
	TLSCert         string // path to this service's certificate
	TLSKey          string // path to this service's private key
	TLSCA           string // path to the CA certificate
	SinkTLSCert     string
	SinkTLSKey      string
	SinkTLSCA       string
}

// loadConfig reads configuration from environment variables
func loadConfig() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "50052"
	}

	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		deviceID = "28-000005e2fdc3"
	}

	sampleInterval := 5 * time.Second
	if intervalStr := os.Getenv("SAMPLE_INTERVAL"); intervalStr != "" {
		if d, err := time.ParseDuration(intervalStr); err == nil {
			sampleInterval = d
		}
	}

	timerEnabled := os.Getenv("TIMER_ENABLED") != "false"

	readTimeout := 2 * time.Second
	if timeoutStr := os.Getenv("READ_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil {
			readTimeout = d
		}
	}

	retention := 30 * 24 * time.Hour
	if retentionStr := os.Getenv("RETENTION"); retentionStr != "" {
		if d, err := time.ParseDuration(retentionStr); err == nil {
			retention = d
		}
	}

	sensorType := os.Getenv("SENSOR_TYPE")
	if sensorType == "" {
		sensorType = "mock"
	}

	repoType := os.Getenv("REPO_TYPE")
	if repoType == "" {
		repoType = "memory"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./temperature.db"
	}

	sinkURL := os.Getenv("SINK_URL")
	if sinkURL == "" {
		sinkURL = "http://localhost:8086"
	}

	sinkDatabase := os.Getenv("SINK_DB")
	if sinkDatabase == "" {
		sinkDatabase = "telemetry"
	}

	sinkMeasurement := os.Getenv("SINK_MEASUREMENT")
	if sinkMeasurement == "" {
		sinkMeasurement = "temperature"
	}

	return Config{
		Port:            port,
		DeviceID:        deviceID,
		SampleInterval:  sampleInterval,
		TimerEnabled:    timerEnabled,
		ReadTimeout:     readTimeout,
		Retention:       retention,
		SensorType:      sensorType,
		RepoType:        repoType,
		DBPath:          dbPath,
		SinkURL:         sinkURL,
		SinkDatabase:    sinkDatabase,
		SinkMeasurement: sinkMeasurement,
		SinkCredentials: os.Getenv("SINK_CREDENTIALS"),
		TLSCert:         os.Getenv("TLS_CERT"),
		TLSKey:          os.Getenv("TLS_KEY"),
		TLSCA:           os.Getenv("TLS_CA"),
		SinkTLSCert:     os.Getenv("SINK_TLS_CERT"),
		SinkTLSKey:      os.Getenv("SINK_TLS_KEY"),
		SinkTLSCA:       os.Getenv("SINK_TLS_CA"),
	}
}
