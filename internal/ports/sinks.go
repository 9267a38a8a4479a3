package ports

import (
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
)

// Display renders the current reading somewhere local (console, LCD).
// Implementations must return promptly and must tolerate an incomplete
// reading (both fields absent before the first successful sample).
type Display interface {
	Show(reading domain.Reading)
}

// Reporter forwards readings to a remote sink. HandleReading is
// fire-and-forget: implementations validate and deliver on their own time
// and must never block the caller on network I/O.
type Reporter interface {
	HandleReading(reading domain.Reading)
}
