// Package telemetry publishes user-activity events (resolutions, copies,
// catalog queries) to pluggable sinks.
package telemetry

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"noaa-archive/pkg/logging"
)

// Actions reported by the services
const (
	ActionResolve = "resolve"
	ActionCopy    = "copy"
	ActionList    = "list"
	ActionCatalog = "catalog"
)

// Event is one user-visible action
type Event struct {
	Action   string    `json:"action"`
	Archive  string    `json:"archive"`
	Filename string    `json:"filename,omitempty"`
	Outcome  string    `json:"outcome"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Observer receives events. Implementations must not block the caller on
// slow sinks and must be safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Observe(context.Context, Event) {}

// LogObserver writes events through the structured logger
type LogObserver struct {
	logger *logging.StructuredLogger
	clock  clockwork.Clock
}

// NewLogObserver creates an observer that logs each event at INFO
func NewLogObserver(logger *logging.StructuredLogger, clock clockwork.Clock) *LogObserver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LogObserver{logger: logger, clock: clock}
}

func (o *LogObserver) Observe(ctx context.Context, e Event) {
	e = stamp(e, o.clock)
	o.logger.Info(ctx, "[ACTIVITY] "+e.Action, logging.Fields{
		"archive":  e.Archive,
		"filename": e.Filename,
		"outcome":  e.Outcome,
		"detail":   e.Detail,
		"at":       e.At.Format(time.RFC3339Nano),
	})
}

// Multi fans an event out to several observers in order
type Multi []Observer

func (m Multi) Observe(ctx context.Context, e Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ctx, e)
		}
	}
}

func stamp(e Event, clock clockwork.Clock) Event {
	if e.At.IsZero() {
		e.At = clock.Now().UTC()
	}
	return e
}
