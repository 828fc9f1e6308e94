// Package resolver turns user-supplied archive filenames into public object
// URLs, probing the archive to confirm the object exists.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/telemetry"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

// Prober checks whether an object exists at url. It returns Exists or
// Missing, or a *TransportError when existence cannot be determined.
type Prober interface {
	Probe(ctx context.Context, url string) (ProbeResult, error)
}

// BaseURLs holds the public root of each archive
type BaseURLs struct {
	NEXRAD string
	GOES   string
}

func (b BaseURLs) forKind(kind archive.Kind) (string, error) {
	switch kind {
	case archive.NEXRAD:
		return b.NEXRAD, nil
	case archive.GOES:
		return b.GOES, nil
	default:
		return "", fmt.Errorf("%w: %d", archive.ErrUnknownKind, int(kind))
	}
}

// Resolver validates, derives and probes. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	bases    BaseURLs
	prober   Prober
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	observer telemetry.Observer
}

// Option customises a Resolver
type Option func(*Resolver)

// WithLogger sets the logger; the default discards output.
func WithLogger(l *logging.StructuredLogger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMetrics records outcomes and probe latency on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Resolver) { r.metrics = c }
}

// WithObserver reports every resolution to o.
func WithObserver(o telemetry.Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// New creates a resolver over the given archive roots
func New(bases BaseURLs, prober Prober, opts ...Option) *Resolver {
	r := &Resolver{
		bases:    bases,
		prober:   prober,
		logger:   logging.NewDiscardLogger(),
		observer: telemetry.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a raw filename to an Outcome. Names that fail the grammar are
// reported as InvalidFormat without touching the network. A probe that
// cannot determine existence returns a *TransportError and no Outcome.
func (r *Resolver) Resolve(ctx context.Context, kind archive.Kind, filename string) (Outcome, error) {
	name := strings.TrimSpace(filename)

	base, err := r.bases.forKind(kind)
	if err != nil {
		return Outcome{}, err
	}

	loc, err := archive.Derive(kind, name)
	if err != nil {
		if errors.Is(err, archive.ErrInvalidFormat) {
			r.logger.Debug(ctx, "[RESOLVE] Filename rejected by grammar", logging.Fields{
				"archive":  kind.String(),
				"filename": name,
			})
			return r.finish(ctx, kind, name, InvalidFormat(), nil), nil
		}
		return Outcome{}, err
	}

	url := loc.URL(base)
	start := time.Now()
	result, err := r.prober.Probe(ctx, url)
	if r.metrics != nil {
		r.metrics.RecordProbe(kind.String(), time.Since(start), err != nil)
	}
	if err != nil {
		if !IsTransportError(err) {
			err = &TransportError{URL: url, Err: err}
		}
		r.finish(ctx, kind, name, Outcome{}, err)
		return Outcome{}, err
	}

	switch result {
	case Exists:
		return r.finish(ctx, kind, name, Resolved(url), nil), nil
	case Missing:
		return r.finish(ctx, kind, name, NotFound(), nil), nil
	default:
		err := &TransportError{URL: url, Err: fmt.Errorf("prober returned %v", result)}
		r.finish(ctx, kind, name, Outcome{}, err)
		return Outcome{}, err
	}
}

// Result pairs an input filename with its outcome
type Result struct {
	Filename string
	Outcome  Outcome
}

// ResolveMany resolves names sequentially in input order. The first
// transport failure stops the batch; results gathered so far are returned
// with the error.
func (r *Resolver) ResolveMany(ctx context.Context, kind archive.Kind, names []string) ([]Result, error) {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		outcome, err := r.Resolve(ctx, kind, name)
		if err != nil {
			return results, fmt.Errorf("resolve %q: %w", name, err)
		}
		results = append(results, Result{Filename: name, Outcome: outcome})
	}
	return results, nil
}

func (r *Resolver) finish(ctx context.Context, kind archive.Kind, name string, outcome Outcome, err error) Outcome {
	status := outcome.Status.String()
	detail := outcome.URL
	if err != nil {
		status = "transport_error"
		detail = err.Error()
	}

	if r.metrics != nil {
		r.metrics.RecordResolution(kind.String(), status)
	}
	r.observer.Observe(ctx, telemetry.Event{
		Action:   telemetry.ActionResolve,
		Archive:  kind.String(),
		Filename: name,
		Outcome:  status,
		Detail:   detail,
	})
	return outcome
}
