package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Status is the closed set of resolution outcomes
type Status int

const (
	// StatusResolved means the file exists at Outcome.URL
	StatusResolved Status = iota + 1
	// StatusNotFound means the filename parsed but no candidate URL exists
	StatusNotFound
	// StatusInvalidFormat means the filename does not match the archive's naming scheme
	StatusInvalidFormat
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusNotFound:
		return "not_found"
	case StatusInvalidFormat:
		return "invalid_format"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one filename. URL is set only when
// Status is StatusResolved.
type Outcome struct {
	Status Status
	URL    string
}

// Resolved reports a file found at url
func Resolved(url string) Outcome { return Outcome{Status: StatusResolved, URL: url} }

// NotFound reports a well-formed filename with no matching object
func NotFound() Outcome { return Outcome{Status: StatusNotFound} }

// InvalidFormat reports a filename the archive's parser rejected
func InvalidFormat() Outcome { return Outcome{Status: StatusInvalidFormat} }

func (o Outcome) String() string {
	if o.Status == StatusResolved {
		return fmt.Sprintf("resolved(%s)", o.URL)
	}
	return o.Status.String()
}

// ProbeResult is the answer of an existence probe that reached the archive
type ProbeResult int

const (
	Exists ProbeResult = iota + 1
	Missing
)

func (r ProbeResult) String() string {
	switch r {
	case Exists:
		return "exists"
	case Missing:
		return "missing"
	default:
		return "unknown"
	}
}

// TransportError reports a probe that could not determine existence:
// connection failure, timeout, or an unexpected HTTP status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("probe %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether a later attempt might succeed. Callers decide
// whether to retry; the resolver never does.
func (e *TransportError) IsTransient() bool {
	if e.StatusCode != 0 {
		return e.StatusCode >= 500 || e.StatusCode == 429
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr)
}

// IsTransportError reports whether err carries a *TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
