// Package probe checks object existence in the public archives over HTTP.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"noaa-archive/internal/resolver"
)

// maxDrain bounds how much of a response body is read before closing.
const maxDrain = 64 << 10

// HTTPProber implements resolver.Prober with a single HEAD or GET request.
// It never retries.
type HTTPProber struct {
	method     string
	httpClient *http.Client
}

// NewHTTPProber creates a prober. method is HEAD or GET; anything else falls
// back to HEAD.
func NewHTTPProber(method string, timeout time.Duration) *HTTPProber {
	return NewHTTPProberWithClient(method, &http.Client{Timeout: timeout})
}

// NewHTTPProberWithClient uses the given client, e.g. one with a custom
// transport.
func NewHTTPProberWithClient(method string, client *http.Client) *HTTPProber {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m != http.MethodGet {
		m = http.MethodHead
	}
	return &HTTPProber{method: m, httpClient: client}
}

// Method returns the HTTP method used for probes
func (p *HTTPProber) Method() string {
	return p.method
}

// Probe maps 2xx to Exists and 404 to Missing. Every other status, and any
// connection or timeout error, is a *resolver.TransportError.
func (p *HTTPProber) Probe(ctx context.Context, url string) (resolver.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, p.method, url, nil)
	if err != nil {
		return 0, &resolver.TransportError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, &resolver.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	// Small bodies are drained so the connection is reused. Larger ones,
	// such as a GET on a full radar volume, are closed unread.
	if resp.ContentLength >= 0 && resp.ContentLength <= maxDrain {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resolver.Exists, nil
	case resp.StatusCode == http.StatusNotFound:
		return resolver.Missing, nil
	default:
		return 0, &resolver.TransportError{URL: url, StatusCode: resp.StatusCode}
	}
}
