// Package nba implements the stats.nba.com provider: a thin HTTP client
// plus per-kind endpoint handlers returning tabular result sets.
//
// The client deliberately does not retry: failed work items are retried
// by re-running the whole operation, at which point the dedup filter
// excludes everything that already succeeded. Pacing is likewise the
// orchestrator's job, so concurrent fetch kinds share one budget.
package nba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/provider"
	"github.com/LUNARKN1GHT/NBA-Analytics/internal/table"
)

// DefaultBaseURL is the public stats API host.
const DefaultBaseURL = "https://stats.nba.com"

// ClientConfig configures the stats client.
type ClientConfig struct {
	// BaseURL is the API host (default: DefaultBaseURL).
	BaseURL string

	// Timeout for individual requests (default: 30s). The stats API
	// hangs rather than rejecting unrecognized clients, so a timeout is
	// load-bearing.
	Timeout time.Duration

	// Headers to add to all requests, merged over the browser-like
	// defaults the API requires.
	Headers map[string]string

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper
}

// DefaultClientConfig returns a config with the header set the stats API
// expects from browser traffic. Requests without these stall or return
// empty bodies.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
		Headers: map[string]string{
			"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			"Referer":            "https://www.nba.com/",
			"Origin":             "https://www.nba.com",
			"Accept":             "application/json, text/plain, */*",
			"x-nba-stats-origin": "stats",
			"x-nba-stats-token":  "true",
		},
	}
}

// Client fetches stats endpoints and decodes their result sets.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates a stats client from config; nil selects defaults.
func NewClient(config *ClientConfig) *Client {
	base := DefaultClientConfig()
	if config != nil {
		if config.BaseURL != "" {
			base.BaseURL = config.BaseURL
		}
		if config.Timeout != 0 {
			base.Timeout = config.Timeout
		}
		for k, v := range config.Headers {
			base.Headers[k] = v
		}
		base.Transport = config.Transport
	}
	return &Client{
		config: base,
		httpClient: &http.Client{
			Timeout:   base.Timeout,
			Transport: base.Transport,
		},
	}
}

// get issues one API call and decodes the named result set.
func (c *Client) get(ctx context.Context, kind provider.Kind, path string, query url.Values, resultSet string) (*table.Table, error) {
	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &provider.RemoteError{Kind: kind, Class: provider.ClassFatal, Err: err}
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &provider.RemoteError{Kind: kind, Class: classifyNetError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &provider.RemoteError{
			Kind:   kind,
			Class:  classifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &provider.RemoteError{Kind: kind, Class: provider.ClassFatal, Err: fmt.Errorf("decode response: %w", err)}
	}

	t, err := env.resultTable(resultSet)
	if err != nil {
		return nil, &provider.RemoteError{Kind: kind, Class: provider.ClassFatal, Err: err}
	}
	return t, nil
}

// classifyStatus maps HTTP status codes onto the error taxonomy:
// throttling and server faults are retryable on a later run, everything
// else will repeat deterministically.
func classifyStatus(status int) provider.Class {
	if status == http.StatusTooManyRequests || status >= 500 {
		return provider.ClassTransient
	}
	return provider.ClassFatal
}

func classifyNetError(err error) provider.Class {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, os.ErrDeadlineExceeded) {
		return provider.ClassTransient
	}
	// url.Error wraps dial/reset failures that carry no net.Error; treat
	// transport-level failures as transient.
	var ue *url.Error
	if errors.As(err, &ue) {
		return provider.ClassTransient
	}
	return provider.ClassFatal
}
