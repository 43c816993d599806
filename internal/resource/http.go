package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPOptions configures the network strategy.
type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	// MaxBytes caps the response body; zero means DefaultMaxBytes.
	MaxBytes int64
	// Client overrides the client built from Timeout.
	Client *http.Client
}

// Defaults for HTTPOptions.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 32 << 20
)

// HTTPStrategy fetches http and https references.
type HTTPStrategy struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPStrategy builds the strategy, filling zero options with defaults.
func NewHTTPStrategy(opts HTTPOptions) *HTTPStrategy {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: opts.Timeout,
			},
			Timeout: opts.Timeout,
		}
	}

	return &HTTPStrategy{client: client, userAgent: opts.UserAgent, maxBytes: opts.MaxBytes}
}

// Name implements Strategy.
func (*HTTPStrategy) Name() string { return "http" }

// Accepts implements Strategy.
func (*HTTPStrategy) Accepts(ref string, _ Context) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch implements Strategy. Any non-2xx status is a failure.
func (s *HTTPStrategy) Fetch(ctx context.Context, ref string, _ Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", s.maxBytes)
	}

	return data, nil
}
