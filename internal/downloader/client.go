// Package downloader streams remote media over HTTP without touching
// the bytes. It exists for media that needs no transcoding at all: the
// response body is handed to the caller as-is.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"streamgate/internal/config"
)

// Client implements raw HTTP passthrough streaming.
type Client struct {
	// streamClient has no overall timeout: media streams are long-lived
	// and their duration is unknowable up front. Only the wait for
	// response headers is bounded.
	streamClient *http.Client
	userAgent    string
	logger       *slog.Logger
}

// New creates a passthrough client.
func New(cfg config.DownloadConfig) *Client {
	headerTimeout := cfg.HeaderTimeout
	if headerTimeout <= 0 {
		headerTimeout = 30 * time.Second
	}
	return &Client{
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: headerTimeout,
			},
		},
		userAgent: cfg.UserAgent,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger used for stream lifecycle events.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Stream opens the media URL with the given headers forwarded and
// returns the live response body. The referer fills in when the header
// map carries none; a Referer already in the map wins, so a caller
// override is never clobbered. Caller closes the reader.
func (c *Client) Stream(ctx context.Context, url string, headers map[string]string, referer string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if referer != "" && req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	c.logger.Debug("passthrough stream opened",
		"url", url,
		"status", resp.StatusCode,
		"content_length", resp.ContentLength,
	)
	return resp.Body, nil
}

// StatusError reports a non-success response from the media host.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("media host returned status %d for %s", e.StatusCode, e.URL)
}
