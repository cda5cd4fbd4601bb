package protocol

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/errors"
)

const (
	// DefaultChunkSize is the read size used by the HTTP and FTP strategies.
	DefaultChunkSize = 8192
	// DefaultTimeout bounds connection setup and every read from the server.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent is sent when HTTPOptions.UserAgent is empty.
	DefaultUserAgent = "multifetch"
)

// HTTPOptions configures the HTTP(S) strategy.
type HTTPOptions struct {
	Timeout   time.Duration
	ChunkSize int
	UserAgent string
}

// HTTPStrategy downloads http and https URIs with a GET request.
type HTTPStrategy struct {
	client    *http.Client
	chunkSize int
	userAgent string
}

// NewHTTPStrategy creates an HTTP strategy. Zero options fall back to defaults.
func NewHTTPStrategy(opts HTTPOptions) *HTTPStrategy {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	dialer := &net.Dialer{Timeout: opts.Timeout}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &readTimeoutConn{Conn: conn, timeout: opts.Timeout}, nil
		},
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		DisableKeepAlives:     true,
	}

	return &HTTPStrategy{
		client:    &http.Client{Transport: transport},
		chunkSize: opts.ChunkSize,
		userAgent: opts.UserAgent,
	}
}

// Fetch performs a GET on uri and streams the body into dst.
func (s *HTTPStrategy) Fetch(ctx context.Context, uri string, dst io.Writer, cancelled CancelCheck) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrInvalidURI, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	logger.Debug("Sending HTTP request", logger.Fields{"uri": uri})

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, recoverable("request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, recoverable("response", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	return copyChunks(dst, resp.Body, s.chunkSize, cancelled)
}

// readTimeoutConn fails any single Read that waits longer than timeout, so a
// server that stalls in the middle of a body cannot hold a worker forever.
type readTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readTimeoutConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
