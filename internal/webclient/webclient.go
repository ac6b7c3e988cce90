// Package webclient is the outbound HTTP layer used to reach the AI provider.
package webclient

import (
	"context"
	"net/http"
	"time"
)

// WebClient executes a single request. Implementations never retry.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// Config holds construction options.
type Config struct {
	// Timeout bounds each request end to end. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxBodyBytes caps the response body read. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 4 << 20
)
