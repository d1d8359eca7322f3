package http

import (
	"net/http"
	"time"
)

const (
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second

	// headroom for storing and writing the fallback session after generation gives up
	generationMargin = 10 * time.Second
)

// WriteTimeout returns a write deadline that outlasts a session create waiting
// on the full generation timeout.
func WriteTimeout(generation time.Duration) time.Duration {
	if d := generation + generationMargin; d > DefaultWriteTimeout {
		return d
	}
	return DefaultWriteTimeout
}

// NewServer builds the HTTP server with timeouts derived from the generation timeout.
func NewServer(addr string, handler http.Handler, generationTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: WriteTimeout(generationTimeout),
	}
}
