// Package http provides the net/http side of x402 discovery: the middleware
// that rewrites legacy 402 responses and the client used to call a remote
// facilitator with per-endpoint auth headers.
package http

import (
	"net/http"

	"github.com/coinbase/x402-discovery/discovery"
)

// ============================================================================
// Constructor functions with simpler names
// ============================================================================

// NewFacilitatorClient creates a new HTTP facilitator client
func NewFacilitatorClient(config *FacilitatorConfig) *HTTPFacilitatorClient {
	return NewHTTPFacilitatorClient(config)
}

// ============================================================================
// Convenience functions
// ============================================================================

// Wrap applies the discovery middleware to a single handler
func Wrap(handler http.Handler, opts ...MiddlewareOption) http.Handler {
	return DiscoveryMiddleware(opts...)(handler)
}

// WrapFunc applies the discovery middleware to a handler function
func WrapFunc(fn http.HandlerFunc, opts ...MiddlewareOption) http.Handler {
	return Wrap(fn, opts...)
}

// WithDefaultFacilitatorURL is shorthand for a translator advertising url
// when the legacy payload names no facilitator
func WithDefaultFacilitatorURL(url string) MiddlewareOption {
	return WithTranslator(discovery.NewTranslator(discovery.WithDefaultFacilitatorURL(url)))
}
