// Package gin adapts the discovery middleware to gin.
package gin

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	x402http "github.com/coinbase/x402-discovery/http"
)

const noWritten = -1

// DiscoveryMiddleware rewrites legacy 402 responses produced by later gin
// handlers. It accepts the same options as the net/http middleware.
func DiscoveryMiddleware(opts ...x402http.MiddlewareOption) gin.HandlerFunc {
	middleware := x402http.DiscoveryMiddleware(opts...)

	return func(c *gin.Context) {
		original := c.Writer

		middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writer := &responseWriter{
				ResponseWriter: original,
				w:              w,
				status:         http.StatusOK,
				size:           noWritten,
			}
			c.Writer = writer
			c.Request = r

			c.Next()

			// gin defers the status line; commit it while the interceptor is still in place
			writer.WriteHeaderNow()
		})).ServeHTTP(original, c.Request)

		c.Writer = original
	}
}

// responseWriter routes gin's writes through the interceptor while keeping
// gin's lazy WriteHeader semantics
type responseWriter struct {
	gin.ResponseWriter
	w      http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) Header() http.Header {
	return w.w.Header()
}

func (w *responseWriter) WriteHeader(code int) {
	if code > 0 && !w.Written() {
		w.status = code
	}
}

func (w *responseWriter) WriteHeaderNow() {
	if !w.Written() {
		w.size = 0
		w.w.WriteHeader(w.status)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.WriteHeaderNow()
	n, err := w.w.Write(b)
	w.size += n
	return n, err
}

func (w *responseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *responseWriter) Status() int {
	return w.status
}

func (w *responseWriter) Size() int {
	return w.size
}

func (w *responseWriter) Written() bool {
	return w.size != noWritten
}

func (w *responseWriter) Flush() {
	w.WriteHeaderNow()
	if flusher, ok := w.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.w.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("hijacking not supported")
}

func (w *responseWriter) Pusher() http.Pusher {
	if pusher, ok := w.w.(http.Pusher); ok {
		return pusher
	}
	return nil
}
