// Package echo adapts the discovery middleware to echo.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	x402http "github.com/coinbase/x402-discovery/http"
)

// DiscoveryMiddleware rewrites legacy 402 responses produced by later echo
// handlers. Handler errors are rendered by the echo error handler inside the
// middleware, so an echo.HTTPError with status 402 is translated too.
func DiscoveryMiddleware(opts ...x402http.MiddlewareOption) echo.MiddlewareFunc {
	middleware := x402http.DiscoveryMiddleware(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			original := res.Writer

			middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				res.Writer = w
				if err := next(c); err != nil {
					c.Error(err)
				}
			})).ServeHTTP(original, c.Request())

			res.Writer = original
			return nil
		}
	}
}
