package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/coinbase/x402-discovery/discovery"
	"github.com/coinbase/x402-discovery/extensions/bazaar"
)

// MiddlewareConfig configures the discovery middleware
type MiddlewareConfig struct {
	// Logger receives fail-open warnings (defaults to a production zap logger)
	Logger *zap.Logger

	// Translator builds the discovery document (defaults to discovery.NewTranslator())
	Translator *discovery.Translator

	// ValidateExtensions checks the bazaar extension against its schema and
	// warns when it does not match. The response is sent either way.
	ValidateExtensions bool

	// ResourceURL derives the resource URL from the request (defaults to BuildResourceURL)
	ResourceURL func(r *http.Request) string
}

// MiddlewareOption configures the discovery middleware
type MiddlewareOption func(*MiddlewareConfig)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.Logger = logger
	}
}

// WithTranslator sets the translator
func WithTranslator(translator *discovery.Translator) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.Translator = translator
	}
}

// WithExtensionValidation enables schema validation of the bazaar extension
func WithExtensionValidation(enabled bool) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.ValidateExtensions = enabled
	}
}

// WithResourceURL overrides how the resource URL is derived from the request
func WithResourceURL(fn func(r *http.Request) string) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.ResourceURL = fn
	}
}

// DiscoveryMiddleware rewrites legacy 402 Payment Required responses into the
// x402 v2 discovery document.
//
// The wrapped handler always runs to completion. Responses with any other
// status are streamed through untouched and never buffered. A 402 body is
// buffered, translated, and replaced together with the discovery headers.
// If the body cannot be translated the original 402 is sent byte for byte
// and a warning is logged.
func DiscoveryMiddleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	config := &MiddlewareConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		config.Logger = logger
	}
	if config.Translator == nil {
		config.Translator = discovery.NewTranslator()
	}
	if config.ResourceURL == nil {
		config.ResourceURL = BuildResourceURL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			interceptor := &paymentRequiredInterceptor{w: w}
			next.ServeHTTP(interceptor, r)

			if !interceptor.buffering {
				return
			}
			config.respond(w, r, interceptor)
		})
	}
}

func (c *MiddlewareConfig) respond(w http.ResponseWriter, r *http.Request, interceptor *paymentRequiredInterceptor) {
	logger := c.Logger.With(zap.String("path", r.URL.Path))

	result := c.translate(interceptor.body.Bytes(), r)
	if !result.OK() {
		logger.Warn("payment required response left untouched", zap.NamedError("reason", result.Reason))
		interceptor.replay()
		return
	}

	payload, err := json.Marshal(result.Document)
	if err != nil {
		logger.Warn("payment required response left untouched", zap.NamedError("reason", err))
		interceptor.replay()
		return
	}

	if c.ValidateExtensions {
		if ext, ok := result.Document.Extensions[bazaar.BAZAAR].(bazaar.DiscoveryExtension); ok {
			if validation := bazaar.ValidateDiscoveryExtension(ext); !validation.Valid {
				logger.Warn("bazaar extension does not match its schema", zap.Strings("errors", validation.Errors))
			}
		}
	}

	offer := result.Document.Accepts[0]
	logger.Debug("payment required response translated",
		zap.String("network", offer.Network),
		zap.String("amount", offer.Amount),
	)

	header := w.Header()
	resetHeader(header, interceptor.header)
	setDiscoveryHeaders(header, result, len(payload))
	w.WriteHeader(interceptor.status)
	if _, err := w.Write(payload); err != nil {
		logger.Debug("failed to write discovery document", zap.Error(err))
	}
}

// translate never lets a panic escape; a panicking translation is treated as
// not translatable.
func (c *MiddlewareConfig) translate(body []byte, r *http.Request) (result discovery.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = discovery.NotTranslatable(fmt.Errorf("translation panicked: %v", rec))
		}
	}()
	return c.Translator.Translate(body, c.ResourceURL(r))
}

// paymentRequiredInterceptor wraps the ResponseWriter and decides at commit
// time whether the response is passed through or held back for translation.
type paymentRequiredInterceptor struct {
	w         http.ResponseWriter
	status    int
	committed bool

	// buffering is set when the handler committed a 402
	buffering bool
	header    http.Header
	body      bytes.Buffer
}

func (i *paymentRequiredInterceptor) Header() http.Header {
	return i.w.Header()
}

func (i *paymentRequiredInterceptor) WriteHeader(statusCode int) {
	if i.committed {
		return
	}

	// Informational responses are forwarded and do not commit
	if statusCode >= 100 && statusCode < 200 && statusCode != http.StatusSwitchingProtocols {
		i.w.WriteHeader(statusCode)
		return
	}

	i.committed = true
	i.status = statusCode

	if statusCode == http.StatusPaymentRequired {
		i.buffering = true
		i.header = i.w.Header().Clone()
		return
	}

	i.w.WriteHeader(statusCode)
}

func (i *paymentRequiredInterceptor) Write(b []byte) (int, error) {
	// If the handler calls Write without WriteHeader, it implies 200 OK.
	if !i.committed {
		i.WriteHeader(http.StatusOK)
	}
	if i.buffering {
		return i.body.Write(b)
	}
	return i.w.Write(b)
}

// replay sends the held back 402 exactly as the handler produced it
func (i *paymentRequiredInterceptor) replay() {
	resetHeader(i.w.Header(), i.header)
	i.w.WriteHeader(i.status)
	_, _ = i.w.Write(i.body.Bytes())
}

// Flush implements http.Flusher. Buffered 402 responses are not flushed.
func (i *paymentRequiredInterceptor) Flush() {
	if !i.committed {
		i.WriteHeader(http.StatusOK)
	}
	if i.buffering {
		return
	}
	if flusher, ok := i.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker to support connection hijacking.
func (i *paymentRequiredInterceptor) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if i.buffering {
		return nil, nil, errors.New("cannot hijack a buffered payment required response")
	}
	if hijacker, ok := i.w.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("hijacking not supported")
}

// Push implements http.Pusher to support HTTP/2 server push.
func (i *paymentRequiredInterceptor) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := i.w.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Unwrap exposes the underlying writer to http.ResponseController
func (i *paymentRequiredInterceptor) Unwrap() http.ResponseWriter {
	return i.w
}
