// x402-discovery puts the discovery middleware in front of a service that
// still answers 402 with the legacy payload.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coinbase/x402-discovery/discovery"
	x402http "github.com/coinbase/x402-discovery/http"
	"github.com/coinbase/x402-discovery/internal/config"
	"github.com/coinbase/x402-discovery/networks"
	"github.com/coinbase/x402-discovery/pkg/coinbasefacilitator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "supported":
		err = runSupported(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("x402-discovery - rewrites legacy 402 responses into x402 v2 discovery documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  x402-discovery serve [flags]      - Run the discovery gateway in front of UPSTREAM_URL")
	fmt.Println("  x402-discovery supported [flags]  - Query the Coinbase facilitator for supported kinds")
	fmt.Println()
	fmt.Println("Configuration is read from the environment and an optional .env file.")
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	envFile := fs.String("env", ".env", "Path to an optional .env file")
	validate := fs.Bool("validate-extensions", false, "Warn when the bazaar extension does not match its schema")
	_ = fs.Parse(args)

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := networks.Validate(); err != nil {
		return fmt.Errorf("network registry is invalid: %w", err)
	}

	upstream, err := cfg.Upstream()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newGateway(upstream, cfg, logger, *validate),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("discovery gateway listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("upstream", upstream.String()),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newGateway proxies every request to upstream through the discovery middleware
func newGateway(upstream *url.URL, cfg *config.Config, logger *zap.Logger, validate bool) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)

	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Header.Set("X-Forwarded-Host", req.Host)
		// Let the transport negotiate gzip so the middleware sees a decoded body
		req.Header.Del("Accept-Encoding")
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}

	middleware := x402http.DiscoveryMiddleware(
		x402http.WithLogger(logger),
		x402http.WithTranslator(discovery.NewTranslator(
			discovery.WithDefaultFacilitatorURL(cfg.FacilitatorURL),
		)),
		x402http.WithExtensionValidation(validate),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/", middleware(proxy))
	return mux
}

func runSupported(args []string) error {
	fs := flag.NewFlagSet("supported", flag.ExitOnError)
	envFile := fs.String("env", ".env", "Path to an optional .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Request timeout")
	_ = fs.Parse(args)

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	facilitatorConfig := coinbasefacilitator.CreateFacilitatorConfig(
		cfg.APIKeyID,
		cfg.APIKeySecret,
		coinbasefacilitator.WithLogger(logger),
	)
	facilitatorConfig.Timeout = *timeout

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	supported, err := x402http.NewHTTPFacilitatorClient(facilitatorConfig).GetSupported(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(supported, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
