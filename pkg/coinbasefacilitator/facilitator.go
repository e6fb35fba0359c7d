// Package coinbasefacilitator authenticates against the Coinbase hosted x402 facilitator.
package coinbasefacilitator

import (
	"context"
	"fmt"
	"os"

	"github.com/coinbase/cdp-sdk/go/auth"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	x402 "github.com/coinbase/x402-discovery"
	x402http "github.com/coinbase/x402-discovery/http"
)

const (
	CoinbaseFacilitatorBaseURL = "https://api.cdp.coinbase.com"
	CoinbaseFacilitatorHost    = "api.cdp.coinbase.com"
	CoinbaseFacilitatorV2Route = "/platform/v2/x402"

	// TokenLifetimeSeconds is the validity window of every signed token
	TokenLifetimeSeconds = 120

	EnvAPIKeyID     = "CDP_API_KEY_ID"
	EnvAPIKeySecret = "CDP_API_KEY_SECRET"
)

// SignFunc signs a single request-scoped token
type SignFunc func(opts auth.JwtOptions) (string, error)

type endpoint struct {
	name   string
	method string
	path   string
}

var endpoints = [3]endpoint{
	{name: "verify", method: "POST", path: CoinbaseFacilitatorV2Route + "/verify"},
	{name: "settle", method: "POST", path: CoinbaseFacilitatorV2Route + "/settle"},
	{name: "supported", method: "GET", path: CoinbaseFacilitatorV2Route + "/supported"},
}

// CdpAuthProvider signs a fresh token per facilitator endpoint on every call.
// Tokens are never cached.
type CdpAuthProvider struct {
	apiKeyID     string
	apiKeySecret string
	sign         SignFunc
	logger       *zap.Logger
}

// Option configures a CdpAuthProvider
type Option func(*CdpAuthProvider)

// WithSigner replaces the token signer
func WithSigner(sign SignFunc) Option {
	return func(p *CdpAuthProvider) {
		p.sign = sign
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *CdpAuthProvider) {
		p.logger = logger
	}
}

// NewCdpAuthProvider creates an auth provider for the given API key.
// Empty credentials fall back to CDP_API_KEY_ID and CDP_API_KEY_SECRET, read
// each time headers are requested.
func NewCdpAuthProvider(apiKeyID, apiKeySecret string, opts ...Option) *CdpAuthProvider {
	p := &CdpAuthProvider{
		apiKeyID:     apiKeyID,
		apiKeySecret: apiKeySecret,
		sign:         auth.GenerateJWT,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CdpAuthProvider) credentials() (string, string, error) {
	id := p.apiKeyID
	secret := p.apiKeySecret

	if id == "" {
		id = os.Getenv(EnvAPIKeyID)
	}
	if secret == "" {
		secret = os.Getenv(EnvAPIKeySecret)
	}

	if id == "" || secret == "" {
		return "", "", x402.ErrMissingCredentials
	}
	return id, secret, nil
}

// GetAuthHeaders signs the verify, settle and supported tokens concurrently.
// Either all three are returned or none.
func (p *CdpAuthProvider) GetAuthHeaders(ctx context.Context) (x402http.AuthHeaders, error) {
	id, secret, err := p.credentials()
	if err != nil {
		return x402http.AuthHeaders{}, err
	}

	var tokens [len(endpoints)]string
	g, ctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			token, err := p.sign(auth.JwtOptions{
				KeyID:         id,
				KeySecret:     secret,
				RequestMethod: ep.method,
				RequestHost:   CoinbaseFacilitatorHost,
				RequestPath:   ep.path,
				ExpiresIn:     TokenLifetimeSeconds,
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %w", x402.ErrSigningFailed, ep.name, err)
			}
			tokens[i] = token
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Debug("failed to sign facilitator tokens", zap.Error(err))
		return x402http.AuthHeaders{}, err
	}

	return x402http.AuthHeaders{
		Verify:    bearer(tokens[0]),
		Settle:    bearer(tokens[1]),
		Supported: bearer(tokens[2]),
	}, nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateFacilitatorConfig creates a facilitator config for the Coinbase X402 facilitator
func CreateFacilitatorConfig(apiKeyID, apiKeySecret string, opts ...Option) *x402http.FacilitatorConfig {
	return &x402http.FacilitatorConfig{
		URL:          CoinbaseFacilitatorBaseURL + CoinbaseFacilitatorV2Route,
		AuthProvider: NewCdpAuthProvider(apiKeyID, apiKeySecret, opts...),
		Identifier:   "coinbase",
	}
}
