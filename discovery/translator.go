// Package discovery rewrites legacy payment-required payloads into the
// standardized x402 v2 discovery document.
package discovery

import (
	"regexp"

	x402 "github.com/coinbase/x402-discovery"
	"github.com/coinbase/x402-discovery/extensions/bazaar"
	"github.com/coinbase/x402-discovery/networks"
	"github.com/coinbase/x402-discovery/types"
)

// UnknownResource is the resource key used when the request URL names no entrypoint
const UnknownResource = "unknown"

var entrypointPattern = regexp.MustCompile(`/entrypoints/([^/?#]+)`)

// Translator builds discovery documents. It holds no per-request state and is
// safe for concurrent use.
type Translator struct {
	defaultFacilitatorURL string
}

// Option configures a Translator
type Option func(*Translator)

// WithDefaultFacilitatorURL sets the facilitator advertised when the legacy
// payload does not name one
func WithDefaultFacilitatorURL(url string) Option {
	return func(t *Translator) {
		if url != "" {
			t.defaultFacilitatorURL = url
		}
	}
}

// NewTranslator creates a translator using x402.DefaultFacilitatorURL unless overridden
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{defaultFacilitatorURL: x402.DefaultFacilitatorURL}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate parses a legacy 402 body and builds the discovery document for
// requestURL. Bodies without price, network or payTo are NotTranslatable.
func (t *Translator) Translate(body []byte, requestURL string) Result {
	legacy, err := types.ParseLegacyPaymentRequired(body)
	if err != nil {
		return NotTranslatable(err)
	}
	return Translated(t.Build(legacy, requestURL), legacy)
}

// Build assembles the document from already parsed legacy fields.
// The output depends only on its arguments.
func (t *Translator) Build(legacy types.LegacyPaymentRequired, requestURL string) *types.PaymentRequired {
	facilitatorURL := legacy.FacilitatorURL
	if facilitatorURL == "" {
		facilitatorURL = t.defaultFacilitatorURL
	}

	offer := types.PaymentRequirements{
		Scheme:            x402.SchemeExact,
		Network:           string(networks.ResolveChainID(legacy.Network)),
		Amount:            x402.ToBaseUnits(legacy.Price),
		PayTo:             legacy.PayTo,
		MaxTimeoutSeconds: x402.MaxTimeoutSeconds,
		Asset:             networks.ResolveAsset(legacy.Network),
		Extra: map[string]interface{}{
			"facilitatorUrl": facilitatorURL,
		},
	}

	doc := &types.PaymentRequired{
		X402Version: x402.ProtocolVersion,
		Error:       legacy.Message,
		Accepts:     []types.PaymentRequirements{offer},
		Resource: &types.ResourceInfo{
			URL:         requestURL,
			Description: Describe(ResourceKey(requestURL)),
			MimeType:    x402.MimeTypeJSON,
		},
	}

	if legacy.HasInput() {
		doc.Extensions = map[string]interface{}{
			bazaar.BAZAAR: bazaar.DeclareDiscoveryExtension(legacy.Input),
		}
	}

	return doc
}

// ResourceKey returns the first /entrypoints/{key} segment of a request URL,
// or UnknownResource. The segment is returned as it appears in the URL.
func ResourceKey(requestURL string) string {
	match := entrypointPattern.FindStringSubmatch(requestURL)
	if match == nil {
		return UnknownResource
	}
	return match[1]
}

// Describe renders the human readable resource description for a key
func Describe(key string) string {
	return "Paid entrypoint: " + key
}
