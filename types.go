package x402

import (
	"fmt"
	"strings"
)

const (
	// ProtocolVersion is the x402 discovery schema version emitted by this module
	ProtocolVersion = 2

	// SchemeExact is the only payment scheme offered in translated documents
	SchemeExact = "exact"

	// MaxTimeoutSeconds is the fixed payment validity window advertised per offer
	MaxTimeoutSeconds = 60

	// DefaultFacilitatorURL is the public facilitator used when the legacy
	// payload does not name one
	DefaultFacilitatorURL = "https://x402.org/facilitator"

	// MimeTypeJSON is the content type of translated documents
	MimeTypeJSON = "application/json"
)

// Network represents a blockchain network identifier in CAIP-2 format
// Format: namespace:reference (e.g., "eip155:1" for Ethereum mainnet)
type Network string

// Parse splits the network into namespace and reference components
func (n Network) Parse() (namespace, reference string, err error) {
	namespace, reference, ok := strings.Cut(string(n), ":")
	if !ok || namespace == "" || reference == "" {
		return "", "", fmt.Errorf("invalid network format: %s", n)
	}
	return namespace, reference, nil
}

// Namespace returns the CAIP-2 namespace, or "" when the network is malformed
func (n Network) Namespace() string {
	namespace, _, err := n.Parse()
	if err != nil {
		return ""
	}
	return namespace
}

// VerifyResponse contains the verification result returned by a facilitator
type VerifyResponse struct {
	IsValid        bool   `json:"isValid"`
	InvalidReason  string `json:"invalidReason,omitempty"`
	InvalidMessage string `json:"invalidMessage,omitempty"`
	Payer          string `json:"payer,omitempty"`
}

// SettleResponse contains the settlement result returned by a facilitator
type SettleResponse struct {
	Success     bool    `json:"success"`
	ErrorReason string  `json:"errorReason,omitempty"`
	Payer       string  `json:"payer,omitempty"`
	Transaction string  `json:"transaction"`
	Network     Network `json:"network"`
}

// SupportedKind represents a single supported payment configuration
type SupportedKind struct {
	X402Version int                    `json:"x402Version"`
	Scheme      string                 `json:"scheme"`
	Network     Network                `json:"network"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// SupportedResponse describes what payment kinds a facilitator supports
type SupportedResponse struct {
	Kinds      []SupportedKind `json:"kinds"`
	Extensions []string        `json:"extensions"`
}
