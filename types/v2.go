// Package types holds the wire shapes on both sides of the discovery
// translation: the standardized v2 payment-required document and the legacy
// payment-required payload it is built from.
package types

import "encoding/json"

// PaymentRequirements is one payment offer in a v2 402 response
type PaymentRequirements struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	Amount            string                 `json:"amount"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds"`
	Asset             string                 `json:"asset"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentRequired represents a v2 402 response structure (the discovery document)
type PaymentRequired struct {
	X402Version int                    `json:"x402Version"`
	Error       string                 `json:"error,omitempty"`
	Accepts     []PaymentRequirements  `json:"accepts"`
	Resource    *ResourceInfo          `json:"resource,omitempty"`
	Extensions  map[string]interface{} `json:"extensions,omitempty"`
}

// ResourceInfo describes the resource being accessed
type ResourceInfo struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// FacilitatorURL returns extra.facilitatorUrl of the offer, if it is a string
func (r PaymentRequirements) FacilitatorURL() string {
	url, _ := r.Extra["facilitatorUrl"].(string)
	return url
}

// ToPaymentRequired unmarshals bytes to a v2 payment required response
func ToPaymentRequired(data []byte) (*PaymentRequired, error) {
	var required PaymentRequired
	if err := json.Unmarshal(data, &required); err != nil {
		return nil, err
	}
	return &required, nil
}
