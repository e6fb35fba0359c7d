package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedPayload is returned when a legacy body is not a JSON object
	ErrMalformedPayload = errors.New("legacy payment required body is not a JSON object")

	// ErrMissingField is returned when a required legacy field is absent or empty
	ErrMissingField = errors.New("legacy payment required body is missing required fields")
)

// LegacyPaymentRequired is the ad-hoc 402 payload produced by the service
// behind the discovery middleware:
//
//	{"error": {"price": "1.00", "network": "base", "payTo": "0x...", "facilitatorUrl": "..."}, "input": {...}}
//
// Only the fields below are read; everything else in the body is ignored.
type LegacyPaymentRequired struct {
	// Price is the human readable decimal price, e.g. "0.05"
	Price string
	// Network is the short network id, e.g. "base"
	Network string
	// PayTo is the recipient address, passed through verbatim
	PayTo string
	// FacilitatorURL is optional; empty when the payload does not name one
	FacilitatorURL string
	// Message is the optional human readable error.message
	Message string
	// Input is the raw top-level "input" value, nil when absent
	Input json.RawMessage
}

// HasInput reports whether the payload carried an "input" value
func (p LegacyPaymentRequired) HasInput() bool {
	return len(p.Input) > 0
}

// ParseLegacyPaymentRequired reads the legacy fields out of a 402 body.
// It validates only price, network and payTo.
func ParseLegacyPaymentRequired(body []byte) (LegacyPaymentRequired, error) {
	if !gjson.ValidBytes(body) {
		return LegacyPaymentRequired{}, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return LegacyPaymentRequired{}, ErrMalformedPayload
	}

	section := root.Get("error")

	payload := LegacyPaymentRequired{
		Price:          scalarField(section, "price"),
		Network:        stringField(section, "network"),
		PayTo:          stringField(section, "payTo"),
		FacilitatorURL: stringField(section, "facilitatorUrl"),
		Message:        stringField(section, "message"),
	}

	var missing []string
	if payload.Price == "" {
		missing = append(missing, "error.price")
	}
	if payload.Network == "" {
		missing = append(missing, "error.network")
	}
	if payload.PayTo == "" {
		missing = append(missing, "error.payTo")
	}
	if len(missing) > 0 {
		return LegacyPaymentRequired{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	if input := root.Get("input"); input.Exists() && input.Type != gjson.Null {
		payload.Input = json.RawMessage(input.Raw)
	}

	return payload, nil
}

func stringField(section gjson.Result, key string) string {
	if !section.IsObject() {
		return ""
	}
	value := section.Get(key)
	if value.Type != gjson.String {
		return ""
	}
	return value.Str
}

// scalarField accepts both "1.00" and 1.00
func scalarField(section gjson.Result, key string) string {
	if !section.IsObject() {
		return ""
	}
	value := section.Get(key)
	switch value.Type {
	case gjson.String:
		return value.Str
	case gjson.Number:
		return value.Raw
	default:
		return ""
	}
}
