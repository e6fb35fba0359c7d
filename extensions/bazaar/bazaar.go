// Package bazaar builds the "bazaar" discovery extension attached to
// translated payment-required documents. The extension mirrors the request
// input advertised by the resource so that scanning clients can index it.
package bazaar

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// BAZAAR is the extension key under PaymentRequired.Extensions
const BAZAAR = "bazaar"

// DiscoveryInfo is the indexed payload of the extension
type DiscoveryInfo struct {
	Input json.RawMessage `json:"input"`
}

// DiscoveryExtension is the value stored under extensions.bazaar
type DiscoveryExtension struct {
	Info   DiscoveryInfo          `json:"info"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}

// DeclareDiscoveryExtension wraps an input hint into a discovery extension.
// The input is passed through as-is; the schema only records its JSON type.
func DeclareDiscoveryExtension(input json.RawMessage) DiscoveryExtension {
	inputSchema := map[string]interface{}{}
	if jsonType := jsonTypeOf(input); jsonType != "" {
		inputSchema["type"] = jsonType
	}

	return DiscoveryExtension{
		Info: DiscoveryInfo{Input: input},
		Schema: map[string]interface{}{
			"$schema":    "http://json-schema.org/draft-07/schema#",
			"type":       "object",
			"properties": map[string]interface{}{"input": inputSchema},
			"required":   []string{"input"},
		},
	}
}

func jsonTypeOf(raw json.RawMessage) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	switch value := gjson.ParseBytes(raw); value.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	case gjson.JSON:
		if value.IsArray() {
			return "array"
		}
		return "object"
	default:
		return ""
	}
}
