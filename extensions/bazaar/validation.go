package bazaar

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult reports whether an extension's input matches the type
// hint recorded in its schema
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateDiscoveryExtension checks Info.Input against the schema's
// properties.input hint, the one DeclareDiscoveryExtension records. An
// extension without that hint is accepted.
//
//	extension := bazaar.DeclareDiscoveryExtension(input)
//	if result := bazaar.ValidateDiscoveryExtension(extension); !result.Valid {
//	    log.Println(result.Errors)
//	}
func ValidateDiscoveryExtension(extension DiscoveryExtension) ValidationResult {
	inputSchema, ok := inputSchemaOf(extension.Schema)
	if !ok {
		return ValidationResult{Valid: true}
	}

	input := []byte(extension.Info.Input)
	if len(input) == 0 {
		input = []byte("null")
	}
	if !gjson.ValidBytes(input) {
		return ValidationResult{Errors: []string{"info.input is not valid JSON"}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(inputSchema),
		gojsonschema.NewBytesLoader(input),
	)
	if err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("input schema rejected: %v", err)}}
	}
	if result.Valid() {
		return ValidationResult{Valid: true}
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, "info.input: "+desc.Description())
	}
	return ValidationResult{Errors: errs}
}

func inputSchemaOf(schema map[string]interface{}) (map[string]interface{}, bool) {
	props, _ := schema["properties"].(map[string]interface{})
	input, ok := props["input"].(map[string]interface{})
	return input, ok
}
