package aiparse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildReceiptSchema returns a JSON-Schema (draft 2020-12 subset) as a generic
// map. It is sent to the generative parser as an output constraint and used
// locally to validate whatever comes back, from either the AI-assisted or the
// remote structured-parse strategy.
func BuildReceiptSchema(maxItems int) map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}
	nullableInt := map[string]any{"type": []string{"integer", "null"}}

	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":         nullableString,
			"quantity":     map[string]any{"type": "integer", "minimum": 1},
			"unit_price":   nullableInt,
			"total_price":  map[string]any{"type": "integer", "minimum": 0},
			"product_code": nullableString,
		},
		"required": []string{"quantity", "total_price"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"store_name":   nullableString,
			"date":         map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"time":         map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{2}:\d{2}$`},
			"total_amount": nullableInt,
			"subtotal":     nullableInt,
			"discount":     map[string]any{"type": []string{"integer", "null"}, "maximum": 0},
			"items":        map[string]any{"type": "array", "items": item, "maxItems": maxItems},
			"currency":     map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"confidence":   map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"items", "currency"},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
