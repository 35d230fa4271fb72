package ucp

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSON Schemas for the wire payloads. Structural validation in validate.go
// is always applied; these add field-type enforcement for clients that
// enable WithSchemaValidation.

const discoveryDocumentSchema = `{
	"type": "object",
	"required": ["protocolVersion", "services", "capabilities", "merchant"],
	"properties": {
		"protocolVersion": {"type": "string", "minLength": 1},
		"services": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["version", "restEndpoint"],
				"properties": {
					"version": {"type": "string"},
					"specUrl": {"type": "string"},
					"restEndpoint": {"type": "string", "minLength": 1},
					"schemaUrl": {"type": "string"}
				}
			}
		},
		"capabilities": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "version"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"version": {"type": "string"},
					"specUrl": {"type": "string"},
					"schemaUrl": {"type": "string"}
				}
			}
		},
		"merchant": {
			"type": "object",
			"required": ["id"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"name": {"type": "string"},
				"baseUrl": {"type": "string"}
			}
		}
	}
}`

const searchResultSchema = `{
	"type": "object",
	"required": ["items", "total"],
	"properties": {
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "title", "price"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"title": {"type": "string", "minLength": 1},
					"price": {"type": "integer", "minimum": 0},
					"imageUrl": {"type": "string"},
					"description": {"type": "string"}
				}
			}
		},
		"total": {"type": "integer", "minimum": 0}
	}
}`

// ValidateDiscoveryJSON validates raw discovery document bytes against the
// protocol schema.
func ValidateDiscoveryJSON(data []byte) error {
	if errs, err := validateAgainst(discoveryDocumentSchema, data); err != nil {
		return NewProtocolError(ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("discovery schema validation failed: %v", err), nil)
	} else if len(errs) > 0 {
		return NewProtocolError(ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("discovery document does not match schema: %s", strings.Join(errs, "; ")),
			map[string]interface{}{"schemaErrors": errs})
	}
	return nil
}

// ValidateSearchResultJSON validates raw search response bytes against the
// protocol schema. The price field must be an integer: a floating-point
// price is a schema violation, not a value to round.
func ValidateSearchResultJSON(data []byte) error {
	if errs, err := validateAgainst(searchResultSchema, data); err != nil {
		return NewProtocolError(ErrCodeSearchResponseInvalid,
			fmt.Sprintf("search schema validation failed: %v", err), nil)
	} else if len(errs) > 0 {
		return NewProtocolError(ErrCodeSearchResponseInvalid,
			fmt.Sprintf("search response does not match schema: %s", strings.Join(errs, "; ")),
			map[string]interface{}{"schemaErrors": errs})
	}
	return nil
}

func validateAgainst(schema string, data []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, fmt.Sprintf("%s: %s", desc.Context().String(), desc.Description()))
	}
	return errs, nil
}
