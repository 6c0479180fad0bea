// Package validation checks tool call arguments against the input schema a
// downstream server advertises for the tool
package validation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/dslh/mcp-nexus/internal/schema"
)

// Error types
const (
	// TypeSchema marks a schema that could not be compiled. Callers may treat
	// it as "cannot validate" rather than as bad arguments.
	TypeSchema = "SchemaError"

	// TypeArguments marks arguments that do not satisfy the schema
	TypeArguments = "ValidationError"
)

// ValidationError represents an argument validation error
type ValidationError struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// IsSchemaError reports whether err is a ValidationError raised while
// compiling the schema
func IsSchemaError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr) && validationErr.Type == TypeSchema
}

// Compile turns an input schema as received over the wire into a resolved
// jsonschema. A nil or empty schema compiles to nil, which accepts anything.
func Compile(input any) (*jsonschema.Resolved, error) {
	if input == nil {
		return nil, nil
	}

	schemaBytes, err := json.Marshal(input)
	if err != nil {
		return nil, schemaError("Failed to marshal schema", err)
	}
	if string(schemaBytes) == "{}" || string(schemaBytes) == "null" {
		return nil, nil
	}

	var schemaObj jsonschema.Schema
	if err := json.Unmarshal(schemaBytes, &schemaObj); err != nil {
		return nil, schemaError("Invalid JSON schema definition", err)
	}

	normalized, err := schema.SafeNormalize(&schemaObj)
	if err != nil {
		return nil, schemaError("Failed to normalize JSON schema", err)
	}

	resolved, err := normalized.Resolve(nil)
	if err != nil {
		return nil, schemaError("Failed to resolve JSON schema", err)
	}
	return resolved, nil
}

// ValidateArgs validates call arguments against a tool's input schema
func ValidateArgs(inputSchema any, args map[string]any) error {
	resolved, err := Compile(inputSchema)
	if err != nil || resolved == nil {
		return err
	}

	if args == nil {
		args = map[string]any{}
	}

	if err := resolved.Validate(args); err != nil {
		return &ValidationError{
			Type:    TypeArguments,
			Message: "Argument validation failed",
			Details: map[string]any{
				"error":         err.Error(),
				"providedArgs":  args,
				"schemaPresent": true,
			},
		}
	}
	return nil
}

// FormatValidationError formats a validation error for display
func FormatValidationError(err error) string {
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	if msg, ok := validationErr.Details["error"].(string); ok {
		return fmt.Sprintf("%s: %s", validationErr.Message, msg)
	}
	return validationErr.Message
}

func schemaError(message string, err error) error {
	return &ValidationError{
		Type:    TypeSchema,
		Message: message,
		Details: map[string]any{
			"error": err.Error(),
		},
	}
}
