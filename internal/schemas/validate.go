// Package schemas provides JSON Schema validation for the compressed
// applicant document. The schema is deliberately permissive: no key is
// required and unknown keys are allowed, so documents written by older
// or newer versions still validate; only type mismatches are rejected.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed applicant_profile.schema.json
var applicantProfileSchema string

// ValidationError reports schema violations with their field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("document validation failed:")
	for _, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// SchemaLoadError reports problems loading the schema or the document
// itself (including JSON syntax errors in the document).
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema validation could not run: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("schema validation could not run: %s", e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateDocument checks a compressed-document JSON string against the
// applicant profile schema. Returns nil when valid, a *ValidationError
// for type violations, or a *SchemaLoadError when validation could not
// run at all.
func ValidateDocument(jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(applicantProfileSchema)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Message: "failed to load schema or document", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
