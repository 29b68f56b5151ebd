// Package schemas provides JSON Schema validation for pagegate's wire formats.
package schemas

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	wire "github.com/jonathan/pagegate/schemas"
)

// Schema names used in errors.
const (
	VerdictSchema = "verdict.schema.json"
	RequestSchema = "request.schema.json"
)

// ValidationError lists every schema violation found in one document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.String()
	}
	return fmt.Sprintf("%s validation failed: %s", ve.Schema, strings.Join(parts, "; "))
}

// FieldError is one violation at a JSON field path. The document root is "(root)".
type FieldError struct {
	Field   string
	Message string
}

func (fe FieldError) String() string {
	return fe.Field + ": " + fe.Message
}

// LoadError means the schema or the document could not be read.
type LoadError struct {
	Schema string
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Schema, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Embedded schemas are compiled once on first use.
var (
	verdictSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(wire.Verdict))
	})
	requestSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(wire.Request))
	})
)

// ValidateJSONString validates JSON content against an inline schema.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return &LoadError{Schema: "inline schema", Cause: err}
	}
	return check("inline schema", schema, gojsonschema.NewStringLoader(jsonContent))
}

// ValidateVerdict checks a verdict value against the verdict schema. v is
// typically a *types.Verdict; it is serialized with its JSON tags.
func ValidateVerdict(v any) error {
	return checkEmbedded(VerdictSchema, verdictSchema, gojsonschema.NewGoLoader(v))
}

// ValidateVerdictJSON checks serialized verdict JSON against the verdict schema.
func ValidateVerdictJSON(data []byte) error {
	return checkEmbedded(VerdictSchema, verdictSchema, gojsonschema.NewBytesLoader(data))
}

// ValidateRequestJSON checks a serialized validation request against the request schema.
func ValidateRequestJSON(data []byte) error {
	return checkEmbedded(RequestSchema, requestSchema, gojsonschema.NewBytesLoader(data))
}

func checkEmbedded(name string, compiled func() (*gojsonschema.Schema, error), document gojsonschema.JSONLoader) error {
	schema, err := compiled()
	if err != nil {
		return &LoadError{Schema: name, Cause: err}
	}
	return check(name, schema, document)
}

func check(name string, schema *gojsonschema.Schema, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		return &LoadError{Schema: name, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	sort.SliceStable(verr.Errors, func(i, j int) bool {
		return verr.Errors[i].Field < verr.Errors[j].Field
	})
	return verr
}
