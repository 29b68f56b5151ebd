// Package schemas holds the JSON Schemas for pagegate's wire formats.
package schemas

import _ "embed"

// Verdict is the schema of a serialized validation verdict.
//
//go:embed verdict.schema.json
var Verdict string

// Request is the schema of a validation request body.
//
//go:embed request.schema.json
var Request string
