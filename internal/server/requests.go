package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/pagegate/internal/schemas"
	"github.com/jonathan/pagegate/internal/types"
)

// maxBodyBytes bounds a single request body.
const maxBodyBytes = 8 << 20

// BatchRequest is the body of POST /validate/batch
type BatchRequest struct {
	Requests []types.ValidationRequest `json:"requests" validate:"required,min=1,max=20,dive"`
}

// BatchResponse is the body returned by POST /validate/batch
type BatchResponse struct {
	Verdicts []*types.Verdict `json:"verdicts"`
	IDs      []string         `json:"ids,omitempty"`
}

// DeployResponse is the body returned by POST /validate/deploy
type DeployResponse struct {
	Verdict    *types.Verdict     `json:"verdict"`
	Deployment types.DeployAdvice `json:"deployment"`
	ID         string             `json:"id,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeValidationRequest reads, schema-checks and validates a single request body.
func decodeValidationRequest(w http.ResponseWriter, r *http.Request) (types.ValidationRequest, error) {
	var req types.ValidationRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if err := schemas.ValidateRequestJSON(body); err != nil {
		return req, schemaError(err)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := validateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

// decodeBatchRequest reads and validates a batch request body.
func decodeBatchRequest(w http.ResponseWriter, r *http.Request) (BatchRequest, error) {
	var req BatchRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := validateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: "body", Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if len(body) == 0 {
		return nil, &ErrValidation{Field: "body", Message: "request body is empty"}
	}
	return body, nil
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ErrValidation{Field: fe.Namespace(), Message: fmt.Sprintf("failed '%s' check", fe.Tag())}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func schemaError(err error) error {
	var verr *schemas.ValidationError
	if errors.As(err, &verr) && len(verr.Errors) > 0 {
		return &ErrValidation{Field: verr.Errors[0].Field, Message: verr.Errors[0].Message}
	}
	return &ErrValidation{Field: "body", Message: "invalid JSON"}
}
