package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodeRequest decodes and validates one request frame.
//
// Errors wrap ErrMalformed, ErrUnknownType or ErrInvalid. The request ID is
// returned alongside decode errors when the envelope itself was readable, so
// the caller can address the error response.
func DecodeRequest(data []byte) (Request, string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.ID == "" {
		return nil, "", fmt.Errorf("%w: missing id", ErrMalformed)
	}

	var req Request
	switch env.Type {
	case TypeGenerate:
		req = &Generate{ID: env.ID}
	case TypeEstimate:
		req = &Estimate{ID: env.ID}
	default:
		return nil, env.ID, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if len(env.Payload) == 0 {
		return nil, env.ID, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(env.Payload, req); err != nil {
		return nil, env.ID, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
	}

	if err := validate.Struct(req); err != nil {
		return nil, env.ID, fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}

	return req, env.ID, nil
}

// describe flattens validator errors into one line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		part := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			part = fmt.Sprintf("%s (value: %s)", part, fe.Param())
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
