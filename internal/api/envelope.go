package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelope is the versioned wrapper every JSON response is wrapped in.
type envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// EnvelopeTransformer wraps all response bodies in the standard envelope:
// {"v":1,"success":true,"data":...} on success, with the error object under
// "error" on failure. Failure is decided by the payload being an error, not
// by the status code: check-duplicate replies 409 with a classification
// body that is still a successful answer. Registered on the huma config
// before any routes.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if v == nil {
		return v, nil
	}

	if _, ok := v.(error); ok {
		return &envelope{V: 1, Success: false, Error: v}, nil
	}
	return &envelope{V: 1, Success: true, Data: v}, nil
}
