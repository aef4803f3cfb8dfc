// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/platform/validate"
)

// MaxBody caps request bodies
const MaxBody int64 = 1 << 20

// ParseJSON decodes exactly one JSON value into T and validates it.
// Unknown fields are rejected. Validation failures carry the json field name
func ParseJSON[T any](r *http.Request) (T, error) {
	var v T
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, perr.JSONErrf("empty body")
		}
		return v, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return v, perr.JSONErrf("unexpected trailing data")
	}

	if err := validate.Struct(v); err != nil {
		if validate.IsInvalidValidation(err) {
			return v, perr.Wrap(err, perr.ErrorCodeUnknown, "validator misuse")
		}
		field, msg := validate.FieldAndMessage(err)
		return v, perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
	}
	return v, nil
}
