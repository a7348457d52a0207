package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/julienschmidt/httprouter"
)

// bodyLimit caps a request body; mailer requests are a handful of ids.
const bodyLimit = 1 << 20

// Request is what a Handler receives.
type Request struct {
	*http.Request
}

// GetParam returns a named path segment, e.g. kind in /preview/:kind.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// DecodeBody reads exactly one JSON object into dst. Unknown fields, trailing
// data and an oversized body all yield an invalid-format error.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, bodyLimit))
	dec.DisallowUnknownFields()

	if dec.Decode(dst) != nil {
		return goerror.NewInvalidFormat()
	}
	if !errors.Is(dec.Decode(&struct{}{}), io.EOF) {
		return goerror.NewInvalidFormat("Request body must hold a single JSON object")
	}
	return nil
}
