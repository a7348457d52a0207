package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message" example:"Validation error"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message" example:"Email sent"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Optional interfaces a handler result may implement to shape its envelope.
type (
	statusCoder interface{ StatusCode() int }
	messenger   interface{ Message() string }
	metaHolder  interface{ Meta() map[string]any }
)

const defaultSuccessMessage = "request has been successfully"

// writeError renders err as an errorResponse. Only *goerror.Error values
// choose their own status; anything else is logged and reported as a 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unstructured error reached http layer", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	body := errorResponse{Message: gerr.Msg(), Error: gerr.Fields()}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		body.Error = verr.Values()
	}

	writeJSON(w, body, gerr.StatusCode())
}

// writeResult renders a handler result. A nil result, or one reporting 204,
// produces an empty response.
func writeResult(w http.ResponseWriter, result any) {
	status := http.StatusOK
	if sc, ok := result.(statusCoder); ok {
		status = sc.StatusCode()
	}
	if result == nil || status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body := successResponse{Message: defaultSuccessMessage, Data: result}
	if m, ok := result.(messenger); ok {
		body.Message = m.Message()
	}
	if m, ok := result.(metaHolder); ok {
		body.Meta = m.Meta()
	}

	writeJSON(w, body, status)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
