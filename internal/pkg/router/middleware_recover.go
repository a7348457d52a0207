package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bridj/tripmailer/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a logged 500.
// http.ErrAbortHandler keeps its meaning and is re-raised.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "panic on the server",
				"method", r.Method, "path", r.URL.Path, "because", rvr, stacktrace.Attr(1))
			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
