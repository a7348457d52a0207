package router

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Chain wraps h so that mws run in order, mws[0] first. Nil entries are skipped.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range slices.Backward(mws) {
		if mw != nil {
			h = mw(h)
		}
	}

	return h
}
