// Package router is the HTTP surface shared by every module: httprouter for
// matching, a fixed middleware chain and a JSON response envelope.
package router

import (
	"net/http"
	"slices"

	"github.com/bridj/tripmailer/internal/pkg/config"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/uid"
	"github.com/julienschmidt/httprouter"
)

// Handler returns the value placed in the response envelope, or an error
// that decides the status.
type Handler func(r *Request) (any, error)

// Config carries what NewRouter needs. Config may be nil in tests.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	Instrument instrument.Instrumentation
}

type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter returns a router whose endpoints run behind panic recovery,
// client IP and correlation ID extraction, tracing and request logging,
// then the maintenance switch, in that order.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, ins),
			middlewareMaintenance(cfg.Config),
		},
	}
}

// GET registers h for GET path.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers h for POST path.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		result, err := h(&Request{Request: re})
		if err == nil {
			writeResult(w, result)
			return
		}

		if setter, ok := w.(interface{ SetError(error) }); ok {
			setter.SetError(err)
		}
		writeError(re.Context(), w, err)
	}), slices.Concat(r.mws, mws)...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}
