package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/bridj/tripmailer/internal/pkg/config"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// bodyLogLimit caps how much of a request or response body is logged.
const bodyLogLimit = 32 << 10

// responseCapture records what the handler wrote so it can be logged and
// measured after the fact.
type responseCapture struct {
	http.ResponseWriter
	status  int
	written int
	head    bytes.Buffer
	cut     bool
	err     error
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}

	if room := bodyLogLimit - c.head.Len(); !c.cut {
		if len(p) > room {
			c.head.Write(p[:room])
			c.cut = true
		} else {
			c.head.Write(p)
		}
	}

	n, err := c.ResponseWriter.Write(p)
	c.written += n
	return n, err
}

// SetError is called by the endpoint adapter so the span can record the failure.
func (c *responseCapture) SetError(err error) { c.err = err }

func (c *responseCapture) code() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// httpTelemetry is the state shared by every request passing through
// middlewareObservability.
type httpTelemetry struct {
	keys       instrument.MaskSet
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	requests   metric.Int64Counter
	latency    metric.Float64Histogram
}

func newHTTPTelemetry(cfg config.Config, ins instrument.Instrumentation) *httpTelemetry {
	t := &httpTelemetry{
		tracer:     ins.Tracer("http.server"),
		propagator: otel.GetTextMapPropagator(),
	}
	if cfg != nil {
		t.keys = instrument.MaskKeys(cfg.GetArray("instrument.log_mask_fields"))
	}

	meter := ins.Meter("http.server")

	var err error
	if t.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served"),
	); err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	if t.latency, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	); err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return t
}

func (t *httpTelemetry) headers(h http.Header) http.Header {
	if len(t.keys) == 0 {
		return h
	}

	out := h.Clone()
	for k := range out {
		if t.keys.Has(k) {
			out.Set(k, "***")
		}
	}
	return out
}

func (t *httpTelemetry) body(b []byte, cut bool) any {
	switch {
	case len(b) == 0:
		return nil
	case !utf8.Valid(b):
		return "<binary body omitted>"
	}

	if doc, ok := instrument.MaskJSON(b, t.keys); ok {
		return doc
	}
	if cut {
		return string(b) + "...(truncated)"
	}
	return string(b)
}

// peekBody reads at most bodyLogLimit bytes of the request and puts them back
// in front of the remaining stream.
func peekBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, bodyLogLimit+1)) //nolint:errcheck // logging only
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	if len(head) > bodyLogLimit {
		return head[:bodyLogLimit], true
	}
	return head, false
}

func (t *httpTelemetry) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	route := matchedRoutePath(r)
	began := time.Now()

	ctx := t.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := t.tracer.Start(ctx, r.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(r.Method),
			semconv.HTTPRouteKey.String(route),
			attribute.String("http.user_agent", r.UserAgent()),
		),
	)
	defer span.End()

	in, inCut := peekBody(r)
	slog.InfoContext(ctx, "request received",
		"method", r.Method,
		"path", route,
		"uri", r.RequestURI,
		"headers", t.headers(r.Header),
		"body", t.body(in, inCut),
	)

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r.WithContext(ctx))

	status := capture.code()
	took := time.Since(began)
	attrs := metric.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPResponseStatusCodeKey.Int(status),
	)

	span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(status))
	if capture.err != nil {
		span.RecordError(capture.err)
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	if t.requests != nil {
		t.requests.Add(ctx, 1, attrs)
	}
	if t.latency != nil {
		t.latency.Record(ctx, float64(took.Milliseconds()), attrs)
	}

	slog.InfoContext(ctx, "response sent",
		"method", r.Method,
		"path", route,
		"status", status,
		"bytes", capture.written,
		"latency_ms", took.Milliseconds(),
		"body", t.body(capture.head.Bytes(), capture.cut),
	)
}

// middlewareObservability traces, measures and logs every request.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	t := newHTTPTelemetry(cfg, ins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.serve(next, w, r)
		})
	}
}
