package router

import (
	"net/http"
	"strings"

	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/uid"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when a proxy sets it instead of X-Correlation-ID.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// NormalizeCorrelationID trims v and cuts it to 128 bytes. A value holding a
// line break becomes "" so it never reaches a log line or response header.
func NormalizeCorrelationID(v string) string {
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	v = strings.TrimSpace(v)
	return v[:min(len(v), maxCorrelationIDLen)]
}

// middlewareCorrelationID takes the caller's correlation ID, or generates one,
// echoes it in the response and stores it in the request context for logging.
func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := ""
			for _, h := range []string{HeaderCorrelationID, HeaderRequestID} {
				if cid = NormalizeCorrelationID(r.Header.Get(h)); cid != "" {
					break
				}
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}
			next.ServeHTTP(w, r)
		})
	}
}
