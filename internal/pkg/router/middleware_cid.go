package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/uid"
)

const (
	// HeaderCorrelationID carries the id that ties logs, spans and events of one request together.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when a proxy sets it instead of HeaderCorrelationID.
	HeaderRequestID = "X-Request-ID"

	maxCIDLen = 128
)

// sanitizeCID keeps printable ASCII ids only, capped at maxCIDLen bytes.
func sanitizeCID(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsFunc(v, func(r rune) bool { return r < '!' || r > '~' }) {
		return ""
	}
	return v[:min(len(v), maxCIDLen)]
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cid string
			for _, h := range []string{HeaderCorrelationID, HeaderRequestID} {
				if cid = sanitizeCID(r.Header.Get(h)); cid != "" {
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
