package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/emailotp/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a 500 with the standard
// error envelope. http.ErrAbortHandler is re-raised so net/http can drop the
// connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel must be compared directly
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			frames := stacktrace.InternalPaths(stack)
			var where any = frames
			if len(frames) == 0 {
				where = string(stack)
			}
			slog.ErrorContext(r.Context(), "panic recovered in http handler",
				"panic", rvr,
				"route", matchedRoutePath(r),
				"stack", where,
			)

			writeJSON(w, errorResponse{Message: msgInternal}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
