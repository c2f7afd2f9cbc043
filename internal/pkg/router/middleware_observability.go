package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/redact"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxLoggedBody = 32 << 10

// recorder captures the status, size and a bounded copy of the response body.
type recorder struct {
	http.ResponseWriter
	status    int
	bytes     int
	body      bytes.Buffer
	truncated bool
	err       error
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBody - w.body.Len(); room < len(p) {
		w.body.Write(p[:max(room, 0)])
		w.truncated = true
	} else {
		w.body.Write(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// SetError lets the endpoint adapter attach the handler error to the span.
func (w *recorder) SetError(err error) {
	w.err = err
}

func (w *recorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBody bytes and puts them back in front of the
// remaining stream so the handler still sees the full body.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // best effort for logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

func describeBody(red *redact.Redactor, contentType string, body []byte, truncated bool) any {
	if len(body) == 0 {
		return nil
	}

	var out any
	if doc, ok := red.JSON(body); ok {
		out = doc
	} else if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			out = red.Form(values)
		}
	}
	if out == nil {
		if !utf8.Valid(body) {
			return "<binary body omitted>"
		}
		out = string(body)
	}

	if truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

type observer struct {
	red      *redact.Redactor
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newObserver(red *redact.Redactor, ins instrument.Instrumentation) *observer {
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return &observer{
		red:      red,
		tracer:   ins.Tracer("http.server"),
		requests: requests,
		duration: duration,
	}
}

func (o *observer) finish(r *http.Request, span trace.Span, rec *recorder, route string, elapsed time.Duration) {
	ctx := r.Context()
	status := rec.statusCode()
	attrs := metric.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPResponseStatusCodeKey.Int(status),
	)

	if o.requests != nil {
		o.requests.Add(ctx, 1, attrs)
	}
	if o.duration != nil {
		o.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}

	span.SetAttributes(
		semconv.HTTPResponseStatusCodeKey.Int(status),
		semconv.NetworkProtocolVersionKey.String(r.Proto),
		semconv.ServerAddressKey.String(r.Host),
		semconv.ClientAddressKey.String(r.RemoteAddr),
		attribute.String("http.user_agent", r.UserAgent()),
		attribute.Int("http.response_content_length", rec.bytes),
		attribute.String("correlation_id", instrument.GetCorrelationID(ctx)),
	)
	if rec.err != nil {
		span.RecordError(rec.err)
	}
	switch {
	case status >= http.StatusInternalServerError && rec.err != nil:
		span.SetStatus(codes.Error, rec.err.Error())
	case status >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, http.StatusText(status))
	default:
		span.SetStatus(codes.Ok, "")
	}

	slog.InfoContext(ctx, "http response",
		"method", r.Method,
		"route", route,
		"status", status,
		"bytes", rec.bytes,
		"latency_ms", elapsed.Milliseconds(),
		"body", describeBody(o.red, rec.Header().Get("Content-Type"), rec.body.Bytes(), rec.truncated),
	)
}

// middlewareObservability wraps each request in a server span, records the
// request counter and latency histogram, and logs both directions with
// sensitive fields redacted.
func middlewareObservability(red *redact.Redactor, ins instrument.Instrumentation) Middleware {
	o := newObserver(red, ins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx, span := o.tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()
			r = r.WithContext(ctx)

			body := peekBody(r)
			slog.InfoContext(ctx, "http request",
				"method", r.Method,
				"route", route,
				"uri", r.RequestURI,
				"remote_ip", r.RemoteAddr,
				"headers", o.red.Header(r.Header),
				"body", describeBody(o.red, r.Header.Get("Content-Type"), body, len(body) == maxLoggedBody),
			)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			o.finish(r, span, rec, route, time.Since(start))
		})
	}
}
