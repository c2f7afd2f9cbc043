package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/emailotp/internal/pkg/config"
	"github.com/shandysiswandi/emailotp/internal/pkg/goerror"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-fixed"), Instrument: instrument.NewNoop()})
}

func TestRouter_Endpoint(t *testing.T) {
	r := newTestRouter(t, "instrument:\n  log_mask_fields: code\n")

	r.POST("/echo", func(req *Request) (any, error) {
		var body struct {
			Email string `json:"email"`
		}
		if err := req.DecodeBody(&body); err != nil {
			return nil, err
		}
		return body, nil
	})
	r.GET("/fail", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Code has expired", goerror.CodeExpired, "status", "OTP_TIMEOUT")
	})
	r.GET("/panic", func(*Request) (any, error) {
		panic("boom")
	})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "ok", method: http.MethodPost, path: "/echo", body: `{"email":"a@dso.org.sg"}`, wantStatus: http.StatusOK, wantBody: `"email":"a@dso.org.sg"`},
		{name: "unknown field", method: http.MethodPost, path: "/echo", body: `{"mail":"x"}`, wantStatus: http.StatusBadRequest, wantBody: "Invalid request body"},
		{name: "business error", method: http.MethodGet, path: "/fail", wantStatus: http.StatusGone, wantBody: `"status":"OTP_TIMEOUT"`},
		{name: "panic", method: http.MethodGet, path: "/panic", wantStatus: http.StatusInternalServerError, wantBody: "Internal server error"},
		{name: "not found", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound, wantBody: "endpoint not found"},
		{name: "method not allowed", method: http.MethodGet, path: "/echo", wantStatus: http.StatusMethodNotAllowed},
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("body = %s, want substring %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_CorrelationID(t *testing.T) {
	r := newTestRouter(t, "app:\n  tz: UTC\n")

	var seen string
	r.GET("/cid", func(req *Request) (any, error) {
		seen = instrument.GetCorrelationID(req.Context())
		return map[string]string{}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cid", nil))
	if seen != "cid-fixed" || rec.Header().Get(HeaderCorrelationID) != "cid-fixed" {
		t.Fatalf("generated cid = %q header = %q", seen, rec.Header().Get(HeaderCorrelationID))
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cid", nil)
	req.Header.Set(HeaderRequestID, "  upstream-1 ")
	r.ServeHTTP(rec, req)
	if seen != "upstream-1" {
		t.Fatalf("propagated cid = %q, want upstream-1", seen)
	}
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, "app:\n  maintenance:\n    endpoints: /blocked\n")

	r.GET("/blocked", func(*Request) (any, error) { return map[string]string{}, nil })
	r.GET("/open", func(*Request) (any, error) { return map[string]string{}, nil })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blocked", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("blocked status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d", rec.Code)
	}

	var env successResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if env.Message != "request has been successfully" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestRequest_DecodeBody(t *testing.T) {
	type body struct {
		Email string `json:"email"`
		Code  int    `json:"code"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "ok", payload: `{"email":"a@dso.org.sg","code":123456}`},
		{name: "empty", payload: "", wantErr: true},
		{name: "trailing", payload: `{"email":"a@dso.org.sg"}{}`, wantErr: true},
		{name: "unknown field", payload: `{"mail":"a@dso.org.sg"}`, wantErr: true},
		{name: "wrong type", payload: `{"code":"123456"}`, wantErr: true},
		{name: "oversized", payload: `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))}
			var got body
			err := req.DecodeBody(&got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var gerr *goerror.Error
				if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidFormat {
					t.Fatalf("DecodeBody() error = %v, want invalid format", err)
				}
			}
		})
	}
}

func TestRouter_ClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		remote string
		want   string
	}{
		{name: "forwarded", header: http.Header{"X-Forwarded-For": {"203.0.113.7, 10.0.0.1"}}, remote: "10.0.0.1:5000", want: "203.0.113.7"},
		{name: "invalid header falls through", header: http.Header{"X-Real-Ip": {"nope"}}, remote: "192.0.2.4:1234", want: "192.0.2.4"},
		{name: "mapped v4", remote: "[::ffff:192.0.2.9]:80", want: "192.0.2.9"},
		{name: "garbage", remote: "pipe", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header = tt.header
			if req.Header == nil {
				req.Header = http.Header{}
			}
			req.RemoteAddr = tt.remote
			if got := clientIP(req); got != tt.want {
				t.Fatalf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeCID(t *testing.T) {
	if got := sanitizeCID("bad\r\nid"); got != "" {
		t.Fatalf("sanitizeCID(CRLF) = %q", got)
	}
	if got := sanitizeCID(strings.Repeat("x", 200)); len(got) != maxCIDLen {
		t.Fatalf("sanitizeCID(long) len = %d", len(got))
	}
}

func TestMaintenance_Blocks(t *testing.T) {
	tests := []struct {
		name  string
		m     maintenance
		route string
		want  bool
	}{
		{name: "empty", m: nil, route: "/api/v1/otp/request", want: false},
		{name: "listed", m: maintenance{"/api/v1/otp/request": {}}, route: "/api/v1/otp/request", want: true},
		{name: "not listed", m: maintenance{"/api/v1/otp/request": {}}, route: "/api/v1/otp/verify", want: false},
		{name: "all", m: maintenance{maintenanceAll: {}}, route: "/api/v1/otp/verify", want: true},
		{name: "all keeps health", m: maintenance{maintenanceAll: {}}, route: "/health", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.blocks(tt.route); got != tt.want {
				t.Fatalf("blocks(%q) = %v, want %v", tt.route, got, tt.want)
			}
		})
	}
}
