package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "invalid input", err: NewInvalidInput(nil, "email", "invalid"), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "unauthorized", err: NewBusiness("wrong", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "expired", err: NewBusiness("expired", CodeExpired), want: http.StatusGone},
		{name: "unavailable", err: NewBusiness("down", CodeUnavailable), want: http.StatusServiceUnavailable},
		{name: "conflict", err: NewBusiness("dup", CodeConflict), want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("errors.As(%v) = false", tt.err)
			}
			if got := gerr.StatusCode(); got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewBusiness_Fields(t *testing.T) {
	var gerr *Error
	if !errors.As(NewBusiness("Code has expired", CodeExpired, "status", "OTP_TIMEOUT", "dangling"), &gerr) {
		t.Fatal("expected *Error")
	}

	if gerr.Msg() != "Code has expired" {
		t.Errorf("Msg() = %q", gerr.Msg())
	}
	if gerr.Type() != TypeBusiness {
		t.Errorf("Type() = %s", gerr.Type())
	}
	if got := gerr.Fields(); len(got) != 1 || got["status"] != "OTP_TIMEOUT" {
		t.Errorf("Fields() = %v", got)
	}

	if !errors.As(NewBusiness("plain", CodeNotFound), &gerr) {
		t.Fatal("expected *Error")
	}
	if gerr.Fields() != nil {
		t.Errorf("Fields() = %v, want nil", gerr.Fields())
	}
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("smtp down")
	err := NewServer(base)

	if !errors.Is(err, base) {
		t.Fatal("errors.Is(NewServer(base), base) = false")
	}
	if err.Error() != "smtp down" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestCodeAndType_String(t *testing.T) {
	if got := CodeExpired.String(); got != "ERROR_CODE_EXPIRED" {
		t.Errorf("CodeExpired.String() = %s", got)
	}
	if got := Code(99).String(); got != "ERROR_CODE_INTERNAL" {
		t.Errorf("Code(99).String() = %s", got)
	}
	if got := TypeValidation.String(); got != "ERROR_TYPE_VALIDATION" {
		t.Errorf("TypeValidation.String() = %s", got)
	}

	var gerr *Error
	if !errors.As(NewInvalidInput(nil, "email"), &gerr) || gerr.Code() != CodeInvalidFormat {
		t.Fatalf("odd kv should degrade to invalid format, got %v", gerr)
	}
	if !errors.As(NewInvalidInput(nil, "email", "email is a required field"), &gerr) || gerr.Fields()["email"] == "" {
		t.Fatalf("Fields() = %v", gerr.Fields())
	}
}
