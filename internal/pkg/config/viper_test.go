package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const testYAML = `
modules:
  otp:
    valid_domain: " dso.org.sg, Ethereal.Email ,, "
    max_try_count: 10
    timeout_minutes: 1
    peek_enabled: true
mail:
  timeout_seconds: 15
  headers: "x-env: test, x-team:otp"
messaging:
  retry:
    base_milliseconds: 150
instrument:
  trace_sample_ratio: 0.25
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	if got := cfg.GetInt("modules.otp.max_try_count"); got != 10 {
		t.Errorf("GetInt() = %d, want 10", got)
	}
	if got := cfg.GetMinute("modules.otp.timeout_minutes"); got != time.Minute {
		t.Errorf("GetMinute() = %s, want 1m", got)
	}
	if got := cfg.GetSecond("mail.timeout_seconds"); got != 15*time.Second {
		t.Errorf("GetSecond() = %s, want 15s", got)
	}
	if got := cfg.GetMillisecond("messaging.retry.base_milliseconds"); got != 150*time.Millisecond {
		t.Errorf("GetMillisecond() = %s, want 150ms", got)
	}
	if !cfg.GetBool("modules.otp.peek_enabled") {
		t.Error("GetBool() = false, want true")
	}
	if got := cfg.GetFloat64("instrument.trace_sample_ratio"); got != 0.25 {
		t.Errorf("GetFloat64() = %v, want 0.25", got)
	}

	wantArr := []string{"dso.org.sg", "Ethereal.Email"}
	if got := cfg.GetArray("modules.otp.valid_domain"); !reflect.DeepEqual(got, wantArr) {
		t.Errorf("GetArray() = %q, want %q", got, wantArr)
	}
	if got := cfg.GetArray("missing.key"); len(got) != 0 {
		t.Errorf("GetArray(missing) = %q, want empty", got)
	}

	wantMap := map[string]string{"x-env": "test", "x-team": "otp"}
	if got := cfg.GetMap("mail.headers"); !reflect.DeepEqual(got, wantMap) {
		t.Errorf("GetMap() = %v, want %v", got, wantMap)
	}

	if err := cfg.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("EMAILOTP_MODULES_OTP_MAX_TRY_COUNT", "3")

	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	if got := cfg.GetInt("modules.otp.max_try_count"); got != 3 {
		t.Fatalf("GetInt() = %d, want env override 3", got)
	}
}

func TestNewViperFromBytes_Invalid(t *testing.T) {
	if _, err := NewViperFromBytes("", []byte(testYAML)); err == nil {
		t.Fatal("expected error for empty config type")
	}
	if _, err := NewViperFromBytes("yaml", []byte("key: [unclosed")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestNewViper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	if got := cfg.GetString("modules.otp.valid_domain"); got == "" {
		t.Fatal("GetString() = empty")
	}

	if _, err := NewViper(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
