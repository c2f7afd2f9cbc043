package entity

import (
	"testing"
	"time"
)

func newRecord(code int, issued time.Time, ttl time.Duration) *IdentityRecord {
	return &IdentityRecord{
		Email:   "user@dso.org.sg",
		History: []IssuedOTP{{ID: 1, Code: code, IssuedAt: issued, ExpiresAt: issued.Add(ttl)}},
	}
}

func TestIdentityRecord_Verify(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name         string
		guess        int
		attempts     int
		now          time.Time
		want         OTPStatus
		wantAttempts int
	}{
		{name: "match in time", guess: 123456, now: issued.Add(30 * time.Second), want: OTPStatusOK},
		{name: "match at exact expiry", guess: 123456, now: issued.Add(time.Minute), want: OTPStatusOK},
		{name: "match after expiry", guess: 123456, now: issued.Add(time.Minute + time.Millisecond), want: OTPStatusTimeout},
		{name: "wrong code", guess: 111111, now: issued, want: OTPStatusFail, wantAttempts: 1},
		{name: "wrong code after expiry", guess: 111111, now: issued.Add(time.Hour), want: OTPStatusFail, wantAttempts: 1},
		{name: "one below ceiling", guess: 123456, attempts: 9, now: issued, want: OTPStatusOK, wantAttempts: 9},
		{name: "at ceiling", guess: 123456, attempts: 10, now: issued, want: OTPStatusFail, wantAttempts: 11},
		{name: "expired at ceiling", guess: 123456, attempts: 10, now: issued.Add(time.Hour), want: OTPStatusFail, wantAttempts: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord(123456, issued, time.Minute)
			rec.AttemptCount = tt.attempts

			if got := rec.Verify(tt.guess, 10, tt.now); got != tt.want {
				t.Fatalf("Verify() = %s, want %s", got, tt.want)
			}
			if rec.AttemptCount != tt.wantAttempts {
				t.Fatalf("AttemptCount = %d, want %d", rec.AttemptCount, tt.wantAttempts)
			}
		})
	}
}

func TestIdentityRecord_Verify_OnlyLatest(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := newRecord(111111, issued, time.Minute)
	rec.History = append(rec.History, IssuedOTP{ID: 2, Code: 222222, IssuedAt: issued, ExpiresAt: issued.Add(time.Minute)})

	if got := rec.Verify(111111, 10, issued); got != OTPStatusFail {
		t.Fatalf("Verify(superseded) = %s, want OTP_FAIL", got)
	}
	if got := rec.Verify(222222, 10, issued); got != OTPStatusOK {
		t.Fatalf("Verify(latest) = %s, want OTP_OK", got)
	}
}

func TestIdentityRecord_Verify_Empty(t *testing.T) {
	rec := &IdentityRecord{Email: "user@dso.org.sg"}
	if got := rec.Verify(123456, 10, time.Now()); got != OTPStatusNoActive {
		t.Fatalf("Verify() = %s, want NO_ACTIVE_OTP", got)
	}
	if rec.AttemptCount != 0 {
		t.Fatalf("AttemptCount = %d, want 0", rec.AttemptCount)
	}
}

func TestIdentityRecord_Clone(t *testing.T) {
	rec := newRecord(123456, time.Now(), time.Minute)
	cp := rec.Clone()

	cp.History[0].Code = 999999
	cp.AttemptCount = 5

	if rec.History[0].Code != 123456 || rec.AttemptCount != 0 {
		t.Fatal("Clone() shares state with original")
	}
	if (*IdentityRecord)(nil).Clone() != nil {
		t.Fatal("Clone(nil) != nil")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@DSO.org.SG "); got != "user@dso.org.sg" {
		t.Fatalf("NormalizeEmail() = %q", got)
	}
}

func TestStatusString(t *testing.T) {
	if EmailStatusInvalid.String() != "EMAIL_INVALID" || EmailStatus(0).String() != "EMAIL_UNKNOWN" {
		t.Fatal("unexpected EmailStatus strings")
	}
	if OTPStatusNoActive.String() != "NO_ACTIVE_OTP" || OTPStatusTimeout.String() != "OTP_TIMEOUT" {
		t.Fatal("unexpected OTPStatus strings")
	}
}
