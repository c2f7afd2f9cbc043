package entity

import (
	"slices"
	"strings"
	"time"
)

// IssuedOTP is one code that was successfully delivered.
type IssuedOTP struct {
	ID        int64
	Code      int
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdentityRecord is the per-email verification state.
//
// History is ordered oldest first and is never empty once the record exists.
// AttemptCount only grows; it is not reset when a new code is issued.
type IdentityRecord struct {
	Email        string
	History      []IssuedOTP
	AttemptCount int
}

// NormalizeEmail returns the canonical key for an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Latest returns the newest issued code.
func (r *IdentityRecord) Latest() (IssuedOTP, bool) {
	if r == nil || len(r.History) == 0 {
		return IssuedOTP{}, false
	}
	return r.History[len(r.History)-1], true
}

// Locked reports whether the attempt ceiling has been reached.
func (r *IdentityRecord) Locked(maxTry int) bool {
	return r.AttemptCount >= maxTry
}

// Verify checks guess against the newest code and updates AttemptCount.
//
// A match below the ceiling returns OK or Timeout and leaves the counter alone.
// Anything else, including a correct guess on a locked record, counts as a
// failed attempt.
func (r *IdentityRecord) Verify(guess, maxTry int, now time.Time) OTPStatus {
	latest, ok := r.Latest()
	if !ok {
		return OTPStatusNoActive
	}

	if guess == latest.Code && !r.Locked(maxTry) {
		if now.After(latest.ExpiresAt) {
			return OTPStatusTimeout
		}
		return OTPStatusOK
	}

	r.AttemptCount++
	return OTPStatusFail
}

// Clone returns a deep copy safe to hand out of the store.
func (r *IdentityRecord) Clone() *IdentityRecord {
	if r == nil {
		return nil
	}
	return &IdentityRecord{
		Email:        r.Email,
		History:      slices.Clone(r.History),
		AttemptCount: r.AttemptCount,
	}
}
