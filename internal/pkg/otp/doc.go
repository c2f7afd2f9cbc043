// Package otp generates the numeric one-time passcodes delivered by email.
//
// Codes are six digits drawn uniformly from [MinCode, MaxCode]. The source is
// math/rand/v2, not a cryptographic generator: a code is guarded by expiry and
// an attempt ceiling rather than by unpredictability alone.
package otp
