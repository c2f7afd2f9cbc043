// Package mail holds the email transports used to deliver one-time codes.
//
// NewFromDriver picks the transport from mail.driver: "smtp" dials a relay
// through gomail and "log" only writes the envelope to slog for local runs.
// Neither transport retries; the caller decides what a failed send means.
package mail
