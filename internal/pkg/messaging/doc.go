// Package messaging publishes OTP lifecycle events to a broker.
//
// NewFromDriver picks Kafka, NATS, NSQ, Google Pub/Sub or a discarding Noop
// from messaging.driver. Only the publishing side exists; consumers of
// otp_requested and otp_verified live in other services.
package messaging
