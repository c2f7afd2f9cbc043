package event

import "time"

const OTPRequestedDestination string = "otp_requested"

type OTPRequestedMessage struct {
	EventID      string    `json:"event_id"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	AttemptCount int       `json:"attempt_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}
