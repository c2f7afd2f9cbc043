package event

import "time"

const OTPVerifiedDestination string = "otp_verified"

type OTPVerifiedMessage struct {
	EventID      string    `json:"event_id"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	AttemptCount int       `json:"attempt_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}
