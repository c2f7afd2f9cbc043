// Package uid generates identifiers: snowflake numbers for log correlation of
// issued codes and UUIDs for event and request ids.
package uid

import "github.com/google/uuid"

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// UUID generates version 7 UUIDs so event ids sort by creation time.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a version 7 UUID, or a random version 4 UUID if the
// time-based generator fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
