package config

import (
	"io"
	"time"
)

// Config is the read-only view over config.yaml plus EMAILOTP_* environment
// overrides. Missing keys return the zero value; callers that need a
// non-zero default apply it themselves.
type Config interface {
	io.Closer

	// GetMillisecond, GetSecond and GetMinute read an integer and scale it
	// to a duration, e.g. messaging.retry.base_milliseconds or
	// modules.otp.timeout_minutes.
	GetMillisecond(key string) time.Duration
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint32(key string) uint32
	GetUint64(key string) uint64
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetArray splits a comma separated value and drops blank entries,
	// e.g. modules.otp.valid_domain: "dso.org.sg,ethereal.email".
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2" into a map.
	GetMap(key string) map[string]string
}
