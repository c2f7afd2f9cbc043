package mail

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverSMTP selects the SMTP backend.
	DriverSMTP = "smtp"
	// DriverLog selects the log-only backend.
	DriverLog = "log"
)

// ErrUnknownDriver indicates an unsupported mail driver.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// NewFromDriver constructs a Mail implementation by driver name.
func NewFromDriver(driver string, smtp SMTPConfig) (Mail, error) {
	switch strings.TrimSpace(driver) {
	case DriverSMTP:
		return NewSMTP(smtp)
	case DriverLog:
		return NewLogger(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
