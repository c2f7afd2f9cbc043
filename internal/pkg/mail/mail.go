package mail

import (
	"context"
	"io"
)

// Message is one outgoing email. The OTP flow fills To, Subject and TextBody
// and leaves From empty so the driver's configured sender is used.
type Message struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	// HTMLBody is sent as an alternative part when TextBody is also set.
	HTMLBody string
}

// Recipients returns every address the message would be delivered to.
func (m Message) Recipients() []string {
	all := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	all = append(all, m.To...)
	all = append(all, m.Cc...)
	return append(all, m.Bcc...)
}

// Mail delivers messages through one transport.
// Send returns once the transport accepted or rejected the message.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
