package notify

import "context"

// Message is one outbound notification.
type Message struct {
	ToName      string
	ToAddress   string
	FromName    string
	FromAddress string
	Subject     string
	PlainBody   string
	HTMLBody    string
}

// Sender delivers notifications. Implementations return a transport message id
// on success; any error means the message may be retried by the caller.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
