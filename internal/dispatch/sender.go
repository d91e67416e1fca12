package dispatch

import (
	"context"

	"github.com/dnbdoctor/labelops/internal/pkg/logger"
)

// OutboundEmail is one rendered message ready for delivery.
type OutboundEmail struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers a single rendered email. Implementations must be safe for
// concurrent use; the dispatcher fans out across recipients.
type Sender interface {
	Send(ctx context.Context, email OutboundEmail) error
}

// LogSender is the development sender: it logs the delivery instead of
// performing it. Addresses are redacted by the logger.
type LogSender struct{}

func (LogSender) Send(_ context.Context, email OutboundEmail) error {
	logger.Info("email send (dry run)", "recipient", email.To, "subject", email.Subject)
	return nil
}
