package notify

import (
	"context"
	"strings"
	"sync"

	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// EmailSender delivers one email. SendGrid, SES and the stub are interchangeable.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is an outgoing email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // plain text
	HTML    string // optional

	// Category tags the message for provider analytics, e.g. "followup-digest".
	Category string
}

const defaultFromName = "Prospect Pipeline"

// Provider names accepted by EMAIL_PROVIDER.
const (
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderStub     = "stub"
)

// NormalizeProvider lower-cases p and maps unknown values to ProviderStub.
func NormalizeProvider(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case ProviderSendGrid, ProviderSES:
		return p
	default:
		return ProviderStub
	}
}

// StubEmailSender logs instead of sending and keeps every message for inspection.
type StubEmailSender struct {
	logger *logging.Logger

	mu   sync.Mutex
	sent []EmailMessage
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send records msg.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of the messages recorded so far.
func (s *StubEmailSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

var _ EmailSender = (*StubEmailSender)(nil)
