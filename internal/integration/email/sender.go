package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"

	"github.com/finance-tracker/platform/internal/application/adapter"
)

// ErrPermanent marks a delivery failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent email failure")

// permanentMarkers are fragments of Resend error messages for rejected requests.
var permanentMarkers = []string{"400", "401", "403", "404", "422", "validation", "invalid", "not allowed", "forbidden", "unauthorized"}

// ResendSender delivers emails through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// ResendOption configures a ResendSender.
type ResendOption func(*resend.Client)

// WithBaseURL points the client at another Resend-compatible endpoint.
func WithBaseURL(u *url.URL) ResendOption {
	return func(c *resend.Client) {
		c.BaseURL = u
	}
}

// NewResendSender creates a sender authenticated with apiKey.
func NewResendSender(apiKey, fromName, fromEmail string, opts ...ResendOption) *ResendSender {
	client := resend.NewClient(apiKey)
	for _, opt := range opts {
		opt(client)
	}
	return &ResendSender{client: client, from: fmt.Sprintf("%s <%s>", fromName, fromEmail)}
}

func (s *ResendSender) Send(ctx context.Context, email adapter.OutgoingEmail) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		if isPermanent(err) {
			return "", fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return "", err
	}
	return sent.Id, nil
}

func isPermanent(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// LogSender writes emails to the log instead of sending them. It stands in
// for Resend when no API key is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, email adapter.OutgoingEmail) (string, error) {
	id := "log-" + uuid.NewString()
	slog.Info("Email not sent, no provider configured",
		"id", id,
		"to", email.To,
		"subject", email.Subject,
		"text", email.Text,
	)
	return id, nil
}

var (
	_ adapter.EmailSender = (*ResendSender)(nil)
	_ adapter.EmailSender = LogSender{}
)
