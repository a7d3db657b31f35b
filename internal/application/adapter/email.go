package adapter

import (
	"context"
	"html/template"
	"time"

	"github.com/finance-tracker/platform/internal/domain/entity"
)

// OutgoingEmail is a rendered message ready for the provider.
type OutgoingEmail struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers a rendered email and returns the provider's message ID.
type EmailSender interface {
	Send(ctx context.Context, email OutgoingEmail) (string, error)
}

// EmailQueue persists outgoing emails until the worker delivers them.
type EmailQueue interface {
	Enqueue(ctx context.Context, job *entity.EmailJob) error

	// Due returns up to limit pending, uncancelled jobs scheduled at or before now.
	Due(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error)

	Save(ctx context.Context, job *entity.EmailJob) error

	// CancelPending soft-deletes the pending jobs addressed to recipient.
	CancelPending(ctx context.Context, recipient string) (int64, error)

	// ListByRecipient returns a recipient's jobs, oldest first.
	ListByRecipient(ctx context.Context, recipient string, includeCancelled bool) ([]*entity.EmailJob, error)
}

// Mailer queues the transactional emails sent by the account flows.
type Mailer interface {
	PasswordReset(ctx context.Context, user *entity.User, ticket *ResetTicket, requirements template.HTML) error
	AccountClosed(ctx context.Context, user *entity.User) error
	// CancelPending drops the emails still waiting for a recipient.
	CancelPending(ctx context.Context, recipient string) (int64, error)
}
