// Package email queues transactional emails and delivers them in the
// background through Resend.
package email

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	"github.com/finance-tracker/platform/internal/domain/message"
)

var subjects = map[entity.EmailTemplate]string{
	entity.TemplatePasswordReset: "Redefinir sua senha - Finance Tracker",
	entity.TemplateAccountClosed: "Sua conta foi encerrada - Finance Tracker",
}

// Mailer turns account events into queued emails.
type Mailer struct {
	queue      adapter.EmailQueue
	clock      adapter.Clock
	appBaseURL string
}

// NewMailer creates a Mailer. Links in emails point at appBaseURL.
func NewMailer(queue adapter.EmailQueue, clock adapter.Clock, appBaseURL string) *Mailer {
	return &Mailer{queue: queue, clock: clock, appBaseURL: appBaseURL}
}

// PasswordReset queues the reset link for ticket, listing the password
// requirements the new password must meet.
func (m *Mailer) PasswordReset(ctx context.Context, user *entity.User, ticket *adapter.ResetTicket, requirements template.HTML) error {
	now := m.clock.Now()
	link := m.appBaseURL + "/reset-password?token=" + url.QueryEscape(ticket.Token)

	return m.enqueue(ctx, entity.TemplatePasswordReset, user, map[string]string{
		"UserName":         user.Name,
		"ResetURL":         link,
		"ExpiresIn":        expiresIn(ticket.ExpiresAt.Sub(now)),
		"RequirementsHTML": string(requirements),
	}, now)
}

// AccountClosed queues the confirmation sent once an account is closed.
func (m *Mailer) AccountClosed(ctx context.Context, user *entity.User) error {
	now := m.clock.Now()
	closedAt := now
	if user.DeletedAt != nil {
		closedAt = *user.DeletedAt
	}

	return m.enqueue(ctx, entity.TemplateAccountClosed, user, map[string]string{
		"UserName": user.Name,
		"ClosedAt": closedAt.Format("02/01/2006 15:04 MST"),
	}, now)
}

// CancelPending soft-deletes every email still waiting for recipient.
func (m *Mailer) CancelPending(ctx context.Context, recipient string) (int64, error) {
	n, err := m.queue.CancelPending(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("cancel pending emails: %w", err)
	}
	if n > 0 {
		slog.Info("Pending emails cancelled", "recipient", recipient, "count", n)
	}
	return n, nil
}

func (m *Mailer) enqueue(ctx context.Context, tpl entity.EmailTemplate, user *entity.User, data map[string]string, now time.Time) error {
	job := entity.NewEmailJob(tpl, user.Email, user.Name, subjects[tpl], data, now)
	if err := m.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("queue %s email: %w", tpl, err)
	}
	slog.Info("Email queued", "template", tpl, "job_id", job.ID, "user_id", user.ID)
	return nil
}

// expiresIn phrases a validity window in whole hours, or minutes below one hour.
func expiresIn(d time.Duration) string {
	if d >= time.Hour {
		hours := int(math.Round(d.Hours()))
		return message.Pluralize(hours, "%{count} hora", "%{count} horas", message.Params{"count": hours})
	}
	minutes := int(math.Ceil(d.Minutes()))
	return message.Pluralize(minutes, "%{count} minuto", "%{count} minutos", message.Params{"count": minutes})
}

var _ adapter.Mailer = (*Mailer)(nil)
