package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmailTemplate names a message layout under the email templates directory.
type EmailTemplate string

const (
	TemplatePasswordReset EmailTemplate = "password_reset"
	TemplateAccountClosed EmailTemplate = "account_closed"
)

// EmailStatus is the delivery state of a queued email.
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// MaxEmailAttempts bounds delivery attempts per email.
const MaxEmailAttempts = 3

// emailRetryDelays[n-1] is the wait after the n-th failed attempt.
var emailRetryDelays = []time.Duration{time.Minute, 5 * time.Minute}

// EmailJob is an outgoing email waiting in the queue. Cancelled jobs are
// soft-deleted: they keep their row and the worker no longer sees them.
type EmailJob struct {
	ID            uuid.UUID
	Template      EmailTemplate
	To            string
	Name          string
	Subject       string
	Data          map[string]string
	Status        EmailStatus
	Attempts      int
	LastError     string
	ProviderID    string
	CreatedAt     time.Time
	NextAttemptAt time.Time
	FinishedAt    *time.Time
	CancelledAt   *time.Time
}

// NewEmailJob queues an email for immediate delivery.
func NewEmailJob(template EmailTemplate, to, name, subject string, data map[string]string, now time.Time) *EmailJob {
	return &EmailJob{
		ID:            uuid.New(),
		Template:      template,
		To:            to,
		Name:          name,
		Subject:       subject,
		Data:          data,
		Status:        EmailStatusPending,
		CreatedAt:     now,
		NextAttemptAt: now,
	}
}

// Due reports whether the worker should attempt delivery at now.
func (j *EmailJob) Due(now time.Time) bool {
	return j.Status == EmailStatusPending && j.CancelledAt == nil && !j.NextAttemptAt.After(now)
}

// Delivered records a successful send.
func (j *EmailJob) Delivered(providerID string, now time.Time) {
	j.Attempts++
	j.Status = EmailStatusSent
	j.ProviderID = providerID
	j.LastError = ""
	j.FinishedAt = &now
}

// Failed records a failed send. A temporary failure is retried after a delay
// until MaxEmailAttempts is reached; it reports whether another attempt is
// scheduled.
func (j *EmailJob) Failed(cause error, permanent bool, now time.Time) bool {
	j.Attempts++
	j.LastError = cause.Error()

	if permanent || j.Attempts >= MaxEmailAttempts {
		j.Status = EmailStatusFailed
		j.FinishedAt = &now
		return false
	}

	delay := emailRetryDelays[len(emailRetryDelays)-1]
	if j.Attempts <= len(emailRetryDelays) {
		delay = emailRetryDelays[j.Attempts-1]
	}
	j.NextAttemptAt = now.Add(delay)
	return true
}
