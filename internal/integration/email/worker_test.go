package email

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	"github.com/finance-tracker/platform/internal/integration/email/templates"
	"github.com/finance-tracker/platform/internal/integration/persistence"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type recordingSender struct {
	mu    sync.Mutex
	sent  []adapter.OutgoingEmail
	fails []error
}

func (s *recordingSender) Send(_ context.Context, email adapter.OutgoingEmail) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fails) > 0 {
		err := s.fails[0]
		s.fails = s.fails[1:]
		return "", err
	}
	s.sent = append(s.sent, email)
	return fmt.Sprintf("msg-%d", len(s.sent)), nil
}

type outcomeRecorder struct{ outcomes []string }

func (r *outcomeRecorder) ObserveEmailDelivery(template, outcome string) {
	r.outcomes = append(r.outcomes, template+":"+outcome)
}

type fixture struct {
	queue  adapter.EmailQueue
	mailer *Mailer
	worker *Worker
	sender   *recordingSender
	clock    *testClock
	outcomes *outcomeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	renderer, err := templates.NewRenderer()
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	queue := persistence.NewEmailQueueRepository(db, clock)
	sender := &recordingSender{}
	outcomes := &outcomeRecorder{}

	return &fixture{
		queue:    queue,
		mailer:   NewMailer(queue, clock, "https://app.example.com"),
		worker:   NewWorker(queue, sender, renderer, clock, time.Second, 10, WithDeliveryObserver(outcomes)),
		sender:   sender,
		clock:    clock,
		outcomes: outcomes,
	}
}

func testUser() *entity.User {
	return entity.NewUser("ana@example.com", "Ana", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestMailer_PasswordResetRendersRequirements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := testUser()

	ticket := &adapter.ResetTicket{Token: "abc123", UserID: user.ID, Email: user.Email, ExpiresAt: f.clock.now.Add(time.Hour)}
	requirements := template.HTML("<ul><li>Your password must contain at least 8 characters.</li></ul>")
	require.NoError(t, f.mailer.PasswordReset(ctx, user, ticket, requirements))

	sent, err := f.worker.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	email := f.sender.sent[0]
	assert.Equal(t, "ana@example.com", email.To)
	assert.Equal(t, "Redefinir sua senha - Finance Tracker", email.Subject)
	assert.Contains(t, email.HTML, "https://app.example.com/reset-password?token=abc123")
	assert.Contains(t, email.HTML, "<li>Your password must contain at least 8 characters.</li>")
	assert.Contains(t, email.Text, "1 hora")

	jobs, err := f.queue.ListByRecipient(ctx, user.Email, false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.EmailStatusSent, jobs[0].Status)
	assert.Equal(t, "msg-1", jobs[0].ProviderID)
}

func TestWorker_RetriesTemporaryFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := testUser()
	f.sender.fails = []error{errors.New("connection reset")}

	require.NoError(t, f.mailer.AccountClosed(ctx, user))

	sent, err := f.worker.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	sent, err = f.worker.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "retry waits for its delay")

	f.clock.now = f.clock.now.Add(time.Minute)
	sent, err = f.worker.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	jobs, err := f.queue.ListByRecipient(ctx, user.Email, false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, jobs[0].Attempts)
	assert.Equal(t, entity.EmailStatusSent, jobs[0].Status)
	assert.Equal(t, []string{"account_closed:retry", "account_closed:sent"}, f.outcomes.outcomes)
}

func TestWorker_PermanentFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := testUser()
	f.sender.fails = []error{fmt.Errorf("%w: 422 invalid recipient", ErrPermanent)}

	require.NoError(t, f.mailer.AccountClosed(ctx, user))
	_, err := f.worker.Drain(ctx)
	require.NoError(t, err)

	f.clock.now = f.clock.now.Add(time.Hour)
	sent, err := f.worker.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	jobs, err := f.queue.ListByRecipient(ctx, user.Email, false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.EmailStatusFailed, jobs[0].Status)
	assert.Contains(t, jobs[0].LastError, "invalid recipient")
	assert.Equal(t, []string{"account_closed:abandoned"}, f.outcomes.outcomes)
}

func TestMailer_CancelPendingSkipsDelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := testUser()

	ticket := &adapter.ResetTicket{Token: "t", ExpiresAt: f.clock.now.Add(30 * time.Minute)}
	require.NoError(t, f.mailer.PasswordReset(ctx, user, ticket, ""))

	n, err := f.mailer.CancelPending(ctx, user.Email)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	sent, err := f.worker.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.sender.sent)

	all, err := f.queue.ListByRecipient(ctx, user.Email, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].CancelledAt)
}

func TestExpiresIn(t *testing.T) {
	assert.Equal(t, "1 hora", expiresIn(time.Hour))
	assert.Equal(t, "24 horas", expiresIn(24*time.Hour))
	assert.Equal(t, "1 minuto", expiresIn(30*time.Second))
	assert.Equal(t, "30 minutos", expiresIn(30*time.Minute))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, isPermanent(errors.New("422: validation_error")))
	assert.True(t, isPermanent(errors.New("401 unauthorized")))
	assert.False(t, isPermanent(errors.New("dial tcp: i/o timeout")))
}
