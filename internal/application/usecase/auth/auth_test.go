package auth

import (
	"context"
	"fmt"
	"html/template"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/domain/password"
	"github.com/finance-tracker/platform/internal/integration/adapters"
	"github.com/finance-tracker/platform/internal/integration/persistence"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
)

const strongPassword = "correct-horse-battery"

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type resetMail struct {
	user         *entity.User
	ticket       *adapter.ResetTicket
	requirements template.HTML
}

type fakeMailer struct {
	mu        sync.Mutex
	resets    []resetMail
	closed    []*entity.User
	cancelled []string
}

func (m *fakeMailer) PasswordReset(_ context.Context, user *entity.User, ticket *adapter.ResetTicket, requirements template.HTML) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, resetMail{user: user, ticket: ticket, requirements: requirements})
	return nil
}

func (m *fakeMailer) AccountClosed(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, user)
	return nil
}

func (m *fakeMailer) CancelPending(_ context.Context, recipient string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, recipient)
	return 0, nil
}

type fixture struct {
	deps   Deps
	clock  *testClock
	mailer *fakeMailer
	tokens *persistence.TokenRepository
}

func newFixture(t *testing.T, validators ...password.Validator) *fixture {
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

	policy := password.NewPolicy(validators...)
	if len(validators) == 0 {
		policy, err = password.DefaultRegistry().NewPolicy(password.DefaultDescriptors())
		require.NoError(t, err)
	}

	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := persistence.NewTokenRepository(db, clock)
	mailer := &fakeMailer{}

	return &fixture{
		deps: Deps{
			Users:  persistence.NewUserRepository(db, clock),
			Hasher: adapters.NewBcryptHasher(bcrypt.MinCost),
			Policy: policy,
			Sessions: adapters.NewSessionService(adapters.SessionConfig{
				Secret:             "test-secret",
				AccessTTL:          15 * time.Minute,
				RefreshTTL:         24 * time.Hour,
				RememberAccessTTL:  time.Hour,
				RememberRefreshTTL: 30 * 24 * time.Hour,
			}, tokens, clock),
			Resets: adapters.NewResetTokenService(time.Hour, tokens, clock),
			Mailer: mailer,
			Clock:  clock,
		},
		clock:  clock,
		mailer: mailer,
		tokens: tokens,
	}
}

func (f *fixture) register(t *testing.T, email string) *RegisterOutput {
	t.Helper()
	out, err := NewRegister(f.deps).Execute(context.Background(), RegisterInput{
		Email:         email,
		Name:          "Ana Souza",
		Password:      strongPassword,
		TermsAccepted: true,
	})
	require.NoError(t, err)
	return out
}

func assertCode(t *testing.T, err error, want domainerror.Code) {
	t.Helper()
	require.Error(t, err)
	code, ok := domainerror.CodeOf(err)
	require.True(t, ok, "error %v carries no code", err)
	assert.Equal(t, want, code)
}

// subjectRecorder accepts every password and remembers who it was checked for.
type subjectRecorder struct{ seen []*password.Subject }

func (r *subjectRecorder) Validate(_ string, subject *password.Subject) error {
	r.seen = append(r.seen, subject)
	return nil
}

func (r *subjectRecorder) HelpText() string { return "" }

func TestRegister_ChecksPasswordAgainstNewAccount(t *testing.T) {
	recorder := &subjectRecorder{}
	f := newFixture(t, recorder)

	out := f.register(t, "Ana@Example.com")

	require.Len(t, recorder.seen, 1)
	subject := recorder.seen[0]
	assert.Equal(t, out.User.ID, subject.ID)
	assert.NotEqual(t, uuid.Nil, subject.ID)
	assert.Equal(t, "ana@example.com", subject.Email)
	assert.Equal(t, "Ana Souza", subject.Name)
	assert.NotEmpty(t, out.Session.AccessToken)
	assert.NotEmpty(t, out.Session.RefreshToken)
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	f.register(t, "taken@example.com")

	tests := []struct {
		name  string
		input RegisterInput
		want  domainerror.Code
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: strongPassword, TermsAccepted: true}, domainerror.CodeMissingFields},
		{"terms", RegisterInput{Email: "a@example.com", Name: "A", Password: strongPassword}, domainerror.CodeTermsNotAccepted},
		{"email format", RegisterInput{Email: "nope", Name: "A", Password: strongPassword, TermsAccepted: true}, domainerror.CodeInvalidEmail},
		{"weak password", RegisterInput{Email: "a@example.com", Name: "A", Password: "123", TermsAccepted: true}, domainerror.CodeWeakPassword},
		{"email taken", RegisterInput{Email: "TAKEN@example.com", Name: "A", Password: strongPassword, TermsAccepted: true}, domainerror.CodeEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegister(f.deps).Execute(context.Background(), tt.input)
			assertCode(t, err, tt.want)
		})
	}
}

func TestRegister_WeakPasswordListsEveryViolation(t *testing.T) {
	f := newFixture(t)

	_, err := NewRegister(f.deps).Execute(context.Background(), RegisterInput{
		Email: "a@example.com", Name: "A", Password: "1234", TermsAccepted: true,
	})
	assertCode(t, err, domainerror.CodeWeakPassword)

	var verr *password.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasCode(password.CodePasswordTooShort))
	assert.True(t, verr.HasCode(password.CodePasswordEntirelyNumeric))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com")

	out, err := NewLogin(f.deps).Execute(ctx, LoginInput{Email: "ana@example.com", Password: strongPassword, RememberMe: true})
	require.NoError(t, err)
	claims, err := f.deps.Sessions.Verify(ctx, out.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.True(t, claims.RememberMe)

	_, err = NewLogin(f.deps).Execute(ctx, LoginInput{Email: "ana@example.com", Password: "wrong-password"})
	assertCode(t, err, domainerror.CodeInvalidCredentials)

	_, err = NewLogin(f.deps).Execute(ctx, LoginInput{Email: "ghost@example.com", Password: strongPassword})
	assertCode(t, err, domainerror.CodeInvalidCredentials)
}

func TestRefresh_RotatesAndKeepsRememberMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com")

	login, err := NewLogin(f.deps).Execute(ctx, LoginInput{Email: "ana@example.com", Password: strongPassword, RememberMe: true})
	require.NoError(t, err)

	next, err := NewRefresh(f.deps).Execute(ctx, login.Session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Session.RefreshToken, next.RefreshToken)

	claims, err := f.deps.Sessions.Verify(ctx, next.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.RememberMe)

	_, err = NewRefresh(f.deps).Execute(ctx, login.Session.RefreshToken)
	assertCode(t, err, domainerror.CodeInvalidToken)

	_, err = NewRefresh(f.deps).Execute(ctx, "")
	assertCode(t, err, domainerror.CodeMissingToken)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	out := f.register(t, "ana@example.com")

	require.NoError(t, NewLogout(f.deps).Execute(ctx, out.Session.RefreshToken))
	require.NoError(t, NewLogout(f.deps).Execute(ctx, "unknown"))

	_, err := NewRefresh(f.deps).Execute(ctx, out.Session.RefreshToken)
	assertCode(t, err, domainerror.CodeInvalidToken)

	rows, err := f.tokens.ListRefresh(ctx, out.User.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsDeleted())
}

func TestForgotPassword_SameAnswerForUnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com")

	msg, err := NewForgotPassword(f.deps).Execute(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, ForgotPasswordMessage, msg)
	assert.Empty(t, f.mailer.resets)

	msg, err = NewForgotPassword(f.deps).Execute(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, ForgotPasswordMessage, msg)
	require.Len(t, f.mailer.resets, 1)
	assert.Contains(t, string(f.mailer.resets[0].requirements), "<ul>")

	_, err = NewForgotPassword(f.deps).Execute(ctx, "not-an-email")
	assertCode(t, err, domainerror.CodeInvalidEmail)
}

func TestResetPassword_SignsOutEverywhere(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "ana@example.com")

	_, err := NewForgotPassword(f.deps).Execute(ctx, "ana@example.com")
	require.NoError(t, err)
	token := f.mailer.resets[0].ticket.Token

	err = NewResetPassword(f.deps).Execute(ctx, ResetPasswordInput{Token: token, NewPassword: "123"})
	assertCode(t, err, domainerror.CodeWeakPassword)

	require.NoError(t, NewResetPassword(f.deps).Execute(ctx, ResetPasswordInput{Token: token, NewPassword: "a-brand-new-secret"}))

	_, err = NewRefresh(f.deps).Execute(ctx, reg.Session.RefreshToken)
	assertCode(t, err, domainerror.CodeInvalidToken)

	_, err = NewLogin(f.deps).Execute(ctx, LoginInput{Email: "ana@example.com", Password: "a-brand-new-secret"})
	require.NoError(t, err)

	err = NewResetPassword(f.deps).Execute(ctx, ResetPasswordInput{Token: token, NewPassword: "another-new-secret"})
	assertCode(t, err, domainerror.CodeInvalidResetToken)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com")

	_, err := NewForgotPassword(f.deps).Execute(ctx, "ana@example.com")
	require.NoError(t, err)

	f.clock.now = f.clock.now.Add(2 * time.Hour)
	err = NewResetPassword(f.deps).Execute(ctx, ResetPasswordInput{Token: f.mailer.resets[0].ticket.Token, NewPassword: "a-brand-new-secret"})
	assertCode(t, err, domainerror.CodeExpiredResetToken)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "ana@example.com")
	uc := NewDeleteAccount(f.deps)

	_, err := uc.Execute(ctx, DeleteAccountInput{UserID: reg.User.ID, Password: strongPassword, Confirmation: "delete"})
	assertCode(t, err, domainerror.CodeInvalidConfirmation)

	_, err = uc.Execute(ctx, DeleteAccountInput{UserID: reg.User.ID, Password: "wrong", Confirmation: DeleteConfirmation})
	assertCode(t, err, domainerror.CodeInvalidCredentials)

	closedAt, err := uc.Execute(ctx, DeleteAccountInput{UserID: reg.User.ID, Password: strongPassword, Confirmation: DeleteConfirmation})
	require.NoError(t, err)
	assert.True(t, closedAt.Equal(f.clock.now))

	assert.Equal(t, []string{"ana@example.com"}, f.mailer.cancelled)
	require.Len(t, f.mailer.closed, 1)
	assert.True(t, f.mailer.closed[0].IsDeleted())

	_, err = NewRefresh(f.deps).Execute(ctx, reg.Session.RefreshToken)
	assertCode(t, err, domainerror.CodeInvalidToken)

	_, err = NewLogin(f.deps).Execute(ctx, LoginInput{Email: "ana@example.com", Password: strongPassword})
	assertCode(t, err, domainerror.CodeInvalidCredentials)

	_, err = uc.Execute(ctx, DeleteAccountInput{UserID: reg.User.ID, Password: strongPassword, Confirmation: DeleteConfirmation})
	assertCode(t, err, domainerror.CodeUserNotFound)
}

func TestGetPasswordRequirements(t *testing.T) {
	f := newFixture(t)
	out := NewGetPasswordRequirements(f.deps).Execute()
	assert.Len(t, out.HelpTexts, 4)
	assert.Contains(t, string(out.HTML), "<li>")

	empty := newFixture(t, &subjectRecorder{})
	empty.deps.Policy = password.NewPolicy()
	out = NewGetPasswordRequirements(empty.deps).Execute()
	assert.NotNil(t, out.HelpTexts)
	assert.Empty(t, out.HelpTexts)
	assert.Empty(t, out.HTML)
}
