package dependency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finance-tracker/platform/config"
	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/password"
	"github.com/finance-tracker/platform/internal/integration/adapters"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
)

func memoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type outbox struct {
	mu   sync.Mutex
	sent []adapter.OutgoingEmail
}

func (o *outbox) Send(_ context.Context, email adapter.OutgoingEmail) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, email)
	return fmt.Sprintf("test-%d", len(o.sent)), nil
}

type testApp struct {
	t        *testing.T
	engine   *gin.Engine
	injector *Injector
	clock    *fixedClock
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT:    config.JWTConfig{Secret: "test-secret"},
		Email:  config.EmailConfig{AppBaseURL: "http://localhost:3000"},
		RateLimit: config.RateLimitConfig{
			Enabled:       true,
			Backend:       "memory",
			LoginAttempts: 3,
			LoginWindow:   time.Minute,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts Options) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	clock := &fixedClock{now: time.Now().UTC().Truncate(time.Second)}
	opts.Clock = clock
	opts.Hasher = adapters.NewBcryptHasher(bcrypt.MinCost)
	if opts.Sender == nil {
		opts.Sender = &outbox{}
	}

	injector, err := NewInjector(cfg, db, opts)
	require.NoError(t, err)

	return &testApp{
		t:        t,
		engine:   injector.Router.Setup("test"),
		injector: injector,
		clock:    clock,
	}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testApp) register(email string) dto.AuthResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":          email,
		"name":           "Ana Souza",
		"password":       "correct-horse-battery",
		"terms_accepted": true,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.AuthResponse](a.t, rec)
}

func (a *testApp) createCategory(token, name string) dto.CategoryResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/categories", token, map[string]any{
		"name": name,
		"type": "expense",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.CategoryResponse](a.t, rec)
}

func TestNewInjector_InvalidDescriptors(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(memoryDSN()), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	_, err = NewInjector(testConfig(), db, Options{
		Descriptors: []password.Descriptor{{Name: "no_such_validator"}},
	})

	var configErr *password.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "no_such_validator", configErr.Name)
}

func TestNewInjector_RedisBackendRequiresClient(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(memoryDSN()), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.RateLimit.Backend = "redis"

	_, err = NewInjector(cfg, db, Options{})
	assert.Error(t, err)
}

func TestHealthAndMetrics(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.RateLimit.Backend = "redis"
	app := newTestApp(t, cfg, Options{Redis: client})

	rec := app.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, map[string]any{"database": "connected", "redis": "connected"}, health["dependencies"])

	server.Close()
	rec = app.do(http.MethodGet, "/health", "", nil)
	health = decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", health["status"])

	rec = app.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDebugPackages(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})

	rec := app.do(http.MethodGet, "/debug/packages", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]map[string]string](t, rec)
	assert.NotEmpty(t, body["packages"]["sys"])

	rec = app.do(http.MethodGet, "/debug/packages?name=example.com/not-linked", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPasswordRequirementsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})

	rec := app.do(http.MethodGet, "/api/v1/auth/password-requirements", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[dto.PasswordRequirementsResponse](t, rec)
	assert.Equal(t, []string{
		"Your password must contain at least 8 characters.",
		"Your password must contain no more than 256 characters.",
		"Your password can't be a commonly used password.",
		"Your password can't be entirely numeric.",
	}, body.HelpTexts)
	assert.True(t, strings.HasPrefix(body.HelpTextHTML, "<ul>"))
	assert.Contains(t, body.HelpTextHTML, "<li>Your password can&#39;t be entirely numeric.</li>")
}

func TestRegister_ReportsEveryViolation(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})

	rec := app.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":          "ana@example.com",
		"name":           "Ana Souza",
		"password":       "1234",
		"terms_accepted": true,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[dto.ErrorResponse](t, rec)
	assert.Equal(t, "AUTH-010003", body.Code)

	codes := make([]string, len(body.Violations))
	for i, v := range body.Violations {
		codes[i] = v.Code
	}
	assert.Contains(t, codes, password.CodePasswordTooShort)
	assert.Contains(t, codes, password.CodePasswordEntirelyNumeric)
	assert.Equal(t, float64(8), body.Violations[0].Params["min_length"])
}

func TestRegister_TooLong(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})

	rec := app.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":          "ana@example.com",
		"name":           "Ana Souza",
		"password":       strings.Repeat("x", 257),
		"terms_accepted": true,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[dto.ErrorResponse](t, rec)
	require.Len(t, body.Violations, 1)
	assert.Equal(t, password.CodePasswordTooLong, body.Violations[0].Code)
	assert.Equal(t, "This password is too long. It must contain no more than 256 characters.", body.Violations[0].Message)
}

func TestDeleteAccount_ClosesTheAccount(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})
	session := app.register("ana@example.com")

	rec := app.do(http.MethodDelete, "/api/v1/users/me", session.AccessToken, map[string]any{
		"password":     "wrong-password",
		"confirmation": "DELETE",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodDelete, "/api/v1/users/me", session.AccessToken, map[string]any{
		"password":     "correct-horse-battery",
		"confirmation": "DELETE",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// The access token is still signed but the account is gone.
	rec = app.do(http.MethodGet, "/api/v1/categories", session.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":          "ana@example.com",
		"name":           "Ana Again",
		"password":       "correct-horse-battery",
		"terms_accepted": true,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var closed model.UserModel
	require.NoError(t, app.injector.DB.Unscoped().Where("email = ?", "ana@example.com").First(&closed).Error)
	require.True(t, closed.DeletedAt.Valid)
	assert.True(t, closed.DeletedAt.Time.Equal(app.clock.now))

	var queued int64
	require.NoError(t, app.injector.DB.Model(&model.EmailJobModel{}).Where("template = ?", "account_closed").Count(&queued).Error)
	assert.Equal(t, int64(1), queued)
}

func TestCategories_SoftDelete(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})
	token := app.register("ana@example.com").AccessToken

	food := app.createCategory(token, "Food")
	rent := app.createCategory(token, "Rent")
	travel := app.createCategory(token, "Travel")

	rec := app.do(http.MethodDelete, "/api/v1/categories/"+food.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("active list hides deleted categories", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/v1/categories", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[dto.CategoryListResponse](t, rec)
		require.Len(t, list.Categories, 2)
		for _, c := range list.Categories {
			assert.Nil(t, c.DeletedAt)
		}
	})

	t.Run("include_deleted uses the unfiltered path", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/v1/categories?include_deleted=true", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[dto.CategoryListResponse](t, rec)
		require.Len(t, list.Categories, 3)
		assert.Equal(t, "Food", list.Categories[0].Name)
		require.NotNil(t, list.Categories[0].DeletedAt)
	})

	t.Run("invalid include_deleted is rejected", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/v1/categories?include_deleted=maybe", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deleted category cannot be updated", func(t *testing.T) {
		rec := app.do(http.MethodPatch, "/api/v1/categories/"+food.ID, token, map[string]any{"name": "Groceries"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bulk delete", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/v1/categories/bulk-delete", token, map[string]any{
			"ids": []string{rent.ID, travel.ID},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, int64(2), decode[dto.BulkDeleteCategoriesResponse](t, rec).DeletedCount)

		rec = app.do(http.MethodGet, "/api/v1/categories", token, nil)
		assert.Empty(t, decode[dto.CategoryListResponse](t, rec).Categories)
	})

	t.Run("bulk delete rejects an empty selection", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/v1/categories/bulk-delete", token, map[string]any{"ids": []string{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bulk delete rejects categories owned by someone else", func(t *testing.T) {
		other := app.register("bruno@example.com").AccessToken
		theirs := app.createCategory(other, "Books")

		rec := app.do(http.MethodPost, "/api/v1/categories/bulk-delete", token, map[string]any{
			"ids": []string{theirs.ID},
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestLogin_RateLimited(t *testing.T) {
	app := newTestApp(t, testConfig(), Options{})
	app.register("ana@example.com")

	credentials := map[string]any{"email": "ana@example.com", "password": "wrong-password"}
	for i := 0; i < 3; i++ {
		rec := app.do(http.MethodPost, "/api/v1/auth/login", "", credentials)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := app.do(http.MethodPost, "/api/v1/auth/login", "", credentials)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPasswordReset_DeliveredAndRedeemed(t *testing.T) {
	sent := &outbox{}
	app := newTestApp(t, testConfig(), Options{Sender: sent})
	app.register("ana@example.com")

	rec := app.do(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]any{"email": "ana@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unknown := app.do(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, rec.Body.String(), unknown.Body.String())

	delivered, err := app.injector.Worker.Drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, delivered)
	require.Len(t, sent.sent, 1)
	assert.Contains(t, sent.sent[0].HTML, "<li>Your password must contain at least 8 characters.</li>")

	jobs, err := app.injector.EmailQueue.ListByRecipient(context.Background(), "ana@example.com", false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	link, err := url.Parse(jobs[0].Data["ResetURL"])
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	rec = app.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": token, "new_password": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Violations)

	rec = app.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": token, "new_password": "another-long-passphrase"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": token, "new_password": "yet-another-passphrase"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "ana@example.com", "password": "another-long-passphrase"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
