// Package dependency wires the application together.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/platform/config"
	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/application/usecase/auth"
	"github.com/finance-tracker/platform/internal/domain/password"
	"github.com/finance-tracker/platform/internal/infra/db"
	"github.com/finance-tracker/platform/internal/infra/metrics"
	"github.com/finance-tracker/platform/internal/infra/server/router"
	"github.com/finance-tracker/platform/internal/integration/adapters"
	"github.com/finance-tracker/platform/internal/integration/email"
	"github.com/finance-tracker/platform/internal/integration/email/templates"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/platform/internal/integration/persistence"
	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

// Options carries the collaborators the injector does not build itself.
// Zero values select the production defaults.
type Options struct {
	Clock adapter.Clock
	// Redis backs the "redis" rate limit backend and is checked by /health.
	Redis redis.UniversalClient
	// Descriptors selects the password validators. Nil means the built-in list.
	Descriptors []password.Descriptor
	// Hasher defaults to bcrypt with the default cost.
	Hasher adapter.PasswordHasher
	// Sender defaults to Resend when an API key is configured and to the log
	// otherwise.
	Sender adapter.EmailSender
}

// Injector holds the wired application.
type Injector struct {
	Config     *config.Config
	DB         *gorm.DB
	Clock      adapter.Clock
	Metrics    *metrics.Metrics
	Policy     *password.Policy
	EmailQueue adapter.EmailQueue
	Worker     *email.Worker
	Router     *router.Router
}

// NewInjector wires every component. An invalid validator list fails with a
// *password.ConfigError.
func NewInjector(cfg *config.Config, database *gorm.DB, opts Options) (*Injector, error) {
	clock := opts.Clock
	if clock == nil {
		clock = adapters.NewSystemClock()
	}

	descriptors := opts.Descriptors
	if descriptors == nil {
		descriptors = password.DefaultDescriptors()
	}
	policy, err := password.DefaultRegistry().NewPolicy(descriptors)
	if err != nil {
		return nil, err
	}
	password.SetDefault(policy)
	slog.Info("Password policy configured", "validators", validatorNames(descriptors))

	m := metrics.New()
	observed := softdelete.WithObserver(m)

	users := persistence.NewUserRepository(database, clock, observed)
	tokens := persistence.NewTokenRepository(database, clock, observed)
	categories := persistence.NewCategoryRepository(database, clock, observed)
	queue := persistence.NewEmailQueueRepository(database, clock, observed)

	hasher := opts.Hasher
	if hasher == nil {
		hasher = adapters.NewBcryptHasher(0)
	}
	sessions := adapters.NewSessionService(adapters.SessionConfig{
		Secret:             cfg.JWT.Secret,
		AccessTTL:          cfg.JWT.AccessTTL,
		RefreshTTL:         cfg.JWT.RefreshTTL,
		RememberAccessTTL:  cfg.JWT.RememberAccessTTL,
		RememberRefreshTTL: cfg.JWT.RememberRefreshTTL,
	}, tokens, clock)

	deps := auth.Deps{
		Users:    users,
		Hasher:   hasher,
		Policy:   m.InstrumentPolicy(policy),
		Sessions: sessions,
		Resets:   adapters.NewResetTokenService(cfg.JWT.ResetTokenTTL, tokens, clock),
		Mailer:   email.NewMailer(queue, clock, cfg.Email.AppBaseURL),
		Clock:    clock,
	}

	worker, err := newWorker(cfg.Email, queue, opts.Sender, clock, m)
	if err != nil {
		return nil, err
	}

	checks := map[string]controller.HealthCheck{
		"database": func(ctx context.Context) error { return db.Ping(ctx, database) },
	}
	if opts.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return opts.Redis.Ping(ctx).Err() }
	}

	store, err := newRateLimitStore(cfg.RateLimit, opts.Redis, clock)
	if err != nil {
		return nil, err
	}

	r := router.NewRouter(router.Handlers{
		Health:       controller.NewHealthController(checks, clock),
		Metrics:      m.Handler(),
		Auth:         controller.NewAuthController(deps),
		Categories:   controller.NewCategoryController(categories, clock),
		LoginLimiter: middleware.NewRateLimiter(store, "login", cfg.RateLimit.Enabled),
		Authenticate: middleware.NewAuthenticator(sessions, users),
	})

	return &Injector{
		Config:     cfg,
		DB:         database,
		Clock:      clock,
		Metrics:    m,
		Policy:     policy,
		EmailQueue: queue,
		Worker:     worker,
		Router:     r,
	}, nil
}

func newWorker(cfg config.EmailConfig, queue adapter.EmailQueue, sender adapter.EmailSender, clock adapter.Clock, m *metrics.Metrics) (*email.Worker, error) {
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, err
	}

	if sender == nil {
		switch {
		case cfg.ResendAPIKey == "":
			slog.Warn("RESEND_API_KEY not set, emails will only be logged")
			sender = email.LogSender{}
		case cfg.ResendBaseURL != "":
			base, err := url.Parse(cfg.ResendBaseURL)
			if err != nil {
				return nil, fmt.Errorf("parse RESEND_BASE_URL: %w", err)
			}
			sender = email.NewResendSender(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail, email.WithBaseURL(base))
		default:
			sender = email.NewResendSender(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail)
		}
	}

	return email.NewWorker(queue, sender, renderer, clock, cfg.PollInterval, cfg.BatchSize, email.WithDeliveryObserver(m)), nil
}

func newRateLimitStore(cfg config.RateLimitConfig, client redis.UniversalClient, clock adapter.Clock) (middleware.RateLimitStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return middleware.NewMemoryRateLimitStore(cfg.LoginAttempts, cfg.LoginWindow, clock), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("rate limit backend %q requires a redis client", cfg.Backend)
		}
		return middleware.NewRedisRateLimitStore(client, cfg.LoginAttempts, cfg.LoginWindow), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}

func validatorNames(descriptors []password.Descriptor) []string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	return names
}
