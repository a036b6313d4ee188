package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tangent-app/tangent/internal/audit"
	"github.com/tangent-app/tangent/internal/auth"
	"github.com/tangent-app/tangent/internal/card"
	"github.com/tangent-app/tangent/internal/config"
	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/i18n"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/middleware"
	"github.com/tangent-app/tangent/internal/notification"
	"github.com/tangent-app/tangent/internal/onboarding"
	"github.com/tangent-app/tangent/internal/settings"
	"github.com/tangent-app/tangent/internal/verification"
	"github.com/tangent-app/tangent/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
// DB and Cache may be nil in development; Mongo and NATS are always optional.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Mongo    *mongo.Database
	NATS     *nats.Conn
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	httpMetrics, err := middleware.NewHTTPMetrics(d.Registry)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Metrics(httpMetrics))

	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app, d.Registry)

	localizer, err := i18n.New(d.Cfg.Language)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	// Storage, falling back to memory in development.
	var (
		identityRepo identity.Repository
		walletRepo   wallet.Repository
		cardRepo     card.Repository
		codeStore    verification.Store
		sessionStore onboarding.Store
		recorder     audit.Recorder
		publisher    events.Publisher
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		cardRepo = card.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		cardRepo = card.NewMemoryRepository()
	}
	if d.Cache != nil {
		codeStore = verification.NewRedisStore(d.Cache)
		sessionStore = onboarding.NewRedisStore(d.Cache, d.Cfg.SessionTTL)
	} else {
		codeStore = verification.NewMemoryStore()
		sessionStore = onboarding.NewMemoryStore(d.Cfg.SessionTTL)
	}
	if d.Mongo != nil {
		mongoRecorder := audit.NewMongoRecorder(d.Mongo)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoRecorder.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure audit indexes: %w", err)
		}
		recorder = mongoRecorder
	} else {
		recorder = audit.NewMemoryRecorder()
	}
	if d.NATS != nil {
		publisher = events.NewNATSPublisher(d.NATS)
	} else {
		publisher = events.NewLogPublisher(d.Logger)
	}

	notifier := notification.NewRouter(notification.NewLoggerNotifier(d.Logger))
	if d.Cfg.ResendAPIKey != "" {
		notifier.Route(notification.ChannelEmail, notification.NewResendNotifier(d.Cfg.ResendAPIKey, d.Cfg.MailFrom))
	}

	// Services and handlers
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	walletSvc := wallet.NewService(walletRepo, recorder, publisher, d.Logger)
	cardSvc := card.NewService(cardRepo, publisher, d.Logger)
	verifier := verification.NewService(codeStore, notifier, verification.Config{
		TTL:         d.Cfg.VerificationTTL,
		MaxAttempts: d.Cfg.VerificationTries,
	}, d.Logger)

	onboardingMetrics, err := onboarding.NewMetrics(d.Registry)
	if err != nil {
		return fmt.Errorf("register onboarding metrics: %w", err)
	}
	onboardingSvc := onboarding.NewService(onboarding.Deps{
		Store:     sessionStore,
		Verifier:  verifier,
		Completer: onboarding.NewAccountCompleter(identitySvc, walletSvc, cardSvc, authSvc, d.Logger),
		Publisher: publisher,
		Metrics:   onboardingMetrics,
		Localizer: localizer,
		Logger:    d.Logger,
	}, onboarding.Options{KYCURL: d.Cfg.KYCURL, Placeholders: d.Cfg.PlaceholderDefaults})
	settingsSvc := settings.NewService(identitySvc, verifier, recorder, publisher, d.Logger)

	idem := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	jwtmw := middleware.JWTAuth(authSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterOnboardingRoutes(api, onboarding.NewHandler(onboardingSvc), idem, d.Cache)
	RegisterAuthRoutes(api, auth.NewHandler(identitySvc, authSvc), jwtmw, middleware.RateLimit(d.Cache, middleware.RateLimitConfig{
		Prefix:  "login",
		Max:     5,
		Window:  time.Minute,
		Message: "too many login attempts, try again later",
		Key:     middleware.PhoneOrIP,
	}))

	// Protected routes
	protected := func(prefix string) fiber.Router {
		return api.Group(prefix, jwtmw, idem)
	}
	RegisterProfileRoutes(protected("/me"), identity.NewHandler(identitySvc, d.Cfg.KYCURL))
	RegisterWalletRoutes(protected("/wallets"), wallet.NewHandler(walletSvc))
	RegisterCardRoutes(protected("/cards"), card.NewHandler(cardSvc))
	RegisterSettingsRoutes(protected("/settings"), settings.NewHandler(settingsSvc, localizer))

	return nil
}
