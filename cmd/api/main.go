// Command api serves the AdminAPI (C11): label ingestion, channel and model
// CRUD, and a read-only scored-article listing for the external UI layer,
// behind the same JWT/CORS/CSP/rate-limit stack the teacher's cmd/api wires.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appconfig "papersorter/internal/config"
	pgRepo "papersorter/internal/infra/adapter/persistence/postgres"
	"papersorter/internal/infra/db"
	"papersorter/internal/repository"
	"papersorter/pkg/config"
	"papersorter/pkg/ratelimit"
	"papersorter/pkg/security/csp"

	chUC "papersorter/internal/usecase/channel"
	modUC "papersorter/internal/usecase/model"
	prefUC "papersorter/internal/usecase/preference"

	hhttp "papersorter/internal/handler/http"
	hauth "papersorter/internal/handler/http/auth"
	hchannel "papersorter/internal/handler/http/channel"
	"papersorter/internal/handler/http/middleware"
	hmodel "papersorter/internal/handler/http/model"
	hpreference "papersorter/internal/handler/http/preference"
	"papersorter/internal/handler/http/requestid"
	hscored "papersorter/internal/handler/http/scoredarticle"
	"papersorter/internal/scoring"
	authservice "papersorter/internal/service/auth"
)

// @title           PaperSorter Admin API
// @version         1.0
// @description     Label ingestion, channel/model management, and a read-only
// @description     scored-article listing for the recommendation pipeline.

// @license.name  MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token. Send as "Bearer {token}".

func main() {
	logger := initLogger()
	validateAdminCredentials(logger)
	validateJWTSecret(logger)

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, cfg, version)
	runServer(logger, components, version)
}

func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func validateAdminCredentials(logger *slog.Logger) {
	if err := hauth.ValidateAdminCredentials(); err != nil {
		logger.Error("admin credentials validation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	dimension := config.GetEnvInt("EMBEDDING_DIMENSIONS", 0)
	if err := db.MigrateUp(database, dimension); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler     http.Handler
	IPStore     *ratelimit.InMemoryRateLimitStore
	UserStore   *ratelimit.InMemoryRateLimitStore
	IPWindow    time.Duration
	UserWindow  time.Duration
	AuthLimiter *hhttp.RateLimiter
}

func setupServer(logger *slog.Logger, database *sql.DB, cfg *appconfig.AppConfig, version string) *ServerComponents {
	channels := pgRepo.NewChannelRepo(database)
	models := pgRepo.NewModelRepo(database)
	preferences := pgRepo.NewPreferenceRepo(database)
	articles := pgRepo.NewArticleRepo(database)
	embeddings := pgRepo.NewEmbeddingRepo(database)
	scores := pgRepo.NewScoreRepo(database)

	channelSvc := &chUC.Service{Repo: channels}
	preferenceSvc := prefUC.New(preferences, articles)

	queueMgr := noOpEnqueuer{}
	rescorer := scoring.New(models, articles, embeddings, scores, channels, queueMgr, scoring.NewCache(cfg.Scoring.ModelDir), cfg.Scoring.BatchSize)
	modelSvc := &modUC.Service{Repo: models, Rescorer: scorerAdapter{rescorer}}

	rateLimitConfig, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}

	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
	}

	var ipRateLimiter *middleware.IPRateLimiter
	var userRateLimiter *middleware.UserRateLimiter
	var ipStore, userStore *ratelimit.InMemoryRateLimitStore

	if rateLimitConfig.Enabled {
		ipStore = ratelimit.NewInMemoryRateLimitStore(ratelimit.InMemoryStoreConfig{MaxKeys: rateLimitConfig.MaxActiveKeys})
		userStore = ratelimit.NewInMemoryRateLimitStore(ratelimit.InMemoryStoreConfig{MaxKeys: rateLimitConfig.MaxActiveKeys})
		algorithm := ratelimit.NewSlidingWindowAlgorithm(&ratelimit.SystemClock{})
		metrics := ratelimit.NewPrometheusMetrics()

		ipCircuitBreaker := ratelimit.NewCircuitBreaker(ratelimit.CircuitBreakerConfig{
			FailureThreshold: rateLimitConfig.CircuitBreakerFailureThreshold,
			RecoveryTimeout:  rateLimitConfig.CircuitBreakerResetTimeout,
		})
		userCircuitBreaker := ratelimit.NewCircuitBreaker(ratelimit.CircuitBreakerConfig{
			FailureThreshold: rateLimitConfig.CircuitBreakerFailureThreshold,
			RecoveryTimeout:  rateLimitConfig.CircuitBreakerResetTimeout,
		})

		ipRateLimiter = middleware.NewIPRateLimiter(
			middleware.IPRateLimiterConfig{Limit: rateLimitConfig.DefaultIPLimit, Window: rateLimitConfig.DefaultIPWindow, Enabled: true},
			ipExtractor, ipStore, algorithm, metrics, ipCircuitBreaker,
		)

		tierLimits := make(map[ratelimit.UserTier]middleware.TierLimit)
		for _, tierCfg := range rateLimitConfig.TierLimits {
			tierLimits[tierCfg.Tier] = middleware.TierLimit{Limit: tierCfg.Limit, Window: tierCfg.Window}
		}
		userRateLimiter = middleware.NewUserRateLimiter(middleware.UserRateLimiterConfig{
			Store:               userStore,
			Algorithm:           algorithm,
			Metrics:             metrics,
			CircuitBreaker:      userCircuitBreaker,
			UserExtractor:       middleware.NewJWTUserExtractor("user", nil),
			TierLimits:          tierLimits,
			DefaultLimit:        rateLimitConfig.DefaultUserLimit,
			DefaultWindow:       rateLimitConfig.DefaultUserWindow,
			SkipUnauthenticated: true,
			Clock:               &ratelimit.SystemClock{},
		})

		logger.Info("rate limiting initialized",
			slog.Int("ip_limit", rateLimitConfig.DefaultIPLimit),
			slog.Int("user_limit", rateLimitConfig.DefaultUserLimit))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	rootMux, authLimiter := setupRoutes(database, version, channelSvc, modelSvc, preferenceSvc, scores, ipRateLimiter, userRateLimiter)
	handler := applyMiddleware(logger, rootMux, ipRateLimiter)

	return &ServerComponents{
		Handler:     handler,
		IPStore:     ipStore,
		UserStore:   userStore,
		IPWindow:    rateLimitConfig.DefaultIPWindow,
		UserWindow:  rateLimitConfig.DefaultUserWindow,
		AuthLimiter: authLimiter,
	}
}

func setupRoutes(
	database *sql.DB,
	version string,
	channelSvc *chUC.Service,
	modelSvc *modUC.Service,
	preferenceSvc *prefUC.Store,
	scores repository.ScoreRepository,
	ipRateLimiter *middleware.IPRateLimiter,
	userRateLimiter *middleware.UserRateLimiter,
) (*http.ServeMux, *hhttp.RateLimiter) {
	authRateLimiter := hhttp.NewRateLimiter(5, 1*time.Minute)

	weakPasswords := []string{"password", "123456", "admin", "test", "secret"}
	authProvider := hauth.NewMultiUserAuthProvider(12, weakPasswords)
	publicEndpoints := []string{"/auth/token", "/health", "/ready", "/live", "/metrics", "/swagger/"}
	authService := authservice.NewAuthService(authProvider, publicEndpoints)

	publicMux := http.NewServeMux()
	publicMux.Handle("/auth/token", authRateLimiter.Limit(hauth.TokenHandler(authService)))
	publicMux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())
	publicMux.Handle("/swagger/", httpSwagger.WrapHandler)

	privateMux := http.NewServeMux()
	hchannel.Register(privateMux, channelSvc)
	hmodel.Register(privateMux, modelSvc)
	hpreference.Register(privateMux, preferenceSvc)
	hscored.Register(privateMux, scores)

	protected := hauth.Authz(privateMux)
	if userRateLimiter != nil {
		protected = userRateLimiter.Middleware()(protected)
	}

	rootMux := http.NewServeMux()
	rootMux.Handle("/auth/token", publicMux)
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/swagger/", publicMux)
	rootMux.Handle("/", protected)

	return rootMux, authRateLimiter
}

// applyMiddleware wraps the handler with the same chain order the teacher
// uses: CORS -> Request ID -> IP Rate Limit -> Recovery -> Logging -> Body
// Limit -> CSP -> Metrics (auth and user rate limiting are applied in the
// routes layer, after authentication establishes user context).
func applyMiddleware(logger *slog.Logger, handler http.Handler, ipRateLimiter *middleware.IPRateLimiter) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = &middleware.SlogAdapter{Logger: logger}

	cspConfig, err := config.LoadCSPConfig()
	if err != nil {
		logger.Error("failed to load CSP configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var cspMiddleware func(http.Handler) http.Handler
	if cspConfig.Enabled {
		cspMW := middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
			Enabled:       true,
			DefaultPolicy: csp.StrictPolicy(),
			PathPolicies:  map[string]*csp.CSPBuilder{"/swagger/": csp.SwaggerUIPolicy()},
			ReportOnly:    cspConfig.ReportOnly,
		})
		cspMiddleware = cspMW.Middleware()
	} else {
		cspMiddleware = func(next http.Handler) http.Handler { return next }
		logger.Warn("CSP is disabled")
	}

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = cspMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	if ipRateLimiter != nil {
		chain = ipRateLimiter.Middleware()(chain)
	}
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(*corsConfig)(chain)
	return chain
}

func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupCfg := hhttp.LoadCleanupConfigFromEnv()
	if components.IPStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.IPStore, cleanupCfg.Interval, components.IPWindow, "ip")
	}
	if components.UserStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.UserStore, cleanupCfg.Interval, components.UserWindow, "user")
	}
	if components.AuthLimiter != nil {
		go hhttp.StartRateLimitCleanupLegacy(ctx, components.AuthLimiter, cleanupCfg.Interval, "auth")
	}

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("admin api starting", slog.String("addr", ":8080"), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down admin api...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("admin api stopped")
}

// noOpEnqueuer discards broadcast candidates. The AdminAPI's force-rescore
// path (model activation) exists to backfill score rows, not to re-trigger
// delivery for articles the worker may already have dispatched.
type noOpEnqueuer struct{}

func (noOpEnqueuer) Enqueue(ctx context.Context, articleID, channelID int64) error { return nil }

// scorerAdapter satisfies modUC.Rescorer by discarding scoring.RunStats,
// which the AdminAPI's activation endpoint has no use for.
type scorerAdapter struct{ svc *scoring.Service }

func (a scorerAdapter) Run(ctx context.Context, force bool) error {
	_, err := a.svc.Run(ctx, force)
	return err
}
