package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Viperzz6988/NurvioV5-admin/internal/audit"
	"github.com/Viperzz6988/NurvioV5-admin/internal/cache"
	"github.com/Viperzz6988/NurvioV5-admin/internal/config"
	"github.com/Viperzz6988/NurvioV5-admin/internal/event"
	handler "github.com/Viperzz6988/NurvioV5-admin/internal/handler/http"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository/postgres"
	"github.com/Viperzz6988/NurvioV5-admin/internal/service"
	"github.com/Viperzz6988/NurvioV5-admin/internal/token"
	"github.com/Viperzz6988/NurvioV5-admin/migrations"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/database"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/health"
	pkgkafka "github.com/Viperzz6988/NurvioV5-admin/pkg/kafka"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/middleware"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/tracing"
)

const startupTimeout = 10 * time.Second

// App owns the admin backend's infrastructure handles and its HTTP server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp connects every backing store, runs migrations, and assembles the
// service graph behind the router. On any failure it closes what it already
// opened and returns the error.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.connect(ctx); err != nil {
		a.closeInfra()
		return nil, err
	}

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.buildRouter(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// connect brings up tracing, postgres (with migrations), redis, and the
// kafka producer, populating the matching App fields as it goes.
func (a *App) connect(ctx context.Context) error {
	cfg := a.cfg

	var err error
	a.tracerShutdown, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "admin-backend",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	a.pool, err = database.NewPostgresPoolWithLogger(ctx, &database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, a.pool, migrations.FS, a.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	a.logger.Info("database migrations completed")

	a.redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), a.logger)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	return nil
}

// buildRouter assembles repositories, services, and health checks into the
// HTTP handler tree.
func (a *App) buildRouter() http.Handler {
	cfg := a.cfg
	codec := token.NewCodec(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessExpiry(), cfg.RefreshExpiry())

	userRepo := postgres.NewUserRepository(a.pool)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(a.pool)
	auditRepo := postgres.NewAuditLogRepository(a.pool)
	flagRepo := postgres.NewFeatureFlagRepository(a.pool)
	settingRepo := postgres.NewSettingRepository(a.pool)
	leaderboardRepo := postgres.NewLeaderboardRepository(a.pool)
	exportRepo := postgres.NewExportRepository(a.pool)

	settingsCache := cache.NewSettings(a.redisClient, cfg.CacheExpiry())
	eventProducer := event.NewProducer(a.producer, a.logger)
	auditor := audit.NewRecorder(auditRepo, eventProducer, a.logger)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, codec, auditor, a.logger)
	adminService := service.NewAdminService(
		userRepo, flagRepo, settingRepo, auditRepo, leaderboardRepo, exportRepo,
		settingsCache, auditor,
		a.poolStats,
		a.logger,
	)
	publicService := service.NewPublicService(leaderboardRepo, eventProducer, a.logger)

	// Postgres is a hard dependency; redis and kafka only degrade readiness.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", a.pool.Ping)
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return a.redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", a.producer.Ping)

	return handler.NewRouter(authService, adminService, publicService, codec, healthHandler, a.logger, handler.RouterConfig{
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
			Environment:      cfg.Environment,
		},
		LoginRPS:       cfg.LoginRateRPS,
		LoginBurst:     cfg.LoginRateBurst,
		ContactRPS:     cfg.ContactRateRPS,
		ContactBurst:   cfg.ContactRateBurst,
		TracingEnabled: cfg.OTELEnabled,
	})
}

func (a *App) poolStats() service.PoolStats {
	stat := a.pool.Stat()
	return service.PoolStats{
		TotalConns: stat.TotalConns(),
		IdleConns:  stat.IdleConns(),
		MaxConns:   stat.MaxConns(),
	}
}

// Run starts the HTTP server and blocks until ctx is canceled or the server
// fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	return a.Shutdown()
}

// Shutdown drains in-flight HTTP requests first, then flushes spans those
// requests produced, then releases the producer, redis, and the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error
	fail := func(stage string, err error) {
		a.logger.Error(stage+" shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		fail("http server", err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			fail("tracer", err)
		}
	}

	if err := a.producer.Close(); err != nil {
		fail("kafka producer", err)
	}
	if err := a.redisClient.Close(); err != nil {
		fail("redis", err)
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeInfra releases whatever connect managed to open, used on startup
// failure before the server exists.
func (a *App) closeInfra() {
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
