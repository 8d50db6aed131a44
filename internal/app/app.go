// Package app wires the devcamper API together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/devcamper/internal/aggregate"
	"github.com/utafrali/devcamper/internal/auth"
	"github.com/utafrali/devcamper/internal/config"
	"github.com/utafrali/devcamper/internal/event"
	"github.com/utafrali/devcamper/internal/geocoder"
	handler "github.com/utafrali/devcamper/internal/handler/http"
	"github.com/utafrali/devcamper/internal/repository/postgres"
	"github.com/utafrali/devcamper/internal/service"
	"github.com/utafrali/devcamper/internal/storage"
	"github.com/utafrali/devcamper/internal/storage/local"
	"github.com/utafrali/devcamper/internal/storage/memory"
	"github.com/utafrali/devcamper/internal/storage/minio"
	"github.com/utafrali/devcamper/migrations"
	"github.com/utafrali/devcamper/pkg/database"
	"github.com/utafrali/devcamper/pkg/health"
	"github.com/utafrali/devcamper/pkg/httpclient"
	pkgkafka "github.com/utafrali/devcamper/pkg/kafka"
	"github.com/utafrali/devcamper/pkg/middleware"
	"github.com/utafrali/devcamper/pkg/tracing"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "devcamper"

// Version is stamped at build time with -ldflags.
var Version = "dev"

// App wires together all dependencies and runs the devcamper API.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	producer   *pkgkafka.Producer
	tracing    tracing.Shutdown
	httpServer *http.Server

	// stops background work owned by the router, such as the rate limiter sweeper
	stop context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.build(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.tracing = shutdown

	a.pool, err = OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := prometheus.Register(database.NewPoolCollector(a.pool, ServiceName)); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	a.redis = ConnectRedis(ctx, cfg, logger)

	// A nil publisher keeps event publishing off when no brokers are configured.
	var publisher event.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			WriteTimeout: 10 * time.Second,
		}, logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("no kafka brokers configured, domain events disabled")
	}
	eventProducer := event.NewProducer(publisher, logger)

	store, uploads, storeCheck, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("file storage ready", slog.String("driver", cfg.StorageDriver))

	// Build the dependency graph.
	bootcamps := postgres.NewBootcampRepository(a.pool, cfg.DBTimeout)
	courses := postgres.NewCourseRepository(a.pool, cfg.DBTimeout)
	reviews := postgres.NewReviewRepository(a.pool, cfg.DBTimeout)
	users := postgres.NewUserRepository(a.pool, cfg.DBTimeout)

	maintainer := aggregate.NewMaintainer(courses, reviews, bootcamps,
		aggregate.WithNotifier(eventProducer),
		aggregate.WithTimeout(cfg.AggregateTimeout),
	)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)

	svcs := handler.Services{
		Bootcamps: service.NewBootcampService(bootcamps, NewGeocoder(cfg, a.redis, logger), store, eventProducer, logger, cfg.MaxFileUpload),
		Courses:   service.NewCourseService(courses, bootcamps, maintainer, eventProducer, logger),
		Reviews:   service.NewReviewService(reviews, bootcamps, maintainer, eventProducer, logger),
		Users:     service.NewUserService(users, courses, reviews, maintainer, jwtManager, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler(5 * time.Second)
	healthHandler.Register("postgres", a.pool.Ping)
	if a.redis != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}
	if storeCheck != nil {
		healthHandler.Register("storage", storeCheck)
	}

	routerCtx, stop := context.WithCancel(context.Background())
	a.stop = stop
	router := handler.NewRouter(routerCtx, svcs, jwtManager.TokenValidator(), healthHandler, handler.RouterConfig{
		CORS: middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		RateLimit: middleware.RateLimitConfig{
			Requests:       cfg.RateLimitRequests,
			Window:         cfg.RateLimitWindow,
			Burst:          cfg.RateLimitBurst,
			TrustedProxies: cfg.TrustedProxyCIDRs,
		},
		MaxBodyBytes: cfg.MaxBodyBytes,
		MaxUpload:    cfg.MaxFileUpload,
		PprofCIDRs:   cfg.PprofAllowedCIDRs,
		Uploads:      uploads,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}

// OpenDatabase connects to PostgreSQL and applies pending migrations.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, &database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPassword,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSLMode,
		MaxConns:        cfg.PostgresMaxConns,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryMS)*time.Millisecond, logger)

	if err := database.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")
	return pool, nil
}

// ConnectRedis returns a client for the geocode cache, or nil when Redis
// cannot be reached. The API runs without the cache in that case.
func ConnectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, geocode cache disabled", slog.String("error", err.Error()))
		return nil
	}
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost), slog.Int("port", cfg.RedisPort))
	return client
}

// NewGeocoder builds the MapQuest geocoder behind a retrying, circuit broken
// HTTP client. Results are cached in Redis when a client is given.
func NewGeocoder(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) geocoder.Geocoder {
	client := httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("geocoder"),
		logger,
	)
	var g geocoder.Geocoder = geocoder.NewMapQuest(client, cfg.GeocoderBaseURL, cfg.GeocoderAPIKey, cfg.GeocoderTimeout)
	if rdb != nil {
		g = geocoder.NewCached(g, rdb, cfg.GeocodeCacheTTL)
	}
	return g
}

// newStorage selects the photo store. uploads is non-nil when the API itself
// serves stored files under /uploads.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, http.Handler, health.Checker, error) {
	uploadsURL := storage.JoinURL(cfg.PublicURL(), "uploads")

	switch cfg.StorageDriver {
	case config.StorageMinio:
		s, err := minio.New(ctx, minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open minio storage: %w", err)
		}
		return s, nil, s.Ping, nil
	case config.StorageMemory:
		return memory.New(uploadsURL), nil, nil, nil
	default:
		s, err := local.New(cfg.FileUploadPath, uploadsURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open local storage: %w", err)
		}
		return s, s.Handler(), nil, nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("application shutdown complete")
	return nil
}

// close releases whatever build managed to open.
func (a *App) close() {
	if a.stop != nil {
		a.stop()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracing(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
