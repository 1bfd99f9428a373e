package di

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"memories-backend/internal/config"
	"memories-backend/internal/handlers"
	"memories-backend/internal/infrastructure/observability"
	"memories-backend/internal/infrastructure/persistence/sqlstore"
	"memories-backend/internal/infrastructure/storage"
	"memories-backend/internal/middleware"
	"memories-backend/internal/service/credential"
	"memories-backend/internal/service/memory"
	"memories-backend/pkg/auth"
	appErrors "memories-backend/pkg/errors"
)

// ConfigProviders provide logging from the loaded configuration.
var ConfigProviders = wire.NewSet(
	config.NewLogLevel,
	provideLogger,
)

// InfrastructureProviders provide storage, metrics and tracing.
var InfrastructureProviders = wire.NewSet(
	provideStore,
	provideMetrics,
	provideTracing,
	provideRepository,
	provideFileStore,
)

// ServiceProviders provide the token, credential and memory services.
var ServiceProviders = wire.NewSet(
	provideTokenService,
	providePasswordHasher,
	provideCredentialService,
	provideMemoryService,
)

// InterfaceProviders provide the HTTP layer.
var InterfaceProviders = wire.NewSet(
	provideErrorHandler,
	provideGuard,
	handlers.NewAuthHandler,
	handlers.NewMemoryHandler,
	handlers.NewUploadHandler,
	handlers.NewHealthHandler,
	wire.Bind(new(handlers.TokenIssuer), new(*auth.TokenService)),
	wire.Bind(new(handlers.ErrorResponder), new(*appErrors.ErrorHandler)),
	wire.Bind(new(handlers.Pinger), new(*sqlstore.Store)),
	provideRouter,
)

// ProviderSet combines every provider needed to build a Container.
var ProviderSet = wire.NewSet(
	ConfigProviders,
	InfrastructureProviders,
	ServiceProviders,
	InterfaceProviders,
	wire.Struct(new(Container), "*"),
)

func provideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	logger, err := config.NewLogger(cfg, level)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlstore.Store, func(), error) {
	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL, sqlstore.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}, nil
}

// provideMetrics returns nil when metrics are disabled.
func provideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// provideTracing returns nil when tracing is disabled.
func provideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, cfg.Tracing.ServiceName, string(cfg.Environment), cfg.Tracing.Endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("init tracing: %w", err)
	}
	logger.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to flush traces", zap.Error(err))
		}
	}, nil
}

func provideRepository(store *sqlstore.Store, tp *observability.TracerProvider, metrics *observability.Collector) observability.Repository {
	tracer := otel.Tracer("memories-backend/repository")
	if tp != nil {
		tracer = tp.Tracer()
	}
	return observability.InstrumentRepository(store, tracer, metrics)
}

func provideFileStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Uploads.Provider {
	case "s3":
		s3cfg := cfg.Uploads.S3
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          s3cfg.Bucket,
			Prefix:          s3cfg.Prefix,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		}, logger)
	default:
		return storage.NewLocalStore(cfg.Uploads.Dir, logger)
	}
}

func provideTokenService(cfg *config.Config) (*auth.TokenService, error) {
	return auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.Security.JWTSecret,
		Issuer: cfg.Security.JWTIssuer,
		TTL:    cfg.Security.TokenTTL,
	})
}

func providePasswordHasher(cfg *config.Config) *auth.PasswordHasher {
	return auth.NewPasswordHasher(cfg.Security.BcryptCost)
}

func provideCredentialService(repo observability.Repository, hasher *auth.PasswordHasher, logger *zap.Logger, metrics *observability.Collector) credential.Service {
	var opts []credential.Option
	if metrics != nil {
		opts = append(opts, credential.WithRecorder(metrics))
	}
	return credential.NewService(repo, hasher, logger, opts...)
}

func provideMemoryService(repo observability.Repository, files storage.Store, logger *zap.Logger, metrics *observability.Collector) memory.Service {
	var opts []memory.Option
	if metrics != nil {
		opts = append(opts, memory.WithRecorder(metrics))
	}
	return memory.NewService(repo, files, logger, opts...)
}

func provideErrorHandler(cfg *config.Config, logger *zap.Logger) *appErrors.ErrorHandler {
	return appErrors.NewErrorHandler(logger, cfg.Environment == config.Development)
}

func provideGuard(tokens *auth.TokenService, accounts credential.Service, errs *appErrors.ErrorHandler, logger *zap.Logger) *middleware.Guard {
	return middleware.NewGuard(tokens, accounts, errs, logger)
}

func provideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
	errs *appErrors.ErrorHandler,
	guard *middleware.Guard,
	authHandler *handlers.AuthHandler,
	memoryHandler *handlers.MemoryHandler,
	uploadHandler *handlers.UploadHandler,
	healthHandler *handlers.HealthHandler,
) *chi.Mux {
	return NewRouter(RouterDeps{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Tracing: tp != nil,
		Errors:  errs,
		Guard:   guard,
		Auth:    authHandler,
		Memory:  memoryHandler,
		Uploads: uploadHandler,
		Health:  healthHandler,
	})
}
