package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"osapio-backend/internal/analysis"
	"osapio-backend/internal/identity"
	"osapio-backend/internal/llm"
	openai "osapio-backend/internal/llm/openai"
	"osapio-backend/internal/profiles"
	"osapio-backend/internal/services/health"
	"osapio-backend/internal/shared/cache"
	"osapio-backend/internal/shared/config"
	"osapio-backend/internal/shared/metrics"
	"osapio-backend/internal/shared/server"
	"osapio-backend/internal/shared/server/middleware"
	"osapio-backend/internal/shared/storage/db"
	"osapio-backend/internal/shared/storage/docstore"
	"osapio-backend/internal/shared/storage/object"
	localstore "osapio-backend/internal/shared/storage/object/local"
	s3store "osapio-backend/internal/shared/storage/object/s3"
	"osapio-backend/internal/shared/telemetry"
	"osapio-backend/internal/shared/validation"
	"osapio-backend/internal/statuschecks"
	"osapio-backend/internal/storageproxy"
	"osapio-backend/internal/uploads"
)

const (
	uploadsCollection      = "file_uploads"
	statusChecksCollection = "status_checks"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sqlx.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
	Objects  object.Reader
	Verifier identity.Verifier
	LLM      llm.Completer
	Metrics  *metrics.Registry

	Profiles     *profiles.Service
	Uploads      *uploads.Service
	Analysis     *analysis.Service
	StatusChecks *statuschecks.Service
	Proxy        *storageproxy.Proxy
	Health       *health.Service

	sharedDB bool
}

// InitLogger installs the process logger for cfg.
func InitLogger(cfg config.Config) error {
	logger, err := telemetry.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	telemetry.SetLogger(logger)
	return nil
}

// Build connects every backing service and wires the router. Postgres is
// only opened when PRIMARY_STORE selects it. Dev-like environments fall back
// to in-memory repositories when a database is unconfigured or unreachable.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	validation.Register()

	app := &App{Config: cfg, Metrics: metrics.New()}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close(ctx)
		}
	}()

	var err error
	if app.DB, err = buildDB(ctx, cfg); err != nil {
		return nil, err
	}
	app.sharedDB = db.IsLambdaRuntime()

	docs, err := app.buildMongo(ctx)
	if err != nil {
		return nil, err
	}
	if app.Objects, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Redis, err = buildRedis(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Verifier, err = buildVerifier(ctx, cfg); err != nil {
		return nil, err
	}
	if app.LLM, err = buildLLM(cfg); err != nil {
		return nil, err
	}

	app.buildServices(ctx, docs)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Verifier:     app.Verifier,
		Metrics:      app.Metrics,
		Limiter:      app.limiter(),
		Health:       app.Health,
		Profiles:     profiles.NewHandler(app.Profiles),
		Uploads:      uploads.NewHandler(app.Uploads, app.Proxy),
		Analysis:     analysis.NewHandler(app.Analysis),
		StatusChecks: statuschecks.NewHandler(app.StatusChecks),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"primary":      cfg.PrimaryStore,
		"postgres":     app.DB != nil,
		"mongo":        app.Mongo != nil,
		"redis":        app.Redis != nil,
		"object_store": cfg.ObjectStoreType,
		"auth":         cfg.AuthProvider,
		"llm_enabled":  cfg.OpenAIAPIKey != "",
	})
	ok = true
	return app, nil
}

// buildServices picks repositories for the configured primary store. Profiles
// always live in the document store; a nil docs database or DB handle means
// the dev fallback to memory.
func (a *App) buildServices(ctx context.Context, docs *mongo.Database) {
	var (
		profileRepo profiles.Repo     = profiles.NewMemoryRepo()
		uploadRepo  uploads.Repo      = uploads.NewMemoryRepo()
		statusRepo  statuschecks.Repo = statuschecks.NewMemoryRepo()
	)
	if docs != nil {
		profileRepo = profiles.NewMongoRepo(docs.Collection(a.Config.ProfilesCollection))
	}
	switch {
	case a.Config.UsesPostgres() && a.DB != nil:
		uploadRepo = uploads.NewPGRepo(a.DB)
		statusRepo = statuschecks.NewPGRepo(a.DB)
	case !a.Config.UsesPostgres() && docs != nil:
		mongoUploads := uploads.NewMongoRepo(docs.Collection(uploadsCollection))
		if err := mongoUploads.EnsureIndexes(ctx); err != nil {
			telemetry.Warn("bootstrap.upload_indexes_failed", map[string]any{"error": err})
		}
		uploadRepo = mongoUploads
		statusRepo = statuschecks.NewMongoRepo(docs.Collection(statusChecksCollection))
	}

	a.Proxy = storageproxy.New(a.Config.StorageFetchTimeout, a.Objects, a.Metrics)
	a.Profiles = profiles.NewService(profileRepo)
	a.Uploads = uploads.NewService(uploadRepo)
	a.Analysis = analysis.NewService(a.Uploads, a.LLM, a.Proxy, a.Metrics)
	a.StatusChecks = statuschecks.NewService(statusRepo)
	a.Health = health.NewService(a.healthChecks()...)
}

func (a *App) healthChecks() []health.Check {
	var checks []health.Check
	if a.DB != nil {
		checks = append(checks, health.Check{Name: "postgres", Fn: a.DB.PingContext})
	}
	if a.Mongo != nil {
		client := a.Mongo
		checks = append(checks, health.Check{Name: "mongo", Fn: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}})
	}
	if a.Redis != nil {
		client := a.Redis
		checks = append(checks, health.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}
	return checks
}

func (a *App) limiter() middleware.Limiter {
	if a.Redis != nil {
		return middleware.NewRedisLimiter(a.Redis)
	}
	return middleware.NewRateLimiter(nil)
}

// Close releases connections opened by Build. The Lambda database handle is
// process-wide and stays open.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Disconnect(ctx))
		a.Mongo = nil
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
		a.Redis = nil
	}
	if a.DB != nil && !a.sharedDB {
		errs = append(errs, a.DB.Close())
		a.DB = nil
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if !cfg.UsesPostgres() {
		return nil, nil
	}
	if cfg.DatabaseURL == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_url_empty", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sqlx.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}

	// Lambda deploys run cmd/migrate instead.
	if !db.IsLambdaRuntime() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func (a *App) buildMongo(ctx context.Context) (*mongo.Database, error) {
	cfg := a.Config
	if cfg.MongoURI == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.mongo_uri_empty", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	client, database, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.mongo_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	a.Mongo = client
	return database, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Reader, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	client, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis_connect_failed", map[string]any{"fallback": "memory limiter", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func buildVerifier(ctx context.Context, cfg config.Config) (identity.Verifier, error) {
	switch cfg.AuthProvider {
	case "jwt":
		return identity.NewJWTVerifier(cfg.JWTSecret)
	default:
		return identity.NewFirebaseVerifier(ctx, identity.FirebaseOptions{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
		})
	}
}

// buildLLM returns the placeholder completer when no key is configured.
func buildLLM(cfg config.Config) (llm.Completer, error) {
	if cfg.OpenAIAPIKey == "" {
		telemetry.Warn("bootstrap.llm_disabled", map[string]any{"reason": "OPENAI_API_KEY empty"})
		return llm.Disabled{}, nil
	}
	return openai.NewClient(openai.Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
}
