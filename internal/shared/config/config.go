package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"osapio-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	APIPrefix       string
	CORSAllowOrigin []string

	PrimaryStore       string
	DatabaseURL        string
	MongoURI           string
	MongoDatabase      string
	ProfilesCollection string
	RedisURL           string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string

	AuthProvider            string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	JWTSecret               string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	StorageFetchTimeout time.Duration

	AnalyzeRatePerMinute float64
	AnalyzeBurst         int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after a best-effort load of
// local .env files.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := normalizeEnv(v.GetString("ENV"))
	cfg := Config{
		Env:             env,
		Port:            v.GetString("PORT"),
		APIPrefix:       normalizePrefix(v.GetString("API_PREFIX")),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),

		PrimaryStore:       normalizePrimaryStore(v.GetString("PRIMARY_STORE")),
		DatabaseURL:        strings.TrimSpace(v.GetString("DATABASE_URL")),
		MongoURI:           strings.TrimSpace(v.GetString("MONGO_URI")),
		MongoDatabase:      v.GetString("MONGO_DATABASE"),
		ProfilesCollection: v.GetString("PROFILES_COLLECTION"),
		RedisURL:           strings.TrimSpace(v.GetString("REDIS_URL")),

		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),

		AuthProvider:            normalizeAuthProvider(v.GetString("AUTH_PROVIDER")),
		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		FirebaseCredentialsJSON: v.GetString("FIREBASE_CREDENTIALS_JSON"),
		JWTSecret:               v.GetString("JWT_SECRET"),

		OpenAIAPIKey:   strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
		LLMModel:       v.GetString("LLM_MODEL"),
		LLMMaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
		LLMTemperature: v.GetFloat64("LLM_TEMPERATURE"),
		LLMTimeout:     parseDuration(v.GetString("LLM_TIMEOUT"), 60*time.Second),

		StorageFetchTimeout: parseDuration(v.GetString("STORAGE_FETCH_TIMEOUT"), 30*time.Second),

		AnalyzeRatePerMinute: v.GetFloat64("ANALYZE_RATE_PER_MINUTE"),
		AnalyzeBurst:         v.GetInt("ANALYZE_BURST"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	if env == "production" && cfg.UsesPostgres() && cfg.DatabaseURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	v.SetDefault("PRIMARY_STORE", "mongo")
	v.SetDefault("MONGO_DATABASE", "osapio")
	v.SetDefault("PROFILES_COLLECTION", "users")

	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")

	v.SetDefault("AUTH_PROVIDER", "firebase")

	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 2000)
	v.SetDefault("LLM_TEMPERATURE", 0.3)
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("STORAGE_FETCH_TIMEOUT", "30s")

	v.SetDefault("ANALYZE_RATE_PER_MINUTE", 10)
	v.SetDefault("ANALYZE_BURST", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// IsDevLike reports whether the environment may fall back to in-memory stores.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

// UsesPostgres reports whether upload and status check records live in
// Postgres rather than the document store.
func (c Config) UsesPostgres() bool {
	return c.PrimaryStore == "postgres"
}

func parseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizePrefix(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "/" {
		return ""
	}
	return "/" + strings.Trim(raw, "/")
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizePrimaryStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return "mongo"
	}
}

func normalizeAuthProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "jwt", "dev":
		return "jwt"
	default:
		return "firebase"
	}
}
