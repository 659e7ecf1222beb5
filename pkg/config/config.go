package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend       BackendConfig
	Session       SessionConfig
	Screens       ScreenConfig
	LookupCache   LookupCacheConfig
	Audit         AuditConfig
	Exports       ExportConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	DefaultTZName string
}

// BackendConfig points the gateway at the gym REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig validates tokens issued by the external auth service.
type SessionConfig struct {
	JWTSecret string
	LoginURL  string
}

// ScreenConfig tunes list screens.
type ScreenConfig struct {
	DefaultPageSize int
	SearchDebounce  time.Duration
	NotificationTTL time.Duration
	IdleTTL         time.Duration
}

// LookupCacheConfig toggles the redis tier behind the per-screen user directory.
type LookupCacheConfig struct {
	Enabled bool
}

// AuditConfig controls the mutation audit trail.
type AuditConfig struct {
	Enabled bool
	Workers int
	Retries int
}

// ExportConfig locates stored exports and signs their download links.
type ExportConfig struct {
	Dir           string
	SigningSecret string
	LinkTTL       time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.DefaultTZName = v.GetString("DEFAULT_TIMEZONE")

	cfg.Backend = BackendConfig{
		BaseURL: v.GetString("BACKEND_API_URL"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	cfg.Session = SessionConfig{
		JWTSecret: v.GetString("SESSION_JWT_SECRET"),
		LoginURL:  v.GetString("LOGIN_URL"),
	}

	pageSize := v.GetInt("DEFAULT_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 20
	}
	cfg.Screens = ScreenConfig{
		DefaultPageSize: pageSize,
		SearchDebounce:  parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
		NotificationTTL: parseDuration(v.GetString("NOTIFICATION_TTL"), 4*time.Second),
		IdleTTL:         parseDuration(v.GetString("SCREEN_IDLE_TTL"), 30*time.Minute),
	}

	cfg.LookupCache = LookupCacheConfig{Enabled: v.GetBool("ENABLE_LOOKUP_CACHE")}

	cfg.Audit = AuditConfig{
		Enabled: v.GetBool("ENABLE_AUDIT"),
		Workers: v.GetInt("AUDIT_WORKERS"),
		Retries: v.GetInt("AUDIT_RETRIES"),
	}

	cfg.Exports = ExportConfig{
		Dir:           v.GetString("EXPORT_DIR"),
		SigningSecret: v.GetString("EXPORT_SIGNING_SECRET"),
		LinkTTL:       parseDuration(v.GetString("EXPORT_LINK_TTL"), time.Hour),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("DEFAULT_TIMEZONE", "UTC")

	v.SetDefault("BACKEND_API_URL", "http://localhost:3001/api")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("SESSION_JWT_SECRET", "dev_secret")
	v.SetDefault("LOGIN_URL", "/login")

	v.SetDefault("DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("NOTIFICATION_TTL", "4s")
	v.SetDefault("SCREEN_IDLE_TTL", "30m")

	v.SetDefault("ENABLE_LOOKUP_CACHE", false)
	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_RETRIES", 3)

	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_SIGNING_SECRET", "dev_export_secret")
	v.SetDefault("EXPORT_LINK_TTL", "1h")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gym_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
