package config

import (
	"errors"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Engine   EngineConfig
	Audit    AuditConfig
	Reports  ReportsConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig tunes conflict-engine defaults.
type EngineConfig struct {
	MaxSuggestions       int
	DefaultMaxRelaxation int
	MinDurationMinutes   int
	MaxDurationMinutes   int
}

// AuditConfig governs full-schedule audit caching and background re-audits.
type AuditConfig struct {
	Enabled         bool
	CacheTTL        time.Duration
	WorkerCount     int
	QueueBufferSize int
}

// ReportsConfig toggles conflict report export endpoints.
type ReportsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		MaxSuggestions:       v.GetInt("ENGINE_MAX_SUGGESTIONS"),
		DefaultMaxRelaxation: v.GetInt("ENGINE_DEFAULT_MAX_RELAXATION"),
		MinDurationMinutes:   v.GetInt("ENGINE_MIN_DURATION_MINUTES"),
		MaxDurationMinutes:   v.GetInt("ENGINE_MAX_DURATION_MINUTES"),
	}

	cfg.Audit = AuditConfig{
		Enabled:         v.GetBool("ENABLE_AUDIT"),
		CacheTTL:        parseDuration(v.GetString("AUDIT_CACHE_TTL"), 5*time.Minute),
		WorkerCount:     v.GetInt("AUDIT_WORKER_COUNT"),
		QueueBufferSize: v.GetInt("AUDIT_QUEUE_BUFFER"),
	}

	cfg.Reports = ReportsConfig{
		Enabled: v.GetBool("ENABLE_REPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "campus-timetable-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENGINE_MAX_SUGGESTIONS", 5)
	v.SetDefault("ENGINE_DEFAULT_MAX_RELAXATION", 3)
	v.SetDefault("ENGINE_MIN_DURATION_MINUTES", 30)
	v.SetDefault("ENGINE_MAX_DURATION_MINUTES", 240)

	v.SetDefault("ENABLE_AUDIT", true)
	v.SetDefault("AUDIT_CACHE_TTL", "5m")
	v.SetDefault("AUDIT_WORKER_COUNT", 1)
	v.SetDefault("AUDIT_QUEUE_BUFFER", 8)

	v.SetDefault("ENABLE_REPORTS", true)
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
