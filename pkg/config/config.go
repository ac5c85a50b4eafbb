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
	Host      string
	Port      int
	APIPrefix string
	AppName   string

	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	CORS     CORSConfig
	Log      LogConfig
	Catalog  CatalogConfig
	Backups  BackupConfig
	Cards    CardConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AdminConfig controls the passcode login and the session token it issues.
type AdminConfig struct {
	Passcode       string
	SessionSecret  string
	SessionTimeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig tunes caching of the public item listing.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// BackupConfig controls snapshot backups written to local storage.
type BackupConfig struct {
	Enabled         bool
	StorageDir      string
	Schedule        string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Workers         int
	Retries         int
}

// CardConfig holds the printable ID card settings.
type CardConfig struct {
	Label   string
	BaseURL string
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Host = v.GetString("HOST")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.AppName = v.GetString("APP_NAME")

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
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Admin = AdminConfig{
		Passcode:       v.GetString("ADMIN_PASSCODE"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTimeout: parseDuration(v.GetString("SESSION_TIMEOUT"), 45*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		CacheTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), time.Minute),
	}

	cfg.Backups = BackupConfig{
		Enabled:         v.GetBool("ENABLE_BACKUPS"),
		StorageDir:      v.GetString("BACKUPS_STORAGE_DIR"),
		Schedule:        v.GetString("BACKUP_SCHEDULE"),
		SignedURLSecret: v.GetString("BACKUPS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("BACKUPS_SIGNED_URL_TTL"), time.Hour),
		Workers:         v.GetInt("BACKUPS_WORKERS"),
		Retries:         v.GetInt("BACKUPS_RETRIES"),
	}

	cfg.Cards = CardConfig{
		Label:   v.GetString("CARD_LABEL"),
		BaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
	}

	if cfg.Admin.Passcode == "" {
		return nil, errors.New("ADMIN_PASSCODE is required")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 3040)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("APP_NAME", "The Storehouse")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "storehouse")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ADMIN_PASSCODE", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TIMEOUT", "45m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_CACHE_TTL", "1m")

	v.SetDefault("ENABLE_BACKUPS", false)
	v.SetDefault("BACKUPS_STORAGE_DIR", "./data")
	v.SetDefault("BACKUP_SCHEDULE", "")
	v.SetDefault("BACKUPS_SIGNED_URL_SECRET", "dev_backups_secret")
	v.SetDefault("BACKUPS_SIGNED_URL_TTL", "1h")
	v.SetDefault("BACKUPS_WORKERS", 1)
	v.SetDefault("BACKUPS_RETRIES", 3)

	v.SetDefault("CARD_LABEL", "AOC YOUTH")
	v.SetDefault("PUBLIC_BASE_URL", "")
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
