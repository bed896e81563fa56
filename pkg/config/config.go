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

// Cache drivers.
const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// Interaction source drivers.
const (
	SourceDriverGraphQL  = "graphql"
	SourceDriverPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Source    SourceConfig
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

// CacheConfig governs the session-scoped interaction cache.
type CacheConfig struct {
	Enabled   bool
	Driver    string
	Threshold int
	TTL       time.Duration
	KeyPrefix string
}

// DashboardConfig holds display and date-window settings.
type DashboardConfig struct {
	DisplayTimezone string
	DateMin         string
	DateMax         string
}

// SourceConfig points at the upstream interaction data source.
type SourceConfig struct {
	Driver       string
	URI          string
	TokenURI     string
	Audience     string
	ClientID     string
	ClientSecret string
	ChunkSize    int
	Timeout      time.Duration
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

	threshold := v.GetInt("CACHE_THRESHOLD")
	if threshold <= 0 {
		threshold = 200
	}
	cfg.Cache = CacheConfig{
		Enabled:   v.GetBool("CACHE_ENABLED"),
		Driver:    strings.ToLower(v.GetString("CACHE_DRIVER")),
		Threshold: threshold,
		TTL:       parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
		KeyPrefix: v.GetString("CACHE_KEY_PREFIX"),
	}

	cfg.Dashboard = DashboardConfig{
		DisplayTimezone: v.GetString("DISPLAY_TIMEZONE"),
		DateMin:         v.GetString("DATE_MIN"),
		DateMax:         v.GetString("DATE_MAX"),
	}

	chunkSize := v.GetInt("SOURCE_CHUNK_SIZE")
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	cfg.Source = SourceConfig{
		Driver:       strings.ToLower(v.GetString("SOURCE_DRIVER")),
		URI:          v.GetString("SOURCE_URI"),
		TokenURI:     v.GetString("SOURCE_TOKEN_URI"),
		Audience:     v.GetString("SOURCE_AUDIENCE"),
		ClientID:     v.GetString("SOURCE_CLIENT_ID"),
		ClientSecret: v.GetString("SOURCE_CLIENT_SECRET"),
		ChunkSize:    chunkSize,
		Timeout:      parseDuration(v.GetString("SOURCE_TIMEOUT"), 30*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8050)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "classroom_analytics")
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

	// Threshold should match the number of concurrent dashboard users.
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_DRIVER", CacheDriverRedis)
	v.SetDefault("CACHE_THRESHOLD", 200)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_KEY_PREFIX", "dashboard")

	v.SetDefault("DISPLAY_TIMEZONE", "America/Chicago")
	v.SetDefault("DATE_MIN", "2020-08-01")
	v.SetDefault("DATE_MAX", "2021-07-31")

	v.SetDefault("SOURCE_DRIVER", SourceDriverGraphQL)
	v.SetDefault("SOURCE_URI", "")
	v.SetDefault("SOURCE_TOKEN_URI", "")
	v.SetDefault("SOURCE_AUDIENCE", "")
	v.SetDefault("SOURCE_CLIENT_ID", "")
	v.SetDefault("SOURCE_CLIENT_SECRET", "")
	v.SetDefault("SOURCE_CHUNK_SIZE", 1000)
	v.SetDefault("SOURCE_TIMEOUT", "30s")
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
