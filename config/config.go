package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Search  SearchConfig
	Cache   CacheConfig
	OTP     OTPConfig
	Catalog CatalogConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Migrate  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SearchConfig configures the Elasticsearch connection and the indexing pipeline.
type SearchConfig struct {
	URL           string
	Username      string
	Password      string
	Index         string
	Timeout       time.Duration
	Workers       int
	QueueSize     int
	RetryInterval time.Duration
	ReconcileCron string
}

type CacheConfig struct {
	TTL     time.Duration
	Timeout time.Duration
}

type OTPConfig struct {
	TTL time.Duration
}

type CatalogConfig struct {
	CapitalCity string
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads the given env file (if present) and overlays process environment.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			CORSOrigins: strings.Split(v.GetString("APP_CORS_ORIGINS"), ","),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  duration(v, "JWT_ACCESS_EXPIRY", 200*time.Minute),
			RefreshExpiry: duration(v, "JWT_REFRESH_EXPIRY", 24*time.Hour),
		},
		Search: SearchConfig{
			URL:           v.GetString("SEARCH_URL"),
			Username:      v.GetString("SEARCH_USERNAME"),
			Password:      v.GetString("SEARCH_PASSWORD"),
			Index:         v.GetString("SEARCH_INDEX"),
			Timeout:       duration(v, "SEARCH_TIMEOUT", 3*time.Second),
			Workers:       positive(v.GetInt("SEARCH_WORKERS"), 8),
			QueueSize:     positive(v.GetInt("SEARCH_QUEUE_SIZE"), 1024),
			RetryInterval: duration(v, "SEARCH_RETRY_INTERVAL", time.Minute),
			ReconcileCron: v.GetString("SEARCH_RECONCILE_CRON"),
		},
		Cache: CacheConfig{
			TTL:     duration(v, "CACHE_TTL", 15*time.Minute),
			Timeout: duration(v, "CACHE_TIMEOUT", 300*time.Millisecond),
		},
		OTP: OTPConfig{
			TTL: duration(v, "OTP_TTL", 180*time.Second),
		},
		Catalog: CatalogConfig{
			CapitalCity: strings.ToLower(v.GetString("CATALOG_CAPITAL_CITY")),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_CORS_ORIGINS", "*")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SEARCH_URL", "http://localhost:9200")
	v.SetDefault("SEARCH_INDEX", "masters")
	v.SetDefault("SEARCH_RECONCILE_CRON", "@every 1h")
	v.SetDefault("CATALOG_CAPITAL_CITY", "baku")
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positive(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
