package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration, read from the environment
// (optionally seeded from a .env file).
type Config struct {
	ListenAddr string
	LogLevel   string

	DatabaseDSN     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	RedisAddr       string
	RateLimit       string
	AllowedOrigins  []string
	SessionTTL      time.Duration
	PriceFreshTTL   time.Duration
	PriceStaleTTL   time.Duration
	ProviderTimeout time.Duration
}

// LoadConfig reads configuration via viper with sane defaults.
func LoadConfig() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("No config file found: %v", err)
	}

	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFE", "1h")
	viper.SetDefault("RATE_LIMIT", "60-M")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("SESSION_TTL", "168h")
	viper.SetDefault("PRICE_FRESH_TTL", "5m")
	viper.SetDefault("PRICE_STALE_TTL", "30m")
	viper.SetDefault("PROVIDER_TIMEOUT", "5s")

	return &Config{
		ListenAddr:      viper.GetString("LISTEN_ADDR"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		DatabaseDSN:     viper.GetString("DATABASE_DSN"),
		DBMaxOpenConns:  viper.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:  viper.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLife:   viper.GetDuration("DB_CONN_MAX_LIFE"),
		RedisAddr:       viper.GetString("REDIS_ADDR"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		AllowedOrigins:  viper.GetStringSlice("ALLOWED_ORIGINS"),
		SessionTTL:      viper.GetDuration("SESSION_TTL"),
		PriceFreshTTL:   viper.GetDuration("PRICE_FRESH_TTL"),
		PriceStaleTTL:   viper.GetDuration("PRICE_STALE_TTL"),
		ProviderTimeout: viper.GetDuration("PROVIDER_TIMEOUT"),
	}
}
