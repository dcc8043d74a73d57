package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go-inventory-bom/pkg/database"
	"go-inventory-bom/pkg/logger"
)

type Config struct {
	Port string

	DBDriver       string // postgres, mysql or sqlite
	DatabaseURL    string
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	RedisAddress string // empty disables idempotency keys and the order lock

	JWTSecret string
	LogLevel  string

	AllowNegativeStock bool
	OrderLockTTL       time.Duration
	IdempotencyTTL     time.Duration
}

const defaultJWTSecret = "your-super-secret-key-change-in-production"

// Load reads the environment. Call godotenv.Load() before it.
func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             getEnv("DB_NAME", "inventory"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBMaxOpenConns:     intFromEnv("DB_MAX_OPEN_CONNS", 100),
		DBMaxIdleConns:     intFromEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnLifetime:     time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 3600)) * time.Second,
		RedisAddress:       os.Getenv("REDIS_ADDRESS"),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AllowNegativeStock: boolFromEnv("ORDER_ALLOW_NEGATIVE_STOCK", true),
		OrderLockTTL:       time.Duration(intFromEnv("ORDER_LOCK_SECONDS", 30)) * time.Second,
		IdempotencyTTL:     time.Duration(intFromEnv("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
	}

	log := logger.GetLogger()
	if cfg.JWTSecret == defaultJWTSecret {
		log.Warn("JWT_SECRET not set, using the development default")
	}
	if cfg.RedisAddress == "" {
		log.Warn("REDIS_ADDRESS not set, order idempotency keys and tenant order lock are disabled")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// DatabaseOptions maps the DB_* settings onto database.Options.
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		Driver:          c.DBDriver,
		DSN:             c.DatabaseURL,
		Host:            c.DBHost,
		User:            c.DBUser,
		Password:        c.DBPassword,
		Name:            c.DBName,
		Port:            c.DBPort,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnLifetime,
	}
}
