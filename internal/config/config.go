package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/grocery_shop/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver    string
	DatabaseURL string
	AutoMigrate bool

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CookieSecure bool

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CategoryCacheTTL time.Duration
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("notice: cannot read .env: %v, using process environment", err)
	}

	return Config{
		ServiceName: config.EnvDefault("SERVICE_NAME", "grocery_shop"),
		ServerPort:  config.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    config.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    config.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: databaseURL(),
		AutoMigrate: config.EnvBoolDefault("AUTO_MIGRATE", true),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        config.EnvDurationDefault("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       config.EnvDurationDefault("REFRESH_TTL", 7*24*time.Hour),

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "products"),

		CookieSecure: config.EnvBoolDefault("COOKIE_SECURE", false),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          config.EnvIntDefault("REDIS_DB", 0),
		CategoryCacheTTL: config.EnvDurationDefault("CATEGORY_CACHE_TTL", 10*time.Minute),
	}
}

// databaseURL falls back to the DB_HOST/DB_PORT/... variables when no DSN
// is given.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host,
		config.EnvDefault("DB_PORT", "5432"), os.Getenv("DB_NAME"),
	)
}

func (c Config) Validate() error {
	var r config.Required
	r.NonEmpty(c.DatabaseURL, "DATABASE_URL")
	r.NonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET")
	r.NonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	return r.Err()
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
