package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers understood by the persistence layer.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// DefaultPort is used when PORT is not set.
const DefaultPort = "5001"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects the backing user store.
type StoreConfig struct {
	Driver         string
	ConnectTimeout time.Duration
}

// MongoConfig holds MongoDB connection values.
type MongoConfig struct {
	URI      string
	Database string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session token and password hashing parameters.
type AuthConfig struct {
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	BcryptCost   int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	connectTimeout, err := time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL: must be positive")
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreMongo))
	switch driver {
	case StoreMongo, StorePostgres, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", driver)
	}

	algorithm := strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256"))
	switch algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("invalid JWT_ALGORITHM %q", algorithm)
	}

	requestTimeout, err := getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 0, 0)
	if err != nil {
		return nil, err
	}
	bcryptCost, err := getEnvAsInt("AUTH_BCRYPT_COST", 10, bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	if bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid AUTH_BCRYPT_COST: must be at most %d", bcrypt.MaxCost)
	}

	pgMaxConns, err := getEnvAsInt("POSTGRES_MAX_CONNS", 10, 1)
	if err != nil {
		return nil, err
	}
	pgMinConns, err := getEnvAsInt("POSTGRES_MIN_CONNS", 2, 0)
	if err != nil {
		return nil, err
	}
	pgMaxIdle, err := getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30, 0)
	if err != nil {
		return nil, err
	}
	pgMaxLife, err := getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300, 0)
	if err != nil {
		return nil, err
	}
	runMigrations, err := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "tryst-event-registration"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", DefaultPort),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: requestTimeout,
		},
		Store: StoreConfig{
			Driver:         driver,
			ConnectTimeout: connectTimeout,
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getEnv("MONGO_DB", "tryst"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(pgMaxConns),
			MinConns:       int32(pgMinConns),
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: int32(pgMaxIdle),
			ConnMaxLifeSec: int32(pgMaxLife),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", "dev-secret"),
			JWTAlgorithm: algorithm,
			TokenTTL:     tokenTTL,
			BcryptCost:   bcryptCost,
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvAsInt parses key as an integer no smaller than floor.
func getEnvAsInt(key string, fallback, floor int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed < floor {
		return 0, fmt.Errorf("invalid %s: must be at least %d", key, floor)
	}
	return parsed, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
