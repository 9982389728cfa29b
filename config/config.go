package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "insecure-development-secret"

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerHost  string
	ServerPort  string
	CORSOrigins []string
	LogLevel    string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis configuration. Redis is optional; without it rate limiting falls
	// back to an in-process limiter and logout does not revoke tokens.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage. StorageBackend is "local" or "s3".
	StorageBackend string
	MediaDir       string
	MediaURL       string
	S3Bucket       string
	S3Region       string
	S3PublicURL    string

	// Pagination and limits
	PageSize          int
	RateLimitWindow   time.Duration
	RecipeCreateLimit int
	RecipeModifyLimit int
}

// LoadConfig builds a Config from the environment. Development and test
// environments read an optional .env file first; docker secrets, when present,
// override sensitive values in every environment.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.ReadsDotEnv() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := fromEnv(env)
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func fromEnv(env Environment) *Config {
	return &Config{
		Env:         env,
		ServerHost:  getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "foodgram"),
		DBSSLMode:     getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:    getEnv("SQLITE_PATH", "foodgram.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
		MediaURL:       getEnv("MEDIA_URL", "/media"),
		S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
		S3Region:       getEnv("AWS_REGION", "us-east-1"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),

		PageSize:          getEnvInt("PAGE_SIZE", 6),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Hour),
		RecipeCreateLimit: getEnvInt("RECIPE_CREATE_LIMIT", 20),
		RecipeModifyLimit: getEnvInt("RECIPE_MODIFY_LIMIT", 60),
	}
}

// applySecrets overrides sensitive values with docker secrets when they exist.
func applySecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
}

// PostgresDSN returns the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
