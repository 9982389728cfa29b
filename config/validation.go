package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks cfg against the requirements of its environment.
func ValidateConfig(cfg *Config) error {
	var problems ValidationErrors
	add := func(field, msg string) {
		problems = append(problems, ValidationError{Field: field, Message: msg})
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		add("SERVER_PORT", "must be numeric")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", "must be postgres or sqlite")
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaDir == "" {
			add("MEDIA_DIR", "is required for local storage")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			add("S3_BUCKET_NAME", "is required for s3 storage")
		}
	default:
		add("STORAGE_BACKEND", "must be local or s3")
	}

	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		add("PAGE_SIZE", "must be between 1 and 100")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}

	if cfg.Env == Production || cfg.Env == CI {
		if cfg.JWTSecret == defaultJWTSecret {
			add("JWT_SECRET", "must be set outside development")
		} else if len(cfg.JWTSecret) < 32 {
			add("JWT_SECRET", "must be at least 32 characters")
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required outside development")
		}
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}
