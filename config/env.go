package config

import (
	"os"
	"strings"
)

// Environment selects defaults, the log format and whether .env is read.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins so pipelines never pick up a
// developer's .env file.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

func (e Environment) String() string {
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == Production
}

// ReadsDotEnv reports whether a local .env file is loaded before the environment.
func (e Environment) ReadsDotEnv() bool {
	return e == Development || e == Test
}
