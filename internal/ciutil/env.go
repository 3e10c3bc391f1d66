package ciutil

import (
	"log/slog"
	"os"

	"github.com/snapsolve/snapsolve/internal/redact"
)

// Environment variables consulted by this package.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// EnvRequireIntegration turns missing endpoints into failures in CI.
	EnvRequireIntegration = "SNAPSOLVE_REQUIRE_INTEGRATION"

	// Service endpoints, preferred name first
	EnvTestDatabaseURL = "SNAPSOLVE_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestRedisAddr   = "SNAPSOLVE_TEST_REDIS_ADDR"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvTestAMQPURL     = "SNAPSOLVE_TEST_AMQP_URL"
	EnvAMQPURL         = "AMQP_URL"
)

// IsCI returns true if the current environment is a CI environment.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}
