package ciutil

import (
	"log/slog"
	"os"
	"testing"
)

// TestDatabaseURL returns the PostgreSQL URL for integration tests, or "".
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestDatabaseURL, EnvDatabaseURL}, "", logger)
}

// TestRedisAddr returns the Redis host:port for integration tests, or "".
func TestRedisAddr(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestRedisAddr, EnvRedisAddr}, "", logger)
}

// TestAMQPURL returns the RabbitMQ URL for integration tests, or "".
func TestAMQPURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestAMQPURL, EnvAMQPURL}, "", logger)
}

// RequireService stops the test when endpoint is empty. It fails the test in
// CI when EnvRequireIntegration is set and skips it otherwise.
func RequireService(t testing.TB, service, endpoint string) {
	t.Helper()

	if endpoint != "" {
		return
	}
	if IsCI() && os.Getenv(EnvRequireIntegration) != "" {
		t.Fatalf("%s endpoint not configured but %s is set", service, EnvRequireIntegration)
	}
	t.Skipf("%s endpoint not configured; skipping integration test", service)
}
