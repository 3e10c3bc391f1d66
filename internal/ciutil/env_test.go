package ciutil

import (
	"testing"

	"github.com/snapsolve/snapsolve/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

var ciVars = []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI}

func clearCI(t *testing.T) {
	t.Helper()
	for _, v := range ciVars {
		t.Setenv(v, "")
	}
}

func TestIsCI(t *testing.T) {
	t.Run("no CI variables", func(t *testing.T) {
		clearCI(t)
		assert.False(t, IsCI())
	})

	for _, v := range ciVars {
		t.Run(v, func(t *testing.T) {
			clearCI(t)
			t.Setenv(v, "true")
			assert.True(t, IsCI())
		})
	}
}

func TestGetEnvWithFallbacks(t *testing.T) {
	t.Run("preferred variable wins", func(t *testing.T) {
		t.Setenv(EnvTestDatabaseURL, "postgres://primary")
		t.Setenv(EnvDatabaseURL, "postgres://fallback")

		assert.Equal(t, "postgres://primary", TestDatabaseURL(nil))
	})

	t.Run("fallback is logged redacted", func(t *testing.T) {
		t.Setenv(EnvTestDatabaseURL, "")
		t.Setenv(EnvDatabaseURL, "postgres://app:hunter22@db:5432/snapsolve")
		log, buf := logger.NewTestLogger(t)

		assert.Equal(t, "postgres://app:hunter22@db:5432/snapsolve", TestDatabaseURL(log))

		entry := logger.LastEntry(t, buf)
		assert.Equal(t, EnvDatabaseURL, entry["used_var"])
		assert.NotContains(t, buf.String(), "hunter22")
	})

	t.Run("default when unset", func(t *testing.T) {
		t.Setenv(EnvTestRedisAddr, "")
		t.Setenv(EnvRedisAddr, "")

		assert.Empty(t, TestRedisAddr(nil))
		assert.Equal(t, "fallback", GetEnvWithFallbacks([]string{EnvTestRedisAddr}, "fallback", nil))
	})

	t.Run("amqp", func(t *testing.T) {
		t.Setenv(EnvTestAMQPURL, "")
		t.Setenv(EnvAMQPURL, "amqp://localhost:5672/")

		assert.Equal(t, "amqp://localhost:5672/", TestAMQPURL(nil))
	})
}

func TestRequireService(t *testing.T) {
	t.Run("configured endpoint continues", func(t *testing.T) {
		RequireService(t, "redis", "localhost:6379")
	})

	t.Run("missing endpoint skips outside CI", func(t *testing.T) {
		clearCI(t)
		t.Setenv(EnvRequireIntegration, "")

		ran := false
		t.Run("inner", func(t *testing.T) {
			RequireService(t, "redis", "")
			ran = true
		})
		assert.False(t, ran)
	})
}
