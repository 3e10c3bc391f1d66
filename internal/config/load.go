package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SNAPSOLVE"

// ConfigFileEnv names an explicit config file to read instead of ./config.yaml.
const ConfigFileEnv = "SNAPSOLVE_CONFIG_FILE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// SNAPSOLVE_SERVER_PORT maps to server.port
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field storage requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Storage.Driver {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("config validation failed: storage.path is required for the %s driver", c.Storage.Driver)
		}
	case "postgres":
		if c.Storage.URL == "" {
			return errors.New("config validation failed: storage.url is required for the postgres driver")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return errors.New("config validation failed: storage.redis_addr is required for the redis driver")
		}
	}

	return nil
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.url", "")
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.key_prefix", "snapsolve:")

	v.SetDefault("clock.timezone", "")

	v.SetDefault("limits.free_daily_solves", 5)
	v.SetDefault("limits.free_daily_quizzes", 1)

	v.SetDefault("rewards.solve_xp", 10)
	v.SetDefault("rewards.quiz_xp", 20)
	v.SetDefault("rewards.similar_xp", 5)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.quiz_question_count", 5)

	v.SetDefault("entitlement.receipt_secret", "")
	v.SetDefault("entitlement.issuer", "snapsolve-store")

	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.exchange", "snapsolve.progress")
}
