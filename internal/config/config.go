package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Storage     StorageConfig     `mapstructure:"storage" validate:"required"`
	Clock       ClockConfig       `mapstructure:"clock"`
	Limits      LimitsConfig      `mapstructure:"limits" validate:"required"`
	Rewards     RewardsConfig     `mapstructure:"rewards"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Entitlement EntitlementConfig `mapstructure:"entitlement"`
	Events      EventsConfig      `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// StorageConfig selects and configures the persistence adapter backing the
// progress and quiz stores.
type StorageConfig struct {
	// Driver is one of memory, file, sqlite, postgres or redis.
	Driver string `mapstructure:"driver" validate:"required,oneof=memory file sqlite postgres redis"`

	// Path is the directory (file driver) or database file (sqlite driver).
	Path string `mapstructure:"path"`

	// URL is the Postgres connection string.
	URL string `mapstructure:"url" validate:"omitempty,url"`

	RedisAddr     string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`

	// KeyPrefix namespaces the store keys in shared backends such as Redis.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ClockConfig controls how calendar days are computed.
type ClockConfig struct {
	// Timezone is an IANA zone name; empty means UTC.
	Timezone string `mapstructure:"timezone"`
}

// LimitsConfig holds the free-tier daily allowances.
type LimitsConfig struct {
	FreeDailySolves  int `mapstructure:"free_daily_solves" validate:"gte=0"`
	FreeDailyQuizzes int `mapstructure:"free_daily_quizzes" validate:"gte=0"`
}

// RewardsConfig holds the XP awarded for each learning activity.
type RewardsConfig struct {
	SolveXP   int `mapstructure:"solve_xp" validate:"gte=0"`
	QuizXP    int `mapstructure:"quiz_xp" validate:"gte=0"`
	SimilarXP int `mapstructure:"similar_xp" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings.
// Generation is disabled when GeminiAPIKey is empty.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1"`
	QuizQuestionCount int    `mapstructure:"quiz_question_count" validate:"gte=1,lte=20"`
}

// EntitlementConfig configures verification of signed pro-upgrade receipts.
// Upgrades are rejected when ReceiptSecret is empty.
type EntitlementConfig struct {
	ReceiptSecret string `mapstructure:"receipt_secret" validate:"omitempty,min=32"`
	Issuer        string `mapstructure:"issuer"`
}

// EventsConfig configures publishing of progress events to RabbitMQ.
// Publishing is disabled when AMQPURL is empty.
type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange" validate:"required_with=AMQPURL"`
}
