package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	SMTP      SMTPSettings      `mapstructure:"smtp"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Reset     ResetSettings     `mapstructure:"reset"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Export    ExportSettings    `mapstructure:"export"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// BaseURL is the public frontend origin used to build reset links.
	BaseURL string `mapstructure:"base_url"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	DB                 int           `mapstructure:"db"`
	Password           string        `mapstructure:"password"`
	TLSEnabled         bool          `mapstructure:"tls_enabled"`
	PendingResetPrefix string        `mapstructure:"pending_reset_prefix"`
	PendingResetTTL    time.Duration `mapstructure:"pending_reset_ttl"`
}

// KafkaSettings configures the Kafka producer and the reset job consumer.
// Empty Brokers disables Kafka; events fall back to the logging publisher and
// reset jobs to the in-process queue.
type KafkaSettings struct {
	Brokers       []string `mapstructure:"brokers"`
	TopicPrefix   string   `mapstructure:"topic_prefix"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	Async         bool     `mapstructure:"async"`
}

// SMTPSettings configures outbound mail delivery. Empty Host disables SMTP
// and routes notifications through the logging mailer.
type SMTPSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ResetSettings tunes the password reset workflow.
type ResetSettings struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	// QueueBuffer sizes the in-process queue used when Kafka is absent.
	QueueBuffer int `mapstructure:"queue_buffer"`
}

// RateLimitSettings configures sliding-window limits for anonymous endpoints.
type RateLimitSettings struct {
	WindowDuration           time.Duration `mapstructure:"window_duration"`
	PasswordResetMaxAttempts int           `mapstructure:"password_reset_max_attempts"`
}

// ExportSettings tunes the audit trail spreadsheet export.
type ExportSettings struct {
	TimeZone string `mapstructure:"time_zone"`
}

type TelemetrySettings struct {
	MetricsNamespace string  `mapstructure:"metrics_namespace"`
	OTLPEndpoint     string  `mapstructure:"otlp_endpoint"`
	ServiceName      string  `mapstructure:"service_name"`
	SamplingRate     float64 `mapstructure:"sampling_rate"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("HRIS")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.base_url",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.pending_reset_prefix",
		"redis.pending_reset_ttl",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.consumer_group",
		"kafka.async",
		"smtp.host",
		"smtp.port",
		"smtp.username",
		"smtp.password",
		"smtp.from",
		"smtp.use_tls",
		"jwt.secret",
		"jwt.access_token_ttl",
		"reset.token_ttl",
		"reset.queue_buffer",
		"rate_limit.window_duration",
		"rate_limit.password_reset_max_attempts",
		"export.time_zone",
		"telemetry.metrics_namespace",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hris-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.base_url", "http://localhost:3000")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "hris")
	v.SetDefault("postgres.password", "hris_password")
	v.SetDefault("postgres.database", "hris")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.pending_reset_prefix", "hris:pending_reset")
	v.SetDefault("redis.pending_reset_ttl", "30s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "hris")
	v.SetDefault("kafka.consumer_group", "hris-reset-worker")
	v.SetDefault("kafka.async", true)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@hris.local")
	v.SetDefault("smtp.use_tls", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_ttl", "15m")

	v.SetDefault("reset.token_ttl", "1h")
	v.SetDefault("reset.queue_buffer", 64)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.password_reset_max_attempts", 3)

	v.SetDefault("export.time_zone", "UTC")

	v.SetDefault("telemetry.metrics_namespace", "hris")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "hris-api")
	v.SetDefault("telemetry.sampling_rate", 1.0)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "HRIS_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
