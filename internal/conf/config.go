package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Mode               string `mapstructure:"mode"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	Version            string `mapstructure:"version"`
	TimeZone           string `mapstructure:"time_zone"`
	*LogConfig         `mapstructure:"log"`
	*MongodbConfig     `mapstructure:"mongodb"`
	*RabbitMQConfig    `mapstructure:"rabbitmq"`
	*JwtConfig         `mapstructure:"jwt"`
	*RedisConfig       `mapstructure:"redis"`
	*RateLimiterConfig `mapstructure:"rate_limiter"`
	*AuditConfig       `mapstructure:"audit"`
	*RealtimeConfig    `mapstructure:"realtime"`
}

// JwtConfig holds the JWT configuration.
type JwtConfig struct {
	Algorithm      string `mapstructure:"algorithm"`
	Secret         string `mapstructure:"secret"`
	PrivateKeyFile string `mapstructure:"private_key_file"`
	PublicKeyFile  string `mapstructure:"public_key_file"`
}

// MongodbConfig holds the MongoDB configuration.
type MongodbConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	// URI takes precedence over the host/port/user parts when set.
	URI string `mapstructure:"uri"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RabbitMQConfig holds the RabbitMQ configuration used to relay notifications between instances.
type RabbitMQConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Host                 string `mapstructure:"host"`
	Port                 int    `mapstructure:"port"`
	User                 string `mapstructure:"user"`
	Password             string `mapstructure:"password"`
	NotificationExchange string `mapstructure:"notification_exchange"`
}

// RedisConfig holds the Redis client configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimiterPolicy defines the limit and interval for a policy.
type RateLimiterPolicy struct {
	Interval string `mapstructure:"interval"` // e.g., "1s", "1m", "1h"
	Limit    int    `mapstructure:"limit"`
}

// RateLimiterConfig holds all rate limiting policies.
type RateLimiterConfig struct {
	Default  RateLimiterPolicy            `mapstructure:"default"`
	Policies map[string]RateLimiterPolicy `mapstructure:"policies"`
}

// AuditConfig holds the audit trail settings.
type AuditConfig struct {
	RetentionDays        int    `mapstructure:"retention_days"`
	TTLEnabled           bool   `mapstructure:"ttl_enabled"`
	SweepSchedule        string `mapstructure:"sweep_schedule"`
	WriteTimeoutSeconds  int    `mapstructure:"write_timeout_seconds"`
	ActorCacheSize       int    `mapstructure:"actor_cache_size"`
	ActorCacheTTLSeconds int    `mapstructure:"actor_cache_ttl_seconds"`
}

// RealtimeConfig holds the WebSocket fan-out settings.
type RealtimeConfig struct {
	SendBufferSize     int      `mapstructure:"send_buffer_size"`
	PingIntervalSecond int      `mapstructure:"ping_interval_seconds"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
}

// WriteTimeout returns the detached audit write timeout, defaulting to five seconds.
func (c *AuditConfig) WriteTimeout() time.Duration {
	if c == nil || c.WriteTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// Retention returns the age horizon after which records are evicted.
func (c *AuditConfig) Retention() time.Duration {
	days := 90
	if c != nil && c.RetentionDays > 0 {
		days = c.RetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// NewConfig loads the application configuration from a file.
func NewConfig(confFile string) (*AppConfig, error) {
	// Load .env file. It's okay if it doesn't exist. Errors are ignored.
	// This is mainly for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(confFile)

	// Replace dots in keys with underscores for environment variables (e.g., `mongodb.host` -> `MONGODB_HOST`).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Enable automatic reading of environment variables.
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set timezone
	loc, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	time.Local = loc

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "dev")
	v.SetDefault("port", 8080)
	v.SetDefault("time_zone", "UTC")
	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.ttl_enabled", true)
	v.SetDefault("audit.sweep_schedule", "@every 1h")
	v.SetDefault("audit.write_timeout_seconds", 5)
	v.SetDefault("audit.actor_cache_size", 1024)
	v.SetDefault("audit.actor_cache_ttl_seconds", 10)
	v.SetDefault("realtime.send_buffer_size", 32)
	v.SetDefault("realtime.ping_interval_seconds", 30)
	v.SetDefault("rabbitmq.notification_exchange", "civicdesk.notifications")
}
