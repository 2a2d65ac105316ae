package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"civicdesk/internal/conf"
	"civicdesk/internal/mq"
	"civicdesk/internal/mq/noop"
	"civicdesk/internal/mq/rabbitmq"
	"civicdesk/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// --- Type-safe configuration values for dependency injection ---

type AppName string
type AppMode string

// RedisNamespace is a custom type for the Redis key namespace.
type RedisNamespace string

func ProvideAppName(c *conf.AppConfig) AppName {
	return AppName(c.Name)
}

func ProvideAppMode(c *conf.AppConfig) AppMode {
	return AppMode(c.Mode)
}

// --- Providers for application components ---

// ProvideDatabase creates a new database instance from a client and config.
func ProvideDatabase(client *mongo.Client, cfg *conf.MongodbConfig) *mongo.Database {
	return client.Database(cfg.DB)
}

// ProvideMachineID attempts to parse a numeric id from the hostname (e.g., for StatefulSets).
// It defaults to 1 if parsing fails, which is safe for single-instance/dev environments.
func ProvideMachineID(logger *zap.Logger) uint16 {
	log := logger.Named("MachineID")
	hostname, err := os.Hostname()
	if err != nil {
		log.Warn("Cannot get hostname, defaulting machine id to 1", zap.Error(err))
		return 1
	}

	id, err := machineIDFromHostname(hostname)
	if err != nil {
		log.Warn("Cannot derive machine id from hostname, defaulting to 1", zap.String("hostname", hostname), zap.Error(err))
		return 1
	}
	return id
}

func machineIDFromHostname(hostname string) (uint16, error) {
	parts := strings.Split(hostname, "-")
	if len(parts) < 2 {
		return 0, fmt.Errorf("hostname %q does not fit 'name-id' format", hostname)
	}
	id, err := strconv.ParseUint(parts[len(parts)-1], 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(id), nil
}

// ProvideJwtManager creates a new JWT manager based on the app configuration.
// RS256 without a private key file yields a verify-only manager.
func ProvideJwtManager(cfg *conf.AppConfig) (*jwt.Manager, error) {
	issuer := cfg.Name

	switch cfg.JwtConfig.Algorithm {
	case "HS256":
		return jwt.NewSymmetric([]byte(cfg.JwtConfig.Secret), issuer)
	case "RS256":
		publicKeyData, err := os.ReadFile(cfg.JwtConfig.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key file: %w", err)
		}
		publicKey, err := gojwt.ParseRSAPublicKeyFromPEM(publicKeyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}

		if cfg.JwtConfig.PrivateKeyFile == "" {
			return jwt.NewAsymmetric(nil, publicKey, issuer)
		}
		privateKeyData, err := os.ReadFile(cfg.JwtConfig.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		privateKey, err := gojwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}

		return jwt.NewAsymmetric(privateKey, publicKey, issuer)
	default:
		return nil, fmt.Errorf("unsupported JWT algorithm: %s", cfg.JwtConfig.Algorithm)
	}
}

// ProvideRedisNamespace creates a namespace string for Redis keys.
func ProvideRedisNamespace(cfg *conf.AppConfig) RedisNamespace {
	return RedisNamespace(fmt.Sprintf("%s:%s:", cfg.Name, cfg.Mode))
}

// ProvideRedisClient creates and returns a new Redis client based on the application configuration.
// It also returns a cleanup function to close the connection.
func ProvideRedisClient(cfg *conf.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	cleanup := func() {
		_ = client.Close()
	}

	return client, cleanup, nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideRegisterer exposes the registry to components that only register collectors.
func ProvideRegisterer(reg *prometheus.Registry) prometheus.Registerer {
	return reg
}

// ProvideRelayPublisher connects to RabbitMQ when the relay is enabled and
// falls back to a publisher that drops everything otherwise.
func ProvideRelayPublisher(cfg *conf.RabbitMQConfig, logger *zap.Logger) (mq.Publisher, func(), error) {
	if cfg == nil || !cfg.Enabled {
		return noop.NewPublisher(), func() {}, nil
	}
	p, err := rabbitmq.NewPublisher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

// ProvideRelaySubscriber mirrors ProvideRelayPublisher for the consuming side.
func ProvideRelaySubscriber(cfg *conf.RabbitMQConfig, logger *zap.Logger) (mq.Subscriber, func(), error) {
	if cfg == nil || !cfg.Enabled {
		return noop.NewSubscriber(), func() {}, nil
	}
	c, err := rabbitmq.NewConsumer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}
