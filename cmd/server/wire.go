//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"civicdesk/internal/app"
	"civicdesk/internal/conf"
	"civicdesk/internal/dao/cache"
	"civicdesk/internal/dao/mongodb"
	"civicdesk/internal/dao/repository"
	"civicdesk/internal/limiter"
	"civicdesk/internal/logger"
	"civicdesk/internal/logic"
	"civicdesk/internal/metrics"
	"civicdesk/internal/middleware/http"
	"civicdesk/internal/provider"
	"civicdesk/internal/realtime"
	"civicdesk/internal/service"
	"civicdesk/internal/worker"
	"civicdesk/pkg/snowflake"

	"github.com/google/wire"
)

// ------------------- 1. Provider sets -------------------

// baseProviders holds the audit store and logic shared by every command.
var baseProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "AuditConfig"),
	provider.ProvideAppMode,
	logger.NewLogger,
	mongodb.NewMongoDB,
	provider.ProvideDatabase,
	mongodb.NewAuditLogDAO,
	wire.Bind(new(repository.AuditLogRepository), new(*mongodb.AuditLogDAO)),
	mongodb.NewUsersDAO,
	provideUserRepository,
	logic.NewAuditRecorder,
	logic.NewAuditQueryLogic,
)

// realtimeProviders holds the WebSocket hub and the cross-instance relay.
var realtimeProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "RabbitMQConfig", "RealtimeConfig"),
	provider.ProvideMachineID,
	snowflake.NewGenerator,
	realtime.NewHub,
	provider.ProvideRelayPublisher,
	provider.ProvideRelaySubscriber,
	realtime.NewBridge,
	wire.Bind(new(logic.Notifier), new(*realtime.Bridge)),
	logic.NewNotificationLogic,
)

// httpProviders holds the admin API surface.
var httpProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "Port", "RedisConfig", "RateLimiterConfig"),
	provider.ProvideAppName,
	provider.ProvideJwtManager,
	provider.ProvideRedisNamespace,
	provider.ProvideRedisClient,
	limiter.NewManager,
	http.NewAuthMiddleware,
	wire.Bind(new(service.AuditSink), new(*logic.AuditRecorder)),
	wire.Bind(new(service.AuditQueryService), new(*logic.AuditQueryLogic)),
	wire.Bind(new(service.NotificationSender), new(*logic.NotificationLogic)),
	service.NewAuditHook,
	service.NewAuditAdminService,
	service.NewNotificationsAdminService,
	service.NewWebSocketHandler,
	wire.Struct(new(app.Handlers), "*"),
	app.NewHttpHandlerRegister,
)

func provideUserRepository(dao *mongodb.UsersDAO, cfg *conf.AuditConfig) repository.UserRepository {
	return cache.NewUserRepository(dao, cfg)
}

func provideWorkers(sweeper *worker.RetentionSweeper, relay *worker.RelaySubscriber) []worker.Worker {
	return []worker.Worker{sweeper, relay}
}

// provideLifecycle creates the indexes before serving, then closes live connections
// and drains pending audit writes once the server has stopped.
func provideLifecycle(auditRepo repository.AuditLogRepository, hub *realtime.Hub, recorder *logic.AuditRecorder) app.Lifecycle {
	return app.Lifecycle{
		Startup: []app.Hook{auditRepo.EnsureIndexes},
		Shutdown: []app.Hook{
			func(ctx context.Context) error {
				hub.Close()
				return nil
			},
			recorder.Wait,
		},
	}
}

// ------------------- 2. Server injector -------------------

func InitializeServer(appConfig *conf.AppConfig) (*app.App, func(), error) {
	wire.Build(
		baseProviders,
		realtimeProviders,
		httpProviders,
		provider.ProvideRegistry,
		provider.ProvideRegisterer,
		metrics.New,
		wire.Bind(new(worker.Purger), new(*logic.AuditQueryLogic)),
		worker.NewRetentionSweeper,
		worker.NewRelaySubscriber,
		provideWorkers,
		provideLifecycle,
		conf.NewUnaryInterceptors,
		app.NewApp,
	)
	return nil, nil, nil
}

// ------------------- 3. One-shot command injector -------------------

func InitializeAuditQueryLogic(appConfig *conf.AppConfig) (*logic.AuditQueryLogic, func(), error) {
	wire.Build(
		baseProviders,
		metrics.NewNop,
	)
	return nil, nil, nil
}
