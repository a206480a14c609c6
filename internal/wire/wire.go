//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	"sparkchat-api/internal/application/account"
	"sparkchat-api/internal/application/chat"
	"sparkchat-api/internal/application/quota"
	"sparkchat-api/internal/application/usage"
	"sparkchat-api/internal/config"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/domain/service"
	"sparkchat-api/internal/infrastructure/llm/openrouter"
	"sparkchat-api/internal/infrastructure/messaging"
	"sparkchat-api/internal/infrastructure/persistence/postgres"
	"sparkchat-api/internal/infrastructure/persistence/redis"
	"sparkchat-api/internal/interfaces/http/handler"
	"sparkchat-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		LLMSet,
		ApplicationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewConversationRepository,
	postgres.NewMessageRepository,
	postgres.NewUsageEventRepository,
	postgres.NewUserRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ConversationRepository), new(*postgres.ConversationRepository)),
	wire.Bind(new(repository.MessageRepository), new(*postgres.MessageRepository)),
	wire.Bind(new(repository.UsageEventRepository), new(*postgres.UsageEventRepository)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideMessagingProducer,
	wire.Bind(new(quota.UsagePublisher), new(*messaging.Producer)),
)

// LLMSet 补全客户端提供者集合
var LLMSet = wire.NewSet(
	ProvideCompletionClient,
	wire.Bind(new(service.CompletionClient), new(*openrouter.Client)),
)

// ApplicationSet 应用层提供者集合
var ApplicationSet = wire.NewSet(
	quota.NewUsageLedger,
	quota.NewQuotaChecker,
	chat.NewContextBuilder,
	ProvideTitler,
	ProvideChatService,
	usage.NewService,
	account.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewConversationHandler,
	handler.NewChatHandler,
	handler.NewUsageHandler,
	handler.NewUserHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
