// Package wire 提供依赖注入配置
package wire

import (
	"fmt"

	"sparkchat-api/internal/application/chat"
	"sparkchat-api/internal/application/quota"
	"sparkchat-api/internal/config"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/domain/service"
	"sparkchat-api/internal/infrastructure/llm/openrouter"
	"sparkchat-api/internal/infrastructure/messaging"
	"sparkchat-api/internal/infrastructure/persistence/postgres"
	"sparkchat-api/internal/infrastructure/persistence/redis"
	"sparkchat-api/internal/interfaces/http/handler"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	return messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideCompletionClient 提供默认 Provider 的补全客户端
func ProvideCompletionClient(cfg *config.Config) (*openrouter.Client, error) {
	providerCfg, ok := cfg.LLM.Providers[cfg.LLM.DefaultProvider]
	if !ok {
		return nil, fmt.Errorf("llm provider not configured: %s", cfg.LLM.DefaultProvider)
	}
	return openrouter.NewClient(&providerCfg)
}

// ProvideTitler 提供会话标题生成器
func ProvideTitler(cfg *config.Config, client service.CompletionClient) *chat.Titler {
	providerCfg := cfg.LLM.Providers[cfg.LLM.DefaultProvider]
	return chat.NewTitler(client, providerCfg.Model, cfg.LLM.Title.MaxTokens, cfg.LLM.Title.Temperature)
}

// ProvideChatService 提供会话应用服务
func ProvideChatService(
	cfg *config.Config,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	txManager repository.Transactor,
	completion service.CompletionClient,
	contextBuilder *chat.ContextBuilder,
	titler *chat.Titler,
	checker *quota.QuotaChecker,
	ledger *quota.UsageLedger,
) *chat.Service {
	providerCfg := cfg.LLM.Providers[cfg.LLM.DefaultProvider]
	return chat.NewService(
		conversationRepo,
		messageRepo,
		txManager,
		completion,
		contextBuilder,
		titler,
		checker,
		ledger,
		providerCfg.Model,
		providerCfg.Temperature,
	)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(pg *postgres.Client, redisClient *redis.Client, cfg *config.Config) *handler.HealthHandler {
	return handler.NewHealthHandler(pg, redisClient, cfg.App.Version)
}
