// Package main 用量事件消费者入口（usage-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sparkchat-api/internal/config"
	"sparkchat-api/internal/infrastructure/messaging"
	"sparkchat-api/internal/infrastructure/persistence/redis"
	"sparkchat-api/pkg/logger"
	"sparkchat-api/pkg/tracer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()
	log := logger.FromContext(ctx)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "usage-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	cache := redis.NewCache(redisClient)

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamUsageEvents,
		Group:        messaging.ConsumerGroupUsageWorker,
		ConsumerName: hostnameConsumerName(),
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
	})

	// 记账事件到达后使对应用户的用量汇总缓存失效，
	// 让 /v1/usage 在下一次查询时读到最新数据
	consumer.RegisterHandler(messaging.TypeUsageRecorded, func(ctx context.Context, msg *messaging.Message) error {
		var payload messaging.UsageRecordedMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}

		key := fmt.Sprintf("usage:overview:%s", payload.UserID)
		if err := cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to invalidate usage overview: %w", err)
		}

		logger.Debug(ctx, "usage overview invalidated",
			"event_id", payload.EventID,
			"tokens", payload.TokensUsed,
			"model", payload.Model,
		)
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	go consumer.MonitorDLQ(ctx, 100)

	log.Info("usage-worker started",
		"stream", messaging.StreamUsageEvents,
		"group", messaging.ConsumerGroupUsageWorker,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down usage-worker...")
	consumer.Stop()
	log.Info("usage-worker exited")
}

// hostnameConsumerName 以主机名作为消费者名，便于在 XPENDING 中定位实例
func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "usage-worker"
	}
	return "usage-worker-" + host
}
