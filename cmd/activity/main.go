package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/config"
	kafkax "github.com/ariefcatur/lexi-storefront/internal/kafka"
	"github.com/ariefcatur/lexi-storefront/internal/logx"
	"github.com/ariefcatur/lexi-storefront/internal/postgres"
	"github.com/ariefcatur/lexi-storefront/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}
	service := cfg.ServiceName + "-activity"
	log, err := logx.New(cfg.Env, cfg.LogLevel, service)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is empty; nothing to consume")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.ActivityWorkers)+1)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	repo := &activity.Repo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("schema", zap.Error(err))
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	rec := &activity.Recorder{Log: repo, Redis: rdb, Service: service, Logger: log}

	topic := cfg.ActivityTopic
	if topic == "" {
		topic = activity.Topic
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ActivityGroup, topic, cfg.ActivityWorkers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("activity consumer started",
			zap.String("group", cfg.ActivityGroup),
			zap.String("topic", topic),
			zap.Int("workers", cfg.ActivityWorkers))
		if err := cons.Start(ctx, rec.HandleMessage); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("consumer did not stop in time")
	}
}
