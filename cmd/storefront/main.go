package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/chat"
	"github.com/ariefcatur/lexi-storefront/internal/config"
	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"github.com/ariefcatur/lexi-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/lexi-storefront/internal/kafka"
	"github.com/ariefcatur/lexi-storefront/internal/logx"
	"github.com/ariefcatur/lexi-storefront/internal/redisx"
	"github.com/ariefcatur/lexi-storefront/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}
	log, err := logx.New(cfg.Env, cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Browser storage
	var storage durable.Factory
	switch cfg.Storage {
	case "memory":
		log.Warn("using in-memory browser storage; sessions are lost on restart")
		storage = durable.NewMemoryFactory()
	default:
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		storage = durable.RedisFactory{RDB: rdb, TTL: cfg.SessionTTL}
	}

	// Activity events
	var (
		publisher activity.Publisher = activity.Nop{}
		producer  *kafkax.Producer
	)
	if len(cfg.KafkaBrokers) > 0 {
		topic := cfg.ActivityTopic
		if topic == "" {
			topic = activity.Topic
		}
		producer = kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, log)
		producer.Start(ctx)
		publisher = &activity.KafkaPublisher{Producer: producer, Service: cfg.ServiceName}
	}

	clients := &httpx.Clients{
		BaseURL:  cfg.APIBaseURL,
		HTTP:     &http.Client{Timeout: cfg.UpstreamTimeout},
		Storage:  storage,
		Activity: publisher,
		Log:      log,
	}
	sessions := session.NewManager(storage, func(id string) session.Authenticator { return clients.For(id) }, log)
	chats := &chat.Hub{PerMinute: cfg.ChatPerMinute, Log: log}
	sf := &httpx.Storefront{
		Clients:  clients,
		Sessions: sessions,
		Chat:     chats,
		Activity: publisher,
		Cookie:   httpx.Cookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure, TTL: cfg.SessionTTL},
		Log:      log,
		RoleWait: 5 * time.Second,
	}
	router := httpx.NewRouter(log, cfg.UpstreamTimeout+5*time.Second)
	sf.Register(router)

	// Idle sessions are rebuilt from storage on the next request; idle chat
	// transcripts are dropped.
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := sessions.Sweep(30 * time.Minute); n > 0 {
					log.Debug("swept idle sessions", zap.Int("count", n))
				}
				if n := chats.Sweep(30 * time.Minute); n > 0 {
					log.Debug("swept idle chat widgets", zap.Int("count", n))
				}
			}
		}
	}()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	if producer != nil {
		producer.WaitClosed()
	}
}
