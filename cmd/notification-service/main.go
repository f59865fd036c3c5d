package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/bitewise/foodflow/internal/notification/application"
	notifhttp "github.com/bitewise/foodflow/internal/notification/infrastructure/http"
	notifkafka "github.com/bitewise/foodflow/internal/notification/infrastructure/kafka"
	"github.com/bitewise/foodflow/pkg/idempotency"
	"github.com/bitewise/foodflow/pkg/logging"
	"github.com/bitewise/foodflow/pkg/shutdown"
	"github.com/bitewise/foodflow/pkg/tracing"
)

func main() {
	log := logging.New("notification-service")
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	jaeger := env("JAEGER_URL", "http://localhost:14268/api/traces")
	kafkaAddr := env("KAFKA_ADDR", "localhost:9092")
	redisAddr := env("REDIS_ADDR", "localhost:6379")
	httpAddr := env("HTTP_ADDR", ":8083")
	inTopic := env("IN_TOPIC", "user-notification")

	tp, err := tracing.Init(ctx, "notification-service", jaeger, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, 10*time.Minute)

	svc := application.NewService(log)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{kafkaAddr},
		Topic:   inTopic,
		GroupID: "notification-service",
	})
	defer reader.Close()

	consumer := notifkafka.NewConsumer(log, reader, idem, svc)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	handler := notifhttp.NewHandler(log, svc)
	srv := &http.Server{Addr: httpAddr, Handler: handler.Routes()}
	go func() {
		log.Info("notification-service listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("notification-service shutdown")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
