package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/pkg/tracing"
	"storefront/internal/service/notification"
)

const (
	serviceName     = "notification-worker"
	consumerGroupID = "notification-group"
)

func main() {
	cfg := bootstrap.Init(serviceName)

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	reader := mq.NewKafkaReader(strings.Split(cfg.Infra.KafkaAddrs, ","), cfg.App.NotificationTopic, consumerGroupID)
	dispatcher := notification.NewDispatcher(notification.NewLogSender(), otel.Tracer(serviceName))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.L().Info().Str("topic", cfg.App.NotificationTopic).Msg("notification worker consuming")
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.L().Error().Err(err).Msg("could not read message")
				continue
			}
			dispatcher.HandleMessage(msg)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info().Msg("shutting down notification worker")

	cancel()
	<-done
	if err := reader.Close(); err != nil {
		logger.L().Error().Err(err).Msg("error closing kafka reader")
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		logger.L().Error().Err(err).Msg("error shutting down tracer provider")
	}
}
