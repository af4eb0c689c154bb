package inbound

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/shared/event"
)

// RegisterMQConsumer starts one supervised consumer per enabled subscription.
// An empty modules.notification.consumer_names enables all of them.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) error {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.concurrency")
	maxAttempts := cfg.GetInt("modules.notification.max_attempts")

	var consumers = []struct {
		name    string // consumer group, subscription, channel or durable name
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.UserRegisteredDestinationConsumerNotification,
			topic:   event.UserRegisteredDestination,
			handler: mqHandler.UserRegisteredNotification,
		},
	}

	for _, c := range consumers {
		if len(enabled) > 0 && !slices.Contains(enabled, c.name) {
			slog.InfoContext(ctx, "consumer disabled", "consumer", c.name)
			continue
		}

		opts := []messaging.ConsumeOption{messaging.WithGroup(c.name)}
		if concurrency > 0 {
			opts = append(opts, messaging.WithConcurrency(concurrency), messaging.WithMaxInFlight(concurrency))
		}
		if maxAttempts > 0 {
			opts = append(opts, messaging.WithMaxAttempts(maxAttempts))
		}

		if err := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(pCtx, "running consumer", "consumer", c.name, "topic", c.topic)
			err := consumer.Consume(pCtx, c.topic, c.handler, opts...)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}); err != nil {
			return err
		}
	}

	return nil
}
