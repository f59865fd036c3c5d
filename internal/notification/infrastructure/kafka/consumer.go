package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitewise/foodflow/internal/notification/application"
	"github.com/bitewise/foodflow/pkg/tracing"
)

// userNotification mirrors the payment service's outbox event payload.
type userNotification struct {
	OrderID     string `json:"orderId"`
	Email       string `json:"email"`
	OrderStatus string `json:"orderStatus"`
	Amount      int64  `json:"amount"`
}

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Deduper is satisfied by idempotency.Store.
type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, n application.Notification) bool
}

// Consumer drains the notification topic. Commits are at-least-once; the
// idempotency store suppresses redelivered messages.
type Consumer struct {
	log     *slog.Logger
	reader  Reader
	idem    Deduper
	service Notifier
	tracer  trace.Tracer
}

func NewConsumer(log *slog.Logger, reader Reader, idem Deduper, service Notifier) *Consumer {
	return &Consumer{
		log:     log,
		reader:  reader,
		idem:    idem,
		service: service,
		tracer:  otel.Tracer("notification-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.log.Info("consumer stopping")
				return nil
			}
			c.log.Error("fetch message failed", "err", err)
			continue
		}
		c.handle(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	ctx, span := c.tracer.Start(tracing.ExtractKafkaHeaders(ctx, msg.Headers), "HandleUserNotification")
	defer span.End()

	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		// Deliver anyway; a duplicate notification beats a lost one.
		c.log.Error("idempotency check failed", "key", key, "err", err)
	} else if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return
	}

	var event userNotification
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Error("malformed notification event", "offset", msg.Offset, "err", err)
		return
	}

	c.service.Notify(ctx, application.Notification{
		OrderID:     event.OrderID,
		Email:       event.Email,
		OrderStatus: event.OrderStatus,
		Amount:      event.Amount,
	})
}
