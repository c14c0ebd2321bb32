package events

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bookora/service-marketplace/internal/application"
	"github.com/bookora/service-marketplace/pkg/domain"
	"github.com/bookora/service-marketplace/pkg/kafka"
)

// PaymentEventConsumer listens to payment gateway events and applies them to
// booking payment status. Payment events never advance booking status.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, application.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case application.EventPaymentCaptured, application.EventPaymentFailed, application.EventRefundProcessed:
		return c.handlePaymentEvent(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentEvent(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt application.PaymentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment event data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	err := c.service.ApplyPaymentEvent(ctx, cloudEvent.Type, evt.BookingID, evt.PaymentRef, evt.Amount)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			// The booking may belong to another deployment sharing the topic.
			c.logger.Warn("payment event for unknown booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("type", cloudEvent.Type),
			)
			return nil
		}
		c.logger.Error("failed to apply payment event",
			zap.String("booking_id", evt.BookingID.String()),
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("payment event applied",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("type", cloudEvent.Type),
	)
	return nil
}
