package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/platform/kafka"
	"github.com/thuexe/service-rental/internal/proto/events"
)

// PaymentRecorder applies settled payments to contracts.
type PaymentRecorder interface {
	RecordDepositPaid(ctx context.Context, contractID uuid.UUID, amount decimal.Decimal) error
	SettleFinalPayment(ctx context.Context, contractID uuid.UUID) error
}

// PaymentEventConsumer listens to payment events and moves contracts forward.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
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
	case events.PaymentDepositPaid:
		return c.handleDepositPaid(ctx, cloudEvent)
	case events.PaymentFinalSettled:
		return c.handleFinalSettled(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleDepositPaid(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.DepositPaidEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.ContractID == uuid.Nil {
		c.logger.Error("failed to parse DepositPaidEvent data", zap.Error(err))
		return nil
	}

	c.logger.Info("processing deposit paid event",
		zap.String("contract_id", evt.ContractID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	return c.apply(evt.ContractID, "deposit recorded",
		c.service.RecordDepositPaid(ctx, evt.ContractID, evt.Amount))
}

func (c *PaymentEventConsumer) handleFinalSettled(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.FinalSettledEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.ContractID == uuid.Nil {
		c.logger.Error("failed to parse FinalSettledEvent data", zap.Error(err))
		return nil
	}

	c.logger.Info("processing final settlement event",
		zap.String("contract_id", evt.ContractID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	return c.apply(evt.ContractID, "contract settled", c.service.SettleFinalPayment(ctx, evt.ContractID))
}

// apply logs the outcome of a payment. Only retryable failures are handed back to the
// consumer; a payment for a missing or closed contract will never succeed.
func (c *PaymentEventConsumer) apply(contractID uuid.UUID, done string, err error) error {
	if err == nil {
		c.logger.Info(done, zap.String("contract_id", contractID.String()))
		return nil
	}
	c.logger.Error("failed to apply payment event",
		zap.String("contract_id", contractID.String()),
		zap.Error(err),
	)
	if _, known := domain.CodeOf(err); known && !domain.IsRetryable(err) {
		return nil
	}
	return err
}
