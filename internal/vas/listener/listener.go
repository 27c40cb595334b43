package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/auth"
	"github.com/kurniadi/wms-vas-service/internal/broker"
	"github.com/kurniadi/wms-vas-service/internal/vas"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
)

// VASListener consumes amendment/void requests published by upstream billing
// workflows and drives the same usecases the HTTP surface does.
type VASListener struct {
	consumer *broker.KafkaConsumer
	uc       vas.UseCase
	logger   *zap.Logger
}

func NewVASListener(consumer *broker.KafkaConsumer, uc vas.UseCase, logger *zap.Logger) *VASListener {
	return &VASListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *VASListener) Start(ctx context.Context) {
	l.logger.Info("Starting VAS Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping VAS Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

const (
	EventTypeAmendmentRequested = "vas.line_amendment.requested"
	EventTypeVoidRequested      = "vas.void.requested"
)

type RequestEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   RequestPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type RequestPayload struct {
	TransactionID string   `json:"transaction_id"`
	LineID        string   `json:"line_id"`
	NewQuantity   *float64 `json:"new_quantity"`
	NewWeight     *float64 `json:"new_weight"`
	Reason        string   `json:"reason"`
	UserID        string   `json:"user_id"`
}

func (l *VASListener) processMessage(ctx context.Context, value []byte) {
	var event RequestEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	reqCtx := auth.WithUserID(ctx, event.Payload.UserID)

	switch event.EventType {
	case EventTypeAmendmentRequested:
		_, err := l.uc.AmendLine(reqCtx, &dto.AmendLineInput{
			TransactionID: event.Payload.TransactionID,
			LineID:        event.Payload.LineID,
			NewQuantity:   event.Payload.NewQuantity,
			NewWeight:     event.Payload.NewWeight,
			Reason:        event.Payload.Reason,
		})
		if err != nil {
			l.logger.Error("Failed to amend line from event",
				zap.String("event_id", event.EventID),
				zap.String("transaction_id", event.Payload.TransactionID),
				zap.String("line_id", event.Payload.LineID),
				zap.Error(err),
			)
		}

	case EventTypeVoidRequested:
		_, err := l.uc.VoidTransaction(reqCtx, &dto.VoidTransactionInput{
			TransactionID: event.Payload.TransactionID,
			Reason:        event.Payload.Reason,
		})
		if err != nil {
			l.logger.Error("Failed to void transaction from event",
				zap.String("event_id", event.EventID),
				zap.String("transaction_id", event.Payload.TransactionID),
				zap.Error(err),
			)
		}
	}
}
