package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "tracechain/contexts/provenance/trace-service/application"
	"tracechain/contexts/provenance/trace-service/ports"
)

// OutboxRelay publishes pending provenance outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("trace outbox list failed",
			"event", "trace_outbox_list_failed",
			"module", "provenance/trace-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("trace outbox decode failed",
				"event", "trace_outbox_decode_failed",
				"module", "provenance/trace-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := r.Topic
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("trace outbox publish failed",
				"event", "trace_outbox_publish_failed",
				"module", "provenance/trace-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", row.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
		logger.Info("trace outbox row published",
			"event", "trace_outbox_published",
			"module", "provenance/trace-service",
			"layer", "worker",
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}
