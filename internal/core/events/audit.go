package events

import (
	"context"
	"log/slog"
)

// AuditSubscriber writes guardrail and access events to the log.
type AuditSubscriber struct {
	logger *slog.Logger
}

func NewAuditSubscriber(logger *slog.Logger) *AuditSubscriber {
	return &AuditSubscriber{logger: logger}
}

func (a *AuditSubscriber) Register(bus *EventBus) {
	for _, t := range []string{EventTypeDebtLimitExceeded, EventTypePaymentRejected, EventTypeAccessDenied, EventTypeDebtChanged} {
		bus.Subscribe(t, a.Handle)
	}
}

func (a *AuditSubscriber) Handle(ctx context.Context, event Event) error {
	level := slog.LevelInfo
	if event.EventType() == EventTypeAccessDenied {
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, "audit",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload())
	return nil
}
