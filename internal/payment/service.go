package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

type Recorder interface {
	GuardrailCheck(kind, outcome string)
}

// Receipt is returned once the system of record has accepted a payment.
type Receipt struct {
	AgentID       int64            `json:"agent_id"`
	AgentName     string           `json:"agent_name"`
	PaymentAmount float64          `json:"payment_amount"`
	DebtBefore    float64          `json:"debt_before"`
	DebtAfter     float64          `json:"debt_after"`
	FormattedDebt string           `json:"formatted_debt"`
	Validation    ValidationResult `json:"validation"`
}

var errNoDebt = internal.NewValidationError("agent has no outstanding debt", internal.ErrCodePaymentExceedsDebt)

type Service struct {
	reader    agent.Reader
	ledger    agent.Ledger
	publisher events.Publisher
	metrics   Recorder
	logger    *slog.Logger
}

func NewService(reader agent.Reader, ledger agent.Ledger, publisher events.Publisher, metrics Recorder, logger *slog.Logger) *Service {
	return &Service{
		reader:    reader,
		ledger:    ledger,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *Service) record(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.GuardrailCheck(kind, outcome)
	}
}

// Check classifies caller-supplied figures.
func (s *Service) Check(ctx context.Context, paymentAmount, agentDebt float64) ValidationResult {
	r := ValidatePaymentAmount(paymentAmount, agentDebt)
	s.record("payment", string(r.Type))
	return r
}

// Validate classifies a payment against the agent's stored debt.
func (s *Service) Validate(ctx context.Context, agentID int64, paymentAmount float64) (ValidationResult, *agent.Snapshot, error) {
	snap, err := s.reader.Snapshot(ctx, agentID)
	if err != nil {
		s.logger.InfoContext(ctx, "payment lookup failed", "agent_id", agentID, "error", err)
		return ValidationResult{}, nil, agent.AsAppError(err)
	}
	return s.Check(ctx, paymentAmount, snap.Debt()), snap, nil
}

// Record gates the payment and applies it through the ledger. The ledger
// repeats the check atomically, so a payment that passed here can still be
// refused if another one landed first.
func (s *Service) Record(ctx context.Context, agentID int64, paymentAmount float64) (*Receipt, error) {
	result, snap, err := s.Validate(ctx, agentID, paymentAmount)
	if err != nil {
		return nil, err
	}

	switch result.Type {
	case OutcomeNoPayment:
		return nil, internal.ErrAmountRequired
	case OutcomeNoDebt:
		s.reject(ctx, agentID, result, "no_debt")
		return nil, errNoDebt
	case OutcomeExceedsDebt:
		s.reject(ctx, agentID, result, "exceeds_debt")
		return nil, result.Err()
	}

	updated, err := s.ledger.ApplyPayment(ctx, agentID, result.PaymentAmount)
	if err != nil {
		if errors.Is(err, agent.ErrRejected) {
			s.reject(ctx, agentID, result, "system_of_record")
			s.logger.WarnContext(ctx, "payment refused by store", "agent_id", agentID, "payment_amount", result.PaymentAmount)
			// the snapshot we validated against is stale
			s.invalidate(ctx, agentID)
		}
		return nil, agent.AsAppError(err)
	}
	s.record("payment_record", "applied")
	s.invalidate(ctx, agentID)

	s.logger.InfoContext(ctx, "payment recorded",
		"agent_id", agentID,
		"payment_amount", result.PaymentAmount,
		"debt_after", updated.Debt())

	return &Receipt{
		AgentID:       agentID,
		AgentName:     snap.AgentName,
		PaymentAmount: result.PaymentAmount,
		DebtBefore:    snap.Debt(),
		DebtAfter:     updated.Debt(),
		FormattedDebt: money.FormatCurrency(updated.Debt()),
		Validation:    result,
	}, nil
}

func (s *Service) reject(ctx context.Context, agentID int64, r ValidationResult, reason string) {
	s.record("payment_record", "rejected")
	s.logger.InfoContext(ctx, "payment rejected", "agent_id", agentID, "reason", reason,
		"payment_amount", r.PaymentAmount, "debt_amount", r.DebtAmount)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewPaymentRejectedEvent(agentID, r.PaymentAmount, r.DebtAmount, reason)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish payment rejection", "agent_id", agentID, "error", err)
	}
}

// invalidate tells cached readers the agent's debt may have moved.
func (s *Service) invalidate(ctx context.Context, agentID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, events.NewDebtChangedEvent("payment", agentID)); err != nil {
		s.logger.WarnContext(ctx, "debt change subscribers failed", "agent_id", agentID, "error", err)
	}
}
