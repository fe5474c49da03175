package debtlimit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

type Recorder interface {
	GuardrailCheck(kind, outcome string)
}

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

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish guardrail event", "event_type", event.EventType(), "error", err)
	}
}

func outcome(r Result) string {
	if !r.IsValid {
		return "not_configured"
	}
	return string(r.Status)
}

// Check evaluates caller-supplied figures.
func (s *Service) Check(ctx context.Context, debtAmount, maxDebt float64) Result {
	r := CheckDebtLimit(debtAmount, maxDebt)
	s.record("debt_limit", outcome(r))
	return r
}

// ForAgent evaluates an agent's current debt against its type's ceiling.
func (s *Service) ForAgent(ctx context.Context, agentID int64) (Result, *agent.Snapshot, error) {
	snap, err := s.reader.Snapshot(ctx, agentID)
	if err != nil {
		s.logger.InfoContext(ctx, "debt limit lookup failed", "agent_id", agentID, "error", err)
		return Result{}, nil, agent.AsAppError(err)
	}

	r := CheckDebtLimit(snap.Debt(), snap.Ceiling())
	s.record("debt_limit", outcome(r))
	if r.IsExceeded {
		s.publish(ctx, events.NewDebtLimitExceededEvent(agentID, r.DebtAmount, r.MaxDebt, r.ExceededAmount, "agent"))
	}
	return r, snap, nil
}

// AssessExport projects the debt an export receipt would leave behind.
func (s *Service) AssessExport(ctx context.Context, agentID int64, draft ExportDraft) (ExportAssessment, error) {
	snap, err := s.reader.Snapshot(ctx, agentID)
	if err != nil {
		return ExportAssessment{}, agent.AsAppError(err)
	}

	a := EvaluateExport(draft, snap.Debt(), snap.Ceiling())
	if a.IsValid {
		s.record("export", "accepted")
	} else {
		s.record("export", "rejected")
		s.logger.InfoContext(ctx, "export rejected by guardrail",
			"agent_id", agentID,
			"new_total_debt", a.NewTotalDebt,
			"max_debt", a.MaxDebt,
			"errors", a.Errors)
	}
	if a.Limit.IsExceeded {
		s.publish(ctx, events.NewDebtLimitExceededEvent(agentID, a.NewTotalDebt, a.Limit.MaxDebt, a.Limit.ExceededAmount, "export"))
	}
	return a, nil
}

// RecordExport gates an export receipt and books its unpaid part as debt.
// The ledger repeats the ceiling check atomically, so two exports that each
// fit cannot land together past the limit.
func (s *Service) RecordExport(ctx context.Context, agentID int64, draft ExportDraft) (*ExportRecord, error) {
	snap, err := s.reader.Snapshot(ctx, agentID)
	if err != nil {
		return nil, agent.AsAppError(err)
	}

	a := EvaluateExport(draft, snap.Debt(), snap.Ceiling())
	if err := a.Err(); err != nil {
		s.record("export_record", "rejected")
		if a.Limit.IsExceeded {
			s.publish(ctx, events.NewDebtLimitExceededEvent(agentID, a.NewTotalDebt, a.Limit.MaxDebt, a.Limit.ExceededAmount, "export"))
		}
		return nil, err
	}

	updated, err := s.ledger.ApplyExport(ctx, agentID, a.RemainingAmount)
	if err != nil {
		if errors.Is(err, agent.ErrRejected) {
			s.record("export_record", "rejected")
			s.logger.WarnContext(ctx, "export refused by store", "agent_id", agentID, "remaining_amount", a.RemainingAmount)
			s.debtChanged(ctx, "export", agentID)
		}
		return nil, agent.AsAppError(err)
	}
	s.record("export_record", "applied")
	s.debtChanged(ctx, "export", agentID)

	s.logger.InfoContext(ctx, "export recorded",
		"agent_id", agentID,
		"remaining_amount", a.RemainingAmount,
		"debt_after", updated.Debt())

	return &ExportRecord{
		AgentID:       agentID,
		AgentName:     snap.AgentName,
		DebtBefore:    snap.Debt(),
		DebtAfter:     updated.Debt(),
		FormattedDebt: money.FormatCurrency(updated.Debt()),
		Assessment:    a,
	}, nil
}

// debtChanged tells cached readers the listed agents' debt may have moved.
func (s *Service) debtChanged(ctx context.Context, reason string, agentIDs ...int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, events.NewDebtChangedEvent(reason, agentIDs...)); err != nil {
		s.logger.WarnContext(ctx, "debt change subscribers failed", "agent_ids", agentIDs, "error", err)
	}
}

func (s *Service) ReviewCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) (CeilingReview, error) {
	agents, err := s.reader.ListByAgentType(ctx, agentTypeID)
	if err != nil {
		return CeilingReview{}, agent.AsAppError(err)
	}
	review := CheckCeilingChange(maximumDebt, agents)
	if review.IsValid {
		s.record("ceiling", "accepted")
	} else {
		s.record("ceiling", "rejected")
	}
	return review, nil
}

// ChangeCeiling reviews and then applies a new ceiling. The store repeats
// the check atomically; losing that race is reported like any other
// rejection.
func (s *Service) ChangeCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) (CeilingReview, error) {
	agents, err := s.reader.ListByAgentType(ctx, agentTypeID)
	if err != nil {
		return CeilingReview{}, agent.AsAppError(err)
	}

	review := CheckCeilingChange(maximumDebt, agents)
	if err := review.Err(); err != nil {
		s.record("ceiling", "rejected")
		return review, err
	}

	if err := s.ledger.ChangeCeiling(ctx, agentTypeID, maximumDebt); err != nil {
		s.logger.WarnContext(ctx, "ceiling change refused by store", "agent_type_id", agentTypeID, "maximum_debt", maximumDebt, "error", err)
		s.record("ceiling", "rejected")
		return review, agent.AsAppError(err)
	}
	s.record("ceiling", "applied")

	ids := make([]int64, len(agents))
	for i, a := range agents {
		ids[i] = a.AgentID
	}
	s.debtChanged(ctx, "ceiling_changed", ids...)

	s.logger.InfoContext(ctx, "agent type ceiling changed", "agent_type_id", agentTypeID, "maximum_debt", maximumDebt)
	return review, nil
}
