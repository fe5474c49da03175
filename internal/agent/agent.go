package agent

import (
	"context"
	"errors"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

var (
	ErrNotFound     = errors.New("agent not found")
	ErrTypeNotFound = errors.New("agent type not found")
	// ErrRejected means the store refused a change that would break a
	// ceiling or overdraw a debt, typically because a concurrent change won.
	ErrRejected = errors.New("rejected by system of record")
)

// Snapshot is what the guardrails read about an agent: its outstanding
// debt and the ceiling of its agent type. Either may be absent.
type Snapshot struct {
	AgentID     int64    `json:"agent_id" db:"agent_id"`
	AgentName   string   `json:"agent_name" db:"agent_name"`
	AgentTypeID int64    `json:"agent_type_id" db:"agent_type_id"`
	DebtMoney   *float64 `json:"debt_money" db:"debt_money"`
	MaximumDebt *float64 `json:"maximum_debt" db:"maximum_debt"`
}

func (s Snapshot) Debt() float64 {
	return money.Value(s.DebtMoney)
}

// Ceiling is zero when the agent type has no limit configured.
func (s Snapshot) Ceiling() float64 {
	return money.Value(s.MaximumDebt)
}

type Reader interface {
	Snapshot(ctx context.Context, agentID int64) (*Snapshot, error)
	ListByAgentType(ctx context.Context, agentTypeID int64) ([]Snapshot, error)
}

// Ledger applies confirmed debt changes. Implementations must enforce the
// same rules as the guardrails atomically.
type Ledger interface {
	ApplyPayment(ctx context.Context, agentID int64, amount float64) (*Snapshot, error)
	// ApplyExport adds the unpaid part of an export to the agent's debt,
	// refusing it when the result would pass the type's ceiling.
	ApplyExport(ctx context.Context, agentID int64, amount float64) (*Snapshot, error)
	ChangeCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) error
}
