package debtlimit

import (
	"fmt"
	"math"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

type CeilingViolation struct {
	AgentID      int64   `json:"agent_id"`
	AgentName    string  `json:"agent_name"`
	DebtMoney    float64 `json:"debt_money"`
	ExcessAmount float64 `json:"excess_amount"`
}

// CeilingReview is the outcome of proposing a new maximum debt for an
// agent type.
type CeilingReview struct {
	IsValid     bool               `json:"is_valid"`
	MaximumDebt float64            `json:"maximum_debt"`
	AgentCount  int                `json:"agent_count"`
	Violations  []CeilingViolation `json:"violations,omitempty"`
}

// CheckCeilingChange accepts a new ceiling only if it is positive and no
// agent of the type already owes more than it.
func CheckCeilingChange(maximumDebt float64, agents []agent.Snapshot) CeilingReview {
	review := CeilingReview{MaximumDebt: maximumDebt, AgentCount: len(agents)}
	if math.IsNaN(maximumDebt) || math.IsInf(maximumDebt, 0) || maximumDebt <= 0 {
		return review
	}
	for _, a := range agents {
		if debt := a.Debt(); debt > maximumDebt {
			review.Violations = append(review.Violations, CeilingViolation{
				AgentID:      a.AgentID,
				AgentName:    a.AgentName,
				DebtMoney:    debt,
				ExcessAmount: debt - maximumDebt,
			})
		}
	}
	review.IsValid = len(review.Violations) == 0
	return review
}

func (c CeilingReview) Err() error {
	if c.IsValid {
		return nil
	}
	if len(c.Violations) == 0 {
		return internal.NewValidationFieldError("maximum_debt", "maximum debt must be greater than zero", internal.ErrCodeInvalidCeiling)
	}
	first := c.Violations[0]
	return internal.NewValidationError(
		fmt.Sprintf("%d agent(s) owe more than %s; %s owes %s",
			len(c.Violations), money.FormatCurrency(c.MaximumDebt), first.AgentName, money.FormatCurrency(first.DebtMoney)),
		internal.ErrCodeCeilingBelowDebt,
	).WithDetails(map[string]interface{}{
		"maximum_debt": c.MaximumDebt,
		"violations":   c.Violations,
	})
}
