package debtlimit

import (
	"fmt"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

// ExportDraft is an export receipt being filled in. Whatever is not paid
// up front becomes new debt for the agent.
type ExportDraft struct {
	Quantity   float64
	UnitPrice  float64
	PaidAmount float64
}

type ExportAssessment struct {
	IsValid         bool     `json:"is_valid"`
	TotalAmount     float64  `json:"total_amount"`
	PaidAmount      float64  `json:"paid_amount"`
	RemainingAmount float64  `json:"remaining_amount"`
	CurrentDebt     float64  `json:"current_debt"`
	NewTotalDebt    float64  `json:"new_total_debt"`
	MaxDebt         float64  `json:"max_debt,omitempty"`
	Limit           Result   `json:"limit"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`

	code internal.ErrorCode
}

// ExportRecord is returned once the store has booked an export.
type ExportRecord struct {
	AgentID       int64            `json:"agent_id"`
	AgentName     string           `json:"agent_name"`
	DebtBefore    float64          `json:"debt_before"`
	DebtAfter     float64          `json:"debt_after"`
	FormattedDebt string           `json:"formatted_debt"`
	Assessment    ExportAssessment `json:"assessment"`
}

// EvaluateExport projects the agent's debt after the export and checks it
// against the ceiling. Warnings never block; errors do.
func EvaluateExport(d ExportDraft, currentDebt, maxDebt float64) ExportAssessment {
	qty := money.Coerce(d.Quantity)
	price := money.Coerce(d.UnitPrice)
	paid := money.Coerce(d.PaidAmount)
	currentDebt = money.Coerce(currentDebt)

	total := qty * price
	remaining := total - paid
	a := ExportAssessment{
		TotalAmount:     total,
		PaidAmount:      paid,
		RemainingAmount: remaining,
		CurrentDebt:     currentDebt,
		NewTotalDebt:    currentDebt + remaining,
		Limit:           CheckDebtLimit(currentDebt+remaining, maxDebt),
	}
	if a.Limit.IsValid {
		a.MaxDebt = maxDebt
	}

	if qty < 0 || price < 0 || paid < 0 {
		a.fail(internal.ErrCodeInvalidAmount, "quantity, unit price and paid amount must not be negative")
	}
	if paid > total {
		a.fail(internal.ErrCodePaidExceedsTotal,
			fmt.Sprintf("paid amount %s exceeds the receipt total %s", money.FormatCurrency(paid), money.FormatCurrency(total)))
	}
	if a.Limit.IsExceeded {
		a.fail(internal.ErrCodeDebtLimitExceeded,
			fmt.Sprintf("new total debt %s exceeds the limit of %s", money.FormatCurrency(a.NewTotalDebt), money.FormatCurrency(maxDebt)))
	}

	if remaining > 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%s will be added to the agent's debt", money.FormatCurrency(remaining)))
	}
	if a.Limit.IsValid && !a.Limit.IsExceeded && a.Limit.IsNearLimit {
		a.Warnings = append(a.Warnings, fmt.Sprintf("new total debt reaches %s%% of the limit", a.Limit.Percentage))
	}

	a.IsValid = len(a.Errors) == 0
	return a
}

func (a *ExportAssessment) fail(code internal.ErrorCode, msg string) {
	if a.code == "" {
		a.code = code
	}
	a.Errors = append(a.Errors, msg)
}

// Err is the submit gate for the export.
func (a ExportAssessment) Err() error {
	if a.IsValid {
		return nil
	}
	return internal.NewValidationError(a.Errors[0], a.code).WithDetails(map[string]interface{}{
		"errors":         a.Errors,
		"total_amount":   a.TotalAmount,
		"paid_amount":    a.PaidAmount,
		"current_debt":   a.CurrentDebt,
		"new_total_debt": a.NewTotalDebt,
		"max_debt":       a.MaxDebt,
	})
}
