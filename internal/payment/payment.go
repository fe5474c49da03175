package payment

import (
	"fmt"
	"math"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

type Outcome string

const (
	OutcomeNoDebt         Outcome = "no_debt"
	OutcomeNoPayment      Outcome = "no_payment"
	OutcomeFullPayment    Outcome = "full_payment"
	OutcomePartialPayment Outcome = "partial_payment"
	OutcomeExceedsDebt    Outcome = "exceeds_debt"
)

// ValidationResult classifies a proposed payment against the outstanding
// debt. The optional amounts are only set for the outcomes they describe.
type ValidationResult struct {
	Type          Outcome  `json:"type"`
	IsValid       bool     `json:"is_valid"`
	PaymentAmount float64  `json:"payment_amount"`
	DebtAmount    float64  `json:"debt_amount"`
	ExcessAmount  *float64 `json:"excess_amount,omitempty"`
	MaxAllowed    *float64 `json:"max_allowed,omitempty"`
	RemainingDebt *float64 `json:"remaining_debt,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty"`
}

func ptr(v float64) *float64 { return &v }

// ValidatePaymentAmount applies the payment rules in order; the first
// match wins. Non-numeric amounts count as zero.
func ValidatePaymentAmount(paymentAmount, agentDebt float64) ValidationResult {
	paymentAmount = money.Coerce(paymentAmount)
	agentDebt = money.Coerce(agentDebt)

	r := ValidationResult{PaymentAmount: paymentAmount, DebtAmount: agentDebt}
	switch {
	case agentDebt <= 0:
		r.Type, r.IsValid = OutcomeNoDebt, true
	case paymentAmount <= 0:
		r.Type, r.IsValid = OutcomeNoPayment, true
	case paymentAmount > agentDebt:
		r.Type = OutcomeExceedsDebt
		r.ExcessAmount = ptr(paymentAmount - agentDebt)
		r.MaxAllowed = ptr(agentDebt)
	case paymentAmount == agentDebt:
		r.Type, r.IsValid = OutcomeFullPayment, true
		r.RemainingDebt = ptr(0)
		r.Percentage = ptr(100)
	default:
		r.Type, r.IsValid = OutcomePartialPayment, true
		r.RemainingDebt = ptr(agentDebt - paymentAmount)
		r.Percentage = ptr(math.Round(paymentAmount/agentDebt*1000) / 10)
	}
	return r
}

// Err is the submit gate: only a payment over the debt is refused here.
// Whether an amount is required at all is decided by the caller.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return internal.NewValidationError(
		fmt.Sprintf("payment %s exceeds the outstanding debt %s by %s",
			money.FormatCurrency(r.PaymentAmount), money.FormatCurrency(r.DebtAmount), money.FormatCurrency(*r.ExcessAmount)),
		internal.ErrCodePaymentExceedsDebt,
	).WithDetails(map[string]float64{
		"payment_amount": r.PaymentAmount,
		"debt_amount":    r.DebtAmount,
		"excess_amount":  *r.ExcessAmount,
		"max_allowed":    *r.MaxAllowed,
	})
}
