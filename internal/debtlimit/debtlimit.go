package debtlimit

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
)

type Status string

const (
	StatusExceeded  Status = "Exceeded"
	StatusNearLimit Status = "NearLimit"
	StatusWarning   Status = "Warning"
	StatusNormal    Status = "Normal"
	StatusLow       Status = "Low"
)

// Tier boundaries are exclusive: a ratio of exactly 0.8 is Warning, not
// NearLimit.
const (
	NearLimitRatio = 0.8
	WarningRatio   = 0.6
	NormalRatio    = 0.3
)

// Result is the assessment of an outstanding debt against a ceiling.
// When IsValid is false no ceiling is configured and every other field is
// meaningless.
type Result struct {
	IsValid        bool
	DebtAmount     float64
	MaxDebt        float64
	Ratio          float64
	ExceededAmount float64
	RemainingLimit float64
	IsExceeded     bool
	IsNearLimit    bool
	IsWarningLevel bool
	Percentage     string
	Status         Status
}

// CheckDebtLimit evaluates debtAmount against maxDebt. A ceiling that is
// zero, negative or not a number means no limit is configured.
func CheckDebtLimit(debtAmount, maxDebt float64) Result {
	if math.IsNaN(maxDebt) || math.IsInf(maxDebt, 0) || maxDebt <= 0 {
		return Result{IsValid: false}
	}
	debtAmount = money.Coerce(debtAmount)

	ratio := debtAmount / maxDebt
	r := Result{
		IsValid:        true,
		DebtAmount:     debtAmount,
		MaxDebt:        maxDebt,
		Ratio:          ratio,
		ExceededAmount: math.Max(0, debtAmount-maxDebt),
		RemainingLimit: math.Max(0, maxDebt-debtAmount),
		IsExceeded:     debtAmount > maxDebt,
		IsNearLimit:    ratio > NearLimitRatio,
		IsWarningLevel: ratio > WarningRatio,
		Percentage:     formatPercentage(ratio),
	}

	switch {
	case r.IsExceeded:
		r.Status = StatusExceeded
	case ratio > NearLimitRatio:
		r.Status = StatusNearLimit
	case ratio > WarningRatio:
		r.Status = StatusWarning
	case ratio > NormalRatio:
		r.Status = StatusNormal
	default:
		r.Status = StatusLow
	}
	return r
}

// formatPercentage renders a ratio as a percentage with one decimal, ties
// rounded up like the payment classifier.
func formatPercentage(ratio float64) string {
	return strconv.FormatFloat(math.Round(ratio*1000)/10, 'f', 1, 64)
}

// Err is the submit gate: nil unless the debt is over the ceiling.
func (r Result) Err() error {
	if !r.IsValid || !r.IsExceeded {
		return nil
	}
	return internal.NewValidationError(
		fmt.Sprintf("debt %s exceeds the limit of %s by %s",
			money.FormatCurrency(r.DebtAmount), money.FormatCurrency(r.MaxDebt), money.FormatCurrency(r.ExceededAmount)),
		internal.ErrCodeDebtLimitExceeded,
	).WithDetails(map[string]float64{
		"current_debt":  r.DebtAmount,
		"max_debt":      r.MaxDebt,
		"excess_amount": r.ExceededAmount,
	})
}

func (r Result) MarshalJSON() ([]byte, error) {
	if !r.IsValid {
		return []byte(`{"is_valid":false}`), nil
	}
	type wire struct {
		IsValid        bool    `json:"is_valid"`
		DebtAmount     float64 `json:"debt_amount"`
		MaxDebt        float64 `json:"max_debt"`
		Ratio          float64 `json:"ratio"`
		ExceededAmount float64 `json:"exceeded_amount"`
		RemainingLimit float64 `json:"remaining_limit"`
		IsExceeded     bool    `json:"is_exceeded"`
		IsNearLimit    bool    `json:"is_near_limit"`
		IsWarningLevel bool    `json:"is_warning_level"`
		Percentage     string  `json:"percentage"`
		Status         Status  `json:"status"`
	}
	return json.Marshal(wire(r))
}
