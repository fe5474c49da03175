package payment

// CheckRequest carries figures typed into the payment form. A missing
// agent_debt means the agent has no debt on record.
type CheckRequest struct {
	PaymentAmount interface{} `json:"payment_amount"`
	AgentDebt     interface{} `json:"agent_debt"`
}

type AgentPaymentRequest struct {
	PaymentAmount interface{} `json:"payment_amount"`
}

type AgentValidationResponse struct {
	AgentID       int64            `json:"agent_id"`
	AgentName     string           `json:"agent_name"`
	FormattedDebt string           `json:"formatted_debt"`
	Validation    ValidationResult `json:"validation"`
}
