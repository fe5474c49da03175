package debtlimit

// Amount fields accept JSON numbers or numeric strings.

type CheckRequest struct {
	DebtAmount interface{} `json:"debt_amount"`
	MaxDebt    interface{} `json:"max_debt"`
}

type ExportRequest struct {
	Quantity   interface{} `json:"quantity"`
	UnitPrice  interface{} `json:"unit_price"`
	PaidAmount interface{} `json:"paid_amount"`
}

type CeilingRequest struct {
	MaximumDebt interface{} `json:"maximum_debt"`
}

type AgentLimitResponse struct {
	AgentID       int64  `json:"agent_id"`
	AgentName     string `json:"agent_name"`
	Limit         Result `json:"limit"`
	FormattedDebt string `json:"formatted_debt"`
}
