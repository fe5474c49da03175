package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDebtLimitExceeded = "guardrail.debt_limit_exceeded"
	EventTypePaymentRejected   = "guardrail.payment_rejected"
	EventTypeAccessDenied      = "access.denied"
	EventTypeDebtChanged       = "agent.debt_changed"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type DebtLimitExceededEvent struct {
	BaseEvent
	AgentID      int64   `json:"agent_id"`
	CurrentDebt  float64 `json:"current_debt"`
	MaxDebt      float64 `json:"max_debt"`
	ExcessAmount float64 `json:"excess_amount"`
	Source       string  `json:"source"`
}

func NewDebtLimitExceededEvent(agentID int64, currentDebt, maxDebt, excess float64, source string) *DebtLimitExceededEvent {
	return &DebtLimitExceededEvent{
		BaseEvent: newBase(EventTypeDebtLimitExceeded, map[string]interface{}{
			"agent_id":      agentID,
			"current_debt":  currentDebt,
			"max_debt":      maxDebt,
			"excess_amount": excess,
			"source":        source,
		}),
		AgentID:      agentID,
		CurrentDebt:  currentDebt,
		MaxDebt:      maxDebt,
		ExcessAmount: excess,
		Source:       source,
	}
}

type PaymentRejectedEvent struct {
	BaseEvent
	AgentID       int64   `json:"agent_id"`
	PaymentAmount float64 `json:"payment_amount"`
	DebtAmount    float64 `json:"debt_amount"`
	Reason        string  `json:"reason"`
}

func NewPaymentRejectedEvent(agentID int64, paymentAmount, debtAmount float64, reason string) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseEvent: newBase(EventTypePaymentRejected, map[string]interface{}{
			"agent_id":       agentID,
			"payment_amount": paymentAmount,
			"debt_amount":    debtAmount,
			"reason":         reason,
		}),
		AgentID:       agentID,
		PaymentAmount: paymentAmount,
		DebtAmount:    debtAmount,
		Reason:        reason,
	}
}

type AccessDeniedEvent struct {
	BaseEvent
	Subject  string `json:"subject"`
	Role     string `json:"role"`
	Path     string `json:"path"`
	Redirect string `json:"redirect"`
}

func NewAccessDeniedEvent(subject, role, path, redirect string) *AccessDeniedEvent {
	return &AccessDeniedEvent{
		BaseEvent: newBase(EventTypeAccessDenied, map[string]interface{}{
			"subject":  subject,
			"role":     role,
			"path":     path,
			"redirect": redirect,
		}),
		Subject:  subject,
		Role:     role,
		Path:     path,
		Redirect: redirect,
	}
}

// DebtChangedEvent is published after the system of record confirms a
// change to the debt or ceiling of the listed agents.
type DebtChangedEvent struct {
	BaseEvent
	AgentIDs []int64 `json:"agent_ids"`
	Reason   string  `json:"reason"`
}

func NewDebtChangedEvent(reason string, agentIDs ...int64) *DebtChangedEvent {
	return &DebtChangedEvent{
		BaseEvent: newBase(EventTypeDebtChanged, map[string]interface{}{
			"agent_ids": agentIDs,
			"reason":    reason,
		}),
		AgentIDs: agentIDs,
		Reason:   reason,
	}
}
