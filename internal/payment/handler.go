package payment

import (
	"context"
	"net/http"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/common/validation"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
)

type ServiceAPI interface {
	Check(ctx context.Context, paymentAmount, agentDebt float64) ValidationResult
	Validate(ctx context.Context, agentID int64, paymentAmount float64) (ValidationResult, *agent.Snapshot, error)
	Record(ctx context.Context, agentID int64, paymentAmount float64) (*Receipt, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	coercion money.Coercion
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, coercion money.Coercion) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		coercion:    coercion,
	}
}

// CheckPayment handles POST /guardrails/payment.
func (h *Handler) CheckPayment(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}
	amount, appErr := validation.Amount("payment_amount", req.PaymentAmount, h.coercion)
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}
	debt, appErr := validation.Amount("agent_debt", req.AgentDebt, h.coercion)
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.Check(r.Context(), amount, debt))
}

func (h *Handler) agentPayment(w http.ResponseWriter, r *http.Request) (int64, float64, bool) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, 0, false
	}
	var req AgentPaymentRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, 0, false
	}
	amount, appErr := validation.Amount("payment_amount", req.PaymentAmount, h.coercion)
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, 0, false
	}
	return id, amount, true
}

// ValidateAgentPayment handles POST /agents/{id}/payments/validate. The
// verdict is returned with 200 whatever it is.
func (h *Handler) ValidateAgentPayment(w http.ResponseWriter, r *http.Request) {
	id, amount, ok := h.agentPayment(w, r)
	if !ok {
		return
	}

	result, snap, err := h.Service.Validate(r.Context(), id, amount)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AgentValidationResponse{
		AgentID:       snap.AgentID,
		AgentName:     snap.AgentName,
		FormattedDebt: money.FormatCurrency(snap.Debt()),
		Validation:    result,
	})
}

// RecordPayment handles POST /agents/{id}/payments.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, amount, ok := h.agentPayment(w, r)
	if !ok {
		return
	}

	receipt, err := h.Service.Record(r.Context(), id, amount)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, receipt)
}
