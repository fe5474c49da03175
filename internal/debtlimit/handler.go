package debtlimit

import (
	"context"
	"net/http"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/common/validation"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
)

type ServiceAPI interface {
	Check(ctx context.Context, debtAmount, maxDebt float64) Result
	ForAgent(ctx context.Context, agentID int64) (Result, *agent.Snapshot, error)
	AssessExport(ctx context.Context, agentID int64, draft ExportDraft) (ExportAssessment, error)
	RecordExport(ctx context.Context, agentID int64, draft ExportDraft) (*ExportRecord, error)
	ReviewCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) (CeilingReview, error)
	ChangeCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) (CeilingReview, error)
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

// CheckLimit handles POST /guardrails/debt-limit.
func (h *Handler) CheckLimit(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}
	debt, appErr := validation.Amount("debt_amount", req.DebtAmount, h.coercion)
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}
	maxDebt, appErr := validation.Amount("max_debt", req.MaxDebt, h.coercion)
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.Check(r.Context(), debt, maxDebt))
}

// AgentLimit handles GET /agents/{id}/debt-limit.
func (h *Handler) AgentLimit(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	result, snap, err := h.Service.ForAgent(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AgentLimitResponse{
		AgentID:       snap.AgentID,
		AgentName:     snap.AgentName,
		Limit:         result,
		FormattedDebt: money.FormatCurrency(snap.Debt()),
	})
}

func (h *Handler) exportInput(w http.ResponseWriter, r *http.Request) (int64, ExportDraft, bool) {
	var draft ExportDraft
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, draft, false
	}

	var req ExportRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, draft, false
	}

	for _, f := range []struct {
		name string
		raw  interface{}
		dst  *float64
	}{
		{"quantity", req.Quantity, &draft.Quantity},
		{"unit_price", req.UnitPrice, &draft.UnitPrice},
		{"paid_amount", req.PaidAmount, &draft.PaidAmount},
	} {
		v, appErr := validation.Amount(f.name, f.raw, h.coercion)
		if appErr != nil {
			h.WriteAppError(w, r, appErr)
			return 0, draft, false
		}
		*f.dst = v
	}
	return id, draft, true
}

// ValidateExport handles POST /agents/{id}/exports/validate. A blocked
// export is still a 200: the assessment carries the errors for the form.
func (h *Handler) ValidateExport(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.exportInput(w, r)
	if !ok {
		return
	}
	assessment, err := h.Service.AssessExport(r.Context(), id, draft)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assessment)
}

// RecordExport handles POST /agents/{id}/exports.
func (h *Handler) RecordExport(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.exportInput(w, r)
	if !ok {
		return
	}
	record, err := h.Service.RecordExport(r.Context(), id, draft)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) ceilingInput(w http.ResponseWriter, r *http.Request) (int64, float64, bool) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, 0, false
	}
	var req CeilingRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, 0, false
	}
	maxDebt, appErr := validation.Amount("maximum_debt", req.MaximumDebt, h.coercion)
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return 0, 0, false
	}
	return id, maxDebt, true
}

// ReviewCeiling handles POST /agent-types/{id}/maximum-debt/validate.
func (h *Handler) ReviewCeiling(w http.ResponseWriter, r *http.Request) {
	id, maxDebt, ok := h.ceilingInput(w, r)
	if !ok {
		return
	}
	review, err := h.Service.ReviewCeiling(r.Context(), id, maxDebt)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, review)
}

// ChangeCeiling handles PUT /agent-types/{id}/maximum-debt.
func (h *Handler) ChangeCeiling(w http.ResponseWriter, r *http.Request) {
	id, maxDebt, ok := h.ceilingInput(w, r)
	if !ok {
		return
	}
	review, err := h.Service.ChangeCeiling(r.Context(), id, maxDebt)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, review)
}
