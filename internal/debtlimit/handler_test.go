package debtlimit_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/debtlimit"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
)

func newLimitRouter(h *debtlimit.Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/guardrails/debt-limit", h.CheckLimit)
	r.Get("/agents/{id}/debt-limit", h.AgentLimit)
	r.Post("/agents/{id}/exports/validate", h.ValidateExport)
	r.Post("/agents/{id}/exports", h.RecordExport)
	r.Post("/agent-types/{id}/maximum-debt/validate", h.ReviewCeiling)
	r.Put("/agent-types/{id}/maximum-debt", h.ChangeCeiling)
	return r
}

func doJSON(h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func errorCode(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		router http.Handler
		ledger *mockLedger
		build  func(strict bool)
	)

	ginkgo.BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		reader := &mockReader{
			snapshots: map[int64]*agent.Snapshot{
				7: {AgentID: 7, AgentName: "Dai ly Q7", AgentTypeID: 1, DebtMoney: f(1_500_000), MaximumDebt: f(10_000_000)},
			},
			byType: map[int64][]agent.Snapshot{
				1: {{AgentID: 7, AgentName: "Dai ly Q7", AgentTypeID: 1, DebtMoney: f(1_500_000)}},
			},
		}
		ledger = &mockLedger{}
		build = func(strict bool) {
			service := debtlimit.NewService(reader, ledger, &mockPublisher{}, nil, lg)
			router = newLimitRouter(debtlimit.NewHandler(transport.NewBaseHandler(lg), service, money.Coercion{Strict: strict}))
		}
		build(false)
	})

	ginkgo.Describe("POST /guardrails/debt-limit", func() {
		ginkgo.It("evaluates the supplied figures", func() {
			rec, body := doJSON(router, http.MethodPost, "/guardrails/debt-limit", `{"debt_amount":9000000,"max_debt":"10000000"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("status", "NearLimit"))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("percentage", "90.0"))
		})

		ginkgo.It("reads garbage as zero by default", func() {
			rec, body := doJSON(router, http.MethodPost, "/guardrails/debt-limit", `{"debt_amount":"abc","max_debt":10000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("status", "Low"))
		})

		ginkgo.It("rejects garbage in strict mode", func() {
			build(true)
			rec, body := doJSON(router, http.MethodPost, "/guardrails/debt-limit", `{"debt_amount":"abc","max_debt":10000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(errorCode(body)).To(gomega.Equal("VALIDATION_FAILED"))
		})

		ginkgo.It("rejects unknown fields", func() {
			rec, body := doJSON(router, http.MethodPost, "/guardrails/debt-limit", `{"debt":1}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(errorCode(body)).To(gomega.Equal("INVALID_REQUEST"))
		})
	})

	ginkgo.Describe("GET /agents/{id}/debt-limit", func() {
		ginkgo.It("returns the agent's standing", func() {
			rec, body := doJSON(router, http.MethodGet, "/agents/7/debt-limit", "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("agent_name", "Dai ly Q7"))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("formatted_debt", "1.500.000 đ"))
			gomega.Expect(body["limit"]).To(gomega.HaveKeyWithValue("status", "Low"))
		})

		ginkgo.It("returns 404 for an unknown agent", func() {
			rec, body := doJSON(router, http.MethodGet, "/agents/8/debt-limit", "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(errorCode(body)).To(gomega.Equal("AGENT_NOT_FOUND"))
		})

		ginkgo.It("rejects a malformed id", func() {
			rec, _ := doJSON(router, http.MethodGet, "/agents/abc/debt-limit", "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("POST /agents/{id}/exports/validate", func() {
		ginkgo.It("returns the assessment even when the export is blocked", func() {
			rec, body := doJSON(router, http.MethodPost, "/agents/7/exports/validate", `{"quantity":10,"unit_price":1000000,"paid_amount":0}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("is_valid", false))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("new_total_debt", 11_500_000.0))
		})
	})

	ginkgo.Describe("POST /agents/{id}/exports", func() {
		ginkgo.It("books the unpaid part as debt", func() {
			rec, body := doJSON(router, http.MethodPost, "/agents/7/exports", `{"quantity":2,"unit_price":"1000000","paid_amount":500000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("debt_before", 1_500_000.0))
			gomega.Expect(ledger.exports).To(gomega.Equal([]float64{1_500_000}))
		})

		ginkgo.It("refuses an export over the ceiling without touching the store", func() {
			rec, body := doJSON(router, http.MethodPost, "/agents/7/exports", `{"quantity":10,"unit_price":1000000,"paid_amount":0}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(errorCode(body)).To(gomega.Equal("DEBT_LIMIT_EXCEEDED"))
			gomega.Expect(ledger.exports).To(gomega.BeEmpty())
		})

		ginkgo.It("reports an export the store refused", func() {
			ledger.exportErr = agent.ErrRejected
			rec, body := doJSON(router, http.MethodPost, "/agents/7/exports", `{"quantity":1,"unit_price":1000000,"paid_amount":0}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(errorCode(body)).To(gomega.Equal("REJECTED_BY_SYSTEM_OF_RECORD"))
		})
	})

	ginkgo.Describe("agent type ceilings", func() {
		ginkgo.It("reviews a proposed ceiling", func() {
			rec, body := doJSON(router, http.MethodPost, "/agent-types/1/maximum-debt/validate", `{"maximum_debt":1000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("is_valid", false))
			gomega.Expect(body["violations"]).To(gomega.HaveLen(1))
		})

		ginkgo.It("refuses to apply a ceiling below current debt", func() {
			rec, body := doJSON(router, http.MethodPut, "/agent-types/1/maximum-debt", `{"maximum_debt":1000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(errorCode(body)).To(gomega.Equal("CEILING_BELOW_DEBT"))
			gomega.Expect(ledger.ceilings).To(gomega.BeEmpty())
		})

		ginkgo.It("applies a valid ceiling", func() {
			rec, _ := doJSON(router, http.MethodPut, "/agent-types/1/maximum-debt", `{"maximum_debt":"20000000"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(ledger.ceilings).To(gomega.HaveKeyWithValue(int64(1), 20_000_000.0))
		})
	})
})
