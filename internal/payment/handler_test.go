package payment_test

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
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/payment"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		router http.Handler
		ledger *memoryLedger
	)

	build := func(strict bool) {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := payment.NewService(ledger, ledger, &recordingPublisher{}, nil, lg)
		h := payment.NewHandler(transport.NewBaseHandler(lg), service, money.Coercion{Strict: strict})

		r := chi.NewRouter()
		r.Post("/guardrails/payment", h.CheckPayment)
		r.Post("/agents/{id}/payments/validate", h.ValidateAgentPayment)
		r.Post("/agents/{id}/payments", h.RecordPayment)
		router = r
	}

	do := func(method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		out := map[string]interface{}{}
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		return rec, out
	}

	code := func(body map[string]interface{}) interface{} {
		e, _ := body["error"].(map[string]interface{})
		return e["code"]
	}

	ginkgo.BeforeEach(func() {
		ledger = &memoryLedger{agents: map[int64]*agent.Snapshot{
			1: {AgentID: 1, AgentName: "Dai ly A", DebtMoney: f(5_000_000)},
		}}
		build(false)
	})

	ginkgo.Describe("POST /guardrails/payment", func() {
		ginkgo.It("classifies the figures", func() {
			rec, body := do(http.MethodPost, "/guardrails/payment", `{"payment_amount":"6000000","agent_debt":5000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("type", "exceeds_debt"))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("excess_amount", 1_000_000.0))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("max_allowed", 5_000_000.0))
		})

		ginkgo.It("treats a missing debt as no debt", func() {
			_, body := do(http.MethodPost, "/guardrails/payment", `{"payment_amount":100}`)
			gomega.Expect(body).To(gomega.HaveKeyWithValue("type", "no_debt"))
		})

		ginkgo.It("rejects non-numeric input in strict mode", func() {
			build(true)
			rec, body := do(http.MethodPost, "/guardrails/payment", `{"payment_amount":true,"agent_debt":5000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(code(body)).To(gomega.Equal("VALIDATION_FAILED"))
		})
	})

	ginkgo.Describe("POST /agents/{id}/payments/validate", func() {
		ginkgo.It("validates against the stored debt", func() {
			rec, body := do(http.MethodPost, "/agents/1/payments/validate", `{"payment_amount":5000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("formatted_debt", "5.000.000 đ"))
			gomega.Expect(body["validation"]).To(gomega.HaveKeyWithValue("type", "full_payment"))
		})
	})

	ginkgo.Describe("POST /agents/{id}/payments", func() {
		ginkgo.It("records the payment", func() {
			rec, body := do(http.MethodPost, "/agents/1/payments", `{"payment_amount":1500000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("debt_after", 3_500_000.0))
		})

		ginkgo.It("refuses a payment over the debt", func() {
			rec, body := do(http.MethodPost, "/agents/1/payments", `{"payment_amount":6000000}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(code(body)).To(gomega.Equal("PAYMENT_EXCEEDS_DEBT"))
			gomega.Expect(ledger.payments).To(gomega.BeEmpty())
		})

		ginkgo.It("requires an amount", func() {
			rec, body := do(http.MethodPost, "/agents/1/payments", `{}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(code(body)).To(gomega.Equal("VALIDATION_FAILED"))
		})

		ginkgo.It("returns 404 for unknown agents", func() {
			rec, body := do(http.MethodPost, "/agents/42/payments", `{"payment_amount":1}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(code(body)).To(gomega.Equal("AGENT_NOT_FOUND"))
		})
	})
})
