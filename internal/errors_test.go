package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
)

var _ = Describe("AppError", func() {
	It("renders the error envelope", func() {
		appErr := internal.NewValidationError("debt exceeds the limit", internal.ErrCodeDebtLimitExceeded).
			WithDetails(map[string]float64{"excess_amount": 2_000_000})

		status, body := appErr.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusBadRequest))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"error":{
			"type":"VALIDATION_ERROR",
			"code":"DEBT_LIMIT_EXCEEDED",
			"message":"debt exceeds the limit",
			"details":{"excess_amount":2000000}}}`))
	})

	It("is found through wrapping", func() {
		wrapped := fmt.Errorf("record payment: %w", internal.ErrAgentNotFound)

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))

		_, ok = internal.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})

	It("reports the first field error as its message", func() {
		err := internal.NewValidationFieldError("payment_amount", "payment amount is required", internal.ErrCodeAmountRequired)
		Expect(err.Error()).To(Equal("payment amount is required"))
		Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))
	})

	It("types redirects by status", func() {
		unauth := internal.NewRedirectError(http.StatusUnauthorized, internal.ErrCodeUnauthenticated, "authentication required", "/login")
		Expect(unauth.Type).To(Equal(internal.ErrorTypeUnauthorized))
		Expect(unauth.Details).To(Equal(internal.RedirectDetails{Redirect: "/login"}))

		denied := internal.NewRedirectError(http.StatusForbidden, internal.ErrCodeAccessDenied, "insufficient permissions", "/unauthorized")
		Expect(denied.Type).To(Equal(internal.ErrorTypeForbidden))
	})

	It("keeps the cause out of the response", func() {
		appErr := internal.NewInternalError("internal server error", errors.New("connection reset"))
		Expect(appErr.Error()).To(ContainSubstring("connection reset"))

		_, body := appErr.ToHTTPResponse()
		raw, _ := json.Marshal(body)
		Expect(string(raw)).NotTo(ContainSubstring("connection reset"))
	})
})
