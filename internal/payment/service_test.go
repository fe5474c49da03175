package payment_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/payment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func f(v float64) *float64 { return &v }

// memoryLedger keeps debts in memory and applies payments under the same
// rule as the database: the debt must cover the payment.
type memoryLedger struct {
	mu       sync.Mutex
	agents   map[int64]*agent.Snapshot
	payments []float64
}

func (m *memoryLedger) Snapshot(ctx context.Context, agentID int64) (*agent.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.agents[agentID]
	if !ok {
		return nil, agent.ErrNotFound
	}
	cp := *snap
	if snap.DebtMoney != nil {
		cp.DebtMoney = f(*snap.DebtMoney)
	}
	return &cp, nil
}

func (m *memoryLedger) ListByAgentType(ctx context.Context, agentTypeID int64) ([]agent.Snapshot, error) {
	return nil, nil
}

func (m *memoryLedger) ApplyPayment(ctx context.Context, agentID int64, amount float64) (*agent.Snapshot, error) {
	m.mu.Lock()
	snap, ok := m.agents[agentID]
	if !ok {
		m.mu.Unlock()
		return nil, agent.ErrNotFound
	}
	if snap.Debt() < amount {
		m.mu.Unlock()
		return nil, agent.ErrRejected
	}
	snap.DebtMoney = f(snap.Debt() - amount)
	m.payments = append(m.payments, amount)
	m.mu.Unlock()
	return m.Snapshot(ctx, agentID)
}

func (m *memoryLedger) ApplyExport(ctx context.Context, agentID int64, amount float64) (*agent.Snapshot, error) {
	return nil, agent.ErrRejected
}

func (m *memoryLedger) ChangeCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) error {
	return nil
}

// staleReader always reports the debt as it was before any payment.
type staleReader struct {
	snap agent.Snapshot
}

func (s *staleReader) Snapshot(ctx context.Context, agentID int64) (*agent.Snapshot, error) {
	cp := s.snap
	return &cp, nil
}

func (s *staleReader) ListByAgentType(ctx context.Context, agentTypeID int64) ([]agent.Snapshot, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	async  []events.Event
	synced []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.async = append(p.async, event)
	return nil
}

func (p *recordingPublisher) PublishSync(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synced = append(p.synced, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.async {
		out = append(out, e.EventType())
	}
	return out
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		ledger    *memoryLedger
		publisher *recordingPublisher
		service   *payment.Service
		lg        *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ledger = &memoryLedger{agents: map[int64]*agent.Snapshot{
			1: {AgentID: 1, AgentName: "Dai ly A", AgentTypeID: 1, DebtMoney: f(5_000_000)},
			2: {AgentID: 2, AgentName: "Dai ly B", AgentTypeID: 1},
		}}
		publisher = &recordingPublisher{}
		service = payment.NewService(ledger, ledger, publisher, nil, lg)
	})

	Describe("Validate", func() {
		It("uses the stored debt", func() {
			r, snap, err := service.Validate(ctx, 1, 2_000_000)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.AgentName).To(Equal("Dai ly A"))
			Expect(r.Type).To(Equal(payment.OutcomePartialPayment))
			Expect(*r.RemainingDebt).To(Equal(3_000_000.0))
		})

		It("treats an absent debt as no debt", func() {
			r, _, err := service.Validate(ctx, 2, 2_000_000)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Type).To(Equal(payment.OutcomeNoDebt))
		})

		It("reports unknown agents", func() {
			_, _, err := service.Validate(ctx, 9, 1)
			Expect(err).To(Equal(internal.ErrAgentNotFound))
		})
	})

	Describe("Record", func() {
		It("applies a partial payment and announces the change", func() {
			receipt, err := service.Record(ctx, 1, 2_000_000)
			Expect(err).NotTo(HaveOccurred())
			Expect(receipt.DebtBefore).To(Equal(5_000_000.0))
			Expect(receipt.DebtAfter).To(Equal(3_000_000.0))
			Expect(receipt.FormattedDebt).To(Equal("3.000.000 đ"))
			Expect(ledger.payments).To(Equal([]float64{2_000_000}))

			Expect(publisher.synced).To(HaveLen(1))
			Expect(publisher.synced[0].EventType()).To(Equal(events.EventTypeDebtChanged))
		})

		It("requires an amount", func() {
			_, err := service.Record(ctx, 1, 0)
			Expect(err).To(Equal(internal.ErrAmountRequired))
			Expect(ledger.payments).To(BeEmpty())
		})

		It("refuses payments over the debt before reaching the ledger", func() {
			_, err := service.Record(ctx, 1, 6_000_000)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePaymentExceedsDebt))
			Expect(ledger.payments).To(BeEmpty())
			Expect(publisher.types()).To(ConsistOf(events.EventTypePaymentRejected))
		})

		It("refuses payments to agents without debt", func() {
			_, err := service.Record(ctx, 2, 1_000)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePaymentExceedsDebt))
		})

		It("surfaces a rejection by the ledger as a validation error", func() {
			stale := &staleReader{snap: agent.Snapshot{AgentID: 1, AgentName: "Dai ly A", DebtMoney: f(5_000_000)}}
			service = payment.NewService(stale, ledger, publisher, nil, lg)

			_, err := service.Record(ctx, 1, 4_000_000)
			Expect(err).NotTo(HaveOccurred())

			// each payment passes the stale check on its own, together they overdraw
			_, err = service.Record(ctx, 1, 4_000_000)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(appErr.Code).To(Equal(internal.ErrCodeRejectedBySystem))

			Expect(ledger.payments).To(Equal([]float64{4_000_000}))
			Expect(publisher.types()).To(ContainElement(events.EventTypePaymentRejected))
		})

		It("never overdraws under concurrent payments", func() {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, _ = service.Record(ctx, 1, 1_000_000)
				}()
			}
			wg.Wait()

			snap, err := ledger.Snapshot(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Debt()).To(BeZero())
			Expect(ledger.payments).To(HaveLen(5))
		})
	})
})
