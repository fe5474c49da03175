package debtlimit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/debtlimit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockReader struct {
	snapshots map[int64]*agent.Snapshot
	byType    map[int64][]agent.Snapshot
	err       error
}

func (m *mockReader) Snapshot(ctx context.Context, agentID int64) (*agent.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	snap, ok := m.snapshots[agentID]
	if !ok {
		return nil, agent.ErrNotFound
	}
	return snap, nil
}

func (m *mockReader) ListByAgentType(ctx context.Context, agentTypeID int64) ([]agent.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	list, ok := m.byType[agentTypeID]
	if !ok {
		return nil, agent.ErrTypeNotFound
	}
	return list, nil
}

type mockLedger struct {
	ceilingErr error
	ceilings   map[int64]float64
	exportErr  error
	exports    []float64
}

func (m *mockLedger) ApplyPayment(ctx context.Context, agentID int64, amount float64) (*agent.Snapshot, error) {
	return nil, errors.New("not used")
}

func (m *mockLedger) ApplyExport(ctx context.Context, agentID int64, amount float64) (*agent.Snapshot, error) {
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	m.exports = append(m.exports, amount)
	return &agent.Snapshot{AgentID: agentID, DebtMoney: &amount}, nil
}

func (m *mockLedger) ChangeCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) error {
	if m.ceilingErr != nil {
		return m.ceilingErr
	}
	if m.ceilings == nil {
		m.ceilings = map[int64]float64{}
	}
	m.ceilings[agentTypeID] = maximumDebt
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	async  []events.Event
	synced []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.async = append(m.async, event)
	return nil
}

func (m *mockPublisher) PublishSync(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced = append(m.synced, event)
	return nil
}

type mockRecorder struct {
	checks []string
}

func (m *mockRecorder) GuardrailCheck(kind, outcome string) {
	m.checks = append(m.checks, kind+":"+outcome)
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		reader    *mockReader
		ledger    *mockLedger
		publisher *mockPublisher
		recorder  *mockRecorder
		service   *debtlimit.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		reader = &mockReader{
			snapshots: map[int64]*agent.Snapshot{
				1: {AgentID: 1, AgentName: "Dai ly A", AgentTypeID: 1, DebtMoney: f(9_000_000), MaximumDebt: f(10_000_000)},
				2: {AgentID: 2, AgentName: "Dai ly B", AgentTypeID: 1, DebtMoney: f(12_000_000), MaximumDebt: f(10_000_000)},
				3: {AgentID: 3, AgentName: "Dai ly C", AgentTypeID: 2},
			},
			byType: map[int64][]agent.Snapshot{
				1: {
					{AgentID: 1, AgentName: "Dai ly A", AgentTypeID: 1, DebtMoney: f(9_000_000)},
					{AgentID: 2, AgentName: "Dai ly B", AgentTypeID: 1, DebtMoney: f(12_000_000)},
				},
				2: {{AgentID: 3, AgentName: "Dai ly C", AgentTypeID: 2}},
			},
		}
		ledger = &mockLedger{}
		publisher = &mockPublisher{}
		recorder = &mockRecorder{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = debtlimit.NewService(reader, ledger, publisher, recorder, lg)
	})

	Describe("Check", func() {
		It("records the outcome", func() {
			r := service.Check(ctx, 1_000_000, 0)
			Expect(r.IsValid).To(BeFalse())
			Expect(recorder.checks).To(Equal([]string{"debt_limit:not_configured"}))
		})
	})

	Describe("ForAgent", func() {
		It("evaluates the stored debt against the type ceiling", func() {
			r, snap, err := service.ForAgent(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.AgentName).To(Equal("Dai ly A"))
			Expect(r.Status).To(Equal(debtlimit.StatusNearLimit))
			Expect(publisher.async).To(BeEmpty())
		})

		It("publishes an event when the agent is over the limit", func() {
			r, _, err := service.ForAgent(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.IsExceeded).To(BeTrue())
			Expect(publisher.async).To(HaveLen(1))
			Expect(publisher.async[0].EventType()).To(Equal(events.EventTypeDebtLimitExceeded))
		})

		It("treats a type without ceiling as unconfigured", func() {
			r, _, err := service.ForAgent(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.IsValid).To(BeFalse())
		})

		It("maps a missing agent to AGENT_NOT_FOUND", func() {
			_, _, err := service.ForAgent(ctx, 99)
			Expect(err).To(Equal(internal.ErrAgentNotFound))
		})

		It("maps store failures to internal errors", func() {
			reader.err = errors.New("connection reset")
			_, _, err := service.ForAgent(ctx, 1)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("AssessExport", func() {
		It("projects the debt after the receipt", func() {
			a, err := service.AssessExport(ctx, 1, debtlimit.ExportDraft{Quantity: 2, UnitPrice: 1_000_000})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.IsValid).To(BeFalse())
			Expect(a.NewTotalDebt).To(Equal(11_000_000.0))
			Expect(recorder.checks).To(ContainElement("export:rejected"))
			Expect(publisher.async).To(HaveLen(1))
		})
	})

	Describe("RecordExport", func() {
		It("books the remaining amount and evicts cached debt", func() {
			record, err := service.RecordExport(ctx, 1, debtlimit.ExportDraft{Quantity: 1, UnitPrice: 1_000_000, PaidAmount: 200_000})
			Expect(err).NotTo(HaveOccurred())
			Expect(ledger.exports).To(Equal([]float64{800_000}))
			Expect(record.DebtBefore).To(Equal(9_000_000.0))
			Expect(recorder.checks).To(ContainElement("export_record:applied"))

			Expect(publisher.synced).To(HaveLen(1))
			changed, ok := publisher.synced[0].(*events.DebtChangedEvent)
			Expect(ok).To(BeTrue())
			Expect(changed.AgentIDs).To(ConsistOf(int64(1)))
		})

		It("blocks an export the guardrail rejects", func() {
			_, err := service.RecordExport(ctx, 1, debtlimit.ExportDraft{Quantity: 2, UnitPrice: 1_000_000})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDebtLimitExceeded))
			Expect(ledger.exports).To(BeEmpty())
			Expect(publisher.async).To(HaveLen(1))
		})

		It("reports a lost race as a rejection and evicts the stale snapshot", func() {
			ledger.exportErr = agent.ErrRejected
			_, err := service.RecordExport(ctx, 1, debtlimit.ExportDraft{Quantity: 1, UnitPrice: 500_000})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRejectedBySystem))
			Expect(recorder.checks).To(ContainElement("export_record:rejected"))
			Expect(publisher.synced).To(HaveLen(1))
		})
	})

	Describe("ChangeCeiling", func() {
		It("refuses a ceiling below an existing debt without touching the store", func() {
			review, err := service.ChangeCeiling(ctx, 1, 10_000_000)
			Expect(review.Violations).To(HaveLen(1))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCeilingBelowDebt))
			Expect(ledger.ceilings).To(BeEmpty())
		})

		It("applies the ceiling and announces the debt change", func() {
			review, err := service.ChangeCeiling(ctx, 1, 15_000_000)
			Expect(err).NotTo(HaveOccurred())
			Expect(review.IsValid).To(BeTrue())
			Expect(ledger.ceilings).To(HaveKeyWithValue(int64(1), 15_000_000.0))

			Expect(publisher.synced).To(HaveLen(1))
			changed, ok := publisher.synced[0].(*events.DebtChangedEvent)
			Expect(ok).To(BeTrue())
			Expect(changed.AgentIDs).To(ConsistOf(int64(1), int64(2)))
		})

		It("reports a lost race as a rejection", func() {
			ledger.ceilingErr = agent.ErrRejected
			_, err := service.ChangeCeiling(ctx, 1, 15_000_000)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRejectedBySystem))
		})

		It("reports an unknown agent type", func() {
			_, err := service.ChangeCeiling(ctx, 42, 15_000_000)
			Expect(err).To(Equal(internal.ErrAgentTypeNotFound))
		})
	})
})
