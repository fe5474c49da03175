package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	agentDatamodel "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/datamodel/agent"
	"gorm.io/gorm"
)

// Repository is the system of record for agent debt. Every write is a
// single conditional statement so concurrent requests cannot jointly break
// a rule that each of them passed on its own.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const applyPaymentSQL = `UPDATE agents
SET debt_money = COALESCE(debt_money, 0) - ?, updated_at = ?
WHERE agent_id = ? AND COALESCE(debt_money, 0) >= ?`

func (r *Repository) ApplyPayment(ctx context.Context, agentID int64, amount float64) (*agent.Snapshot, error) {
	if amount <= 0 {
		return nil, agent.ErrRejected
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Exec(applyPaymentSQL, amount, now, agentID, amount)
		if res.Error != nil {
			return fmt.Errorf("apply payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return r.missingOr(tx, &agentDatamodel.Agent{}, "agent_id = ?", agentID, agent.ErrNotFound)
		}

		receipt := &agentDatamodel.PaymentReceipt{
			AgentID:       agentID,
			RevenueAmount: amount,
			PaymentDate:   now,
		}
		return tx.Create(receipt).Error
	})
	if err != nil {
		return nil, err
	}

	return r.Snapshot(ctx, agentID)
}

// A ceiling of zero or less is no ceiling, matching the guardrail.
const applyExportSQL = `UPDATE agents
SET debt_money = COALESCE(debt_money, 0) + ?, updated_at = ?
WHERE agent_id = ?
  AND NOT EXISTS (
    SELECT 1 FROM agent_types t
    WHERE t.agent_type_id = agents.agent_type_id
      AND t.maximum_debt > 0
      AND COALESCE(agents.debt_money, 0) + ? > t.maximum_debt
  )`

func (r *Repository) ApplyExport(ctx context.Context, agentID int64, amount float64) (*agent.Snapshot, error) {
	if amount < 0 {
		return nil, agent.ErrRejected
	}

	db := r.db.WithContext(ctx)
	res := db.Exec(applyExportSQL, amount, time.Now(), agentID, amount)
	if res.Error != nil {
		return nil, fmt.Errorf("apply export: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.missingOr(db, &agentDatamodel.Agent{}, "agent_id = ?", agentID, agent.ErrNotFound)
	}
	return r.Snapshot(ctx, agentID)
}

const changeCeilingSQL = `UPDATE agent_types
SET maximum_debt = ?, updated_at = ?
WHERE agent_type_id = ?
  AND NOT EXISTS (
    SELECT 1 FROM agents a
    WHERE a.agent_type_id = agent_types.agent_type_id AND COALESCE(a.debt_money, 0) > ?
  )`

func (r *Repository) ChangeCeiling(ctx context.Context, agentTypeID int64, maximumDebt float64) error {
	if maximumDebt <= 0 {
		return agent.ErrRejected
	}

	db := r.db.WithContext(ctx)
	res := db.Exec(changeCeilingSQL, maximumDebt, time.Now(), agentTypeID, maximumDebt)
	if res.Error != nil {
		return fmt.Errorf("change ceiling: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOr(db, &agentDatamodel.AgentType{}, "agent_type_id = ?", agentTypeID, agent.ErrTypeNotFound)
	}
	return nil
}

// missingOr tells a missing row apart from a refused update.
func (r *Repository) missingOr(db *gorm.DB, model interface{}, where string, id int64, notFound error) error {
	var count int64
	if err := db.Model(model).Where(where, id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return agent.ErrRejected
}

func (r *Repository) Snapshot(ctx context.Context, agentID int64) (*agent.Snapshot, error) {
	var snap agent.Snapshot
	res := r.db.WithContext(ctx).
		Table("agents AS a").
		Select("a.agent_id, a.agent_name, a.agent_type_id, a.debt_money, t.maximum_debt").
		Joins("LEFT JOIN agent_types AS t ON t.agent_type_id = a.agent_type_id").
		Where("a.agent_id = ?", agentID).
		Scan(&snap)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, agent.ErrNotFound
	}
	return &snap, nil
}

func (r *Repository) CreateAgentType(ctx context.Context, t *agentDatamodel.AgentType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repository) CreateAgent(ctx context.Context, a *agentDatamodel.Agent) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) AgentTypeByName(ctx context.Context, name string) (*agentDatamodel.AgentType, error) {
	var t agentDatamodel.AgentType
	err := r.db.WithContext(ctx).Where("agent_type_name = ?", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) PaymentsForAgent(ctx context.Context, agentID int64) ([]*agentDatamodel.PaymentReceipt, error) {
	var receipts []*agentDatamodel.PaymentReceipt
	err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("payment_id ASC").Find(&receipts).Error
	return receipts, err
}
