package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	"github.com/jmoiron/sqlx"
)

const snapshotSelect = `SELECT a.agent_id, a.agent_name, a.agent_type_id, a.debt_money, t.maximum_debt
FROM agents a
LEFT JOIN agent_types t ON t.agent_type_id = a.agent_type_id`

// SnapshotReader serves the read path with plain SQL.
type SnapshotReader struct {
	db *sqlx.DB
}

func NewSnapshotReader(db *sqlx.DB) *SnapshotReader {
	return &SnapshotReader{db: db}
}

func (r *SnapshotReader) Snapshot(ctx context.Context, agentID int64) (*agent.Snapshot, error) {
	var snap agent.Snapshot
	query := r.db.Rebind(snapshotSelect + " WHERE a.agent_id = ?")
	if err := r.db.GetContext(ctx, &snap, query, agentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, agent.ErrNotFound
		}
		return nil, fmt.Errorf("select agent snapshot: %w", err)
	}
	return &snap, nil
}

func (r *SnapshotReader) ListByAgentType(ctx context.Context, agentTypeID int64) ([]agent.Snapshot, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		r.db.Rebind("SELECT COUNT(1) > 0 FROM agent_types WHERE agent_type_id = ?"), agentTypeID); err != nil {
		return nil, fmt.Errorf("select agent type: %w", err)
	}
	if !exists {
		return nil, agent.ErrTypeNotFound
	}

	snaps := []agent.Snapshot{}
	query := r.db.Rebind(snapshotSelect + " WHERE a.agent_type_id = ? ORDER BY a.agent_id")
	if err := r.db.SelectContext(ctx, &snaps, query, agentTypeID); err != nil {
		return nil, fmt.Errorf("select agents by type: %w", err)
	}
	return snaps, nil
}
