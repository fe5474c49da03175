package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "agent:snapshot:"

// CachedReader keeps snapshots in Redis for the read-heavy guardrail
// checks. Redis failures degrade to the underlying reader.
type CachedReader struct {
	next   Reader
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedReader(next Reader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedReader {
	return &CachedReader{next: next, client: client, ttl: ttl, logger: logger}
}

func snapshotKey(agentID int64) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, agentID)
}

func (c *CachedReader) Snapshot(ctx context.Context, agentID int64) (*Snapshot, error) {
	key := snapshotKey(agentID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var snap Snapshot
		if jsonErr := json.Unmarshal(raw, &snap); jsonErr == nil {
			return &snap, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable cached snapshot", "agent_id", agentID)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "snapshot cache read failed", "agent_id", agentID, "error", err)
	}

	snap, err := c.next.Snapshot(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(snap); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "snapshot cache write failed", "agent_id", agentID, "error", err)
		}
	}
	return snap, nil
}

// ListByAgentType is not cached; ceiling changes must see current debt.
func (c *CachedReader) ListByAgentType(ctx context.Context, agentTypeID int64) ([]Snapshot, error) {
	return c.next.ListByAgentType(ctx, agentTypeID)
}

func (c *CachedReader) Invalidate(ctx context.Context, agentIDs ...int64) error {
	if len(agentIDs) == 0 {
		return nil
	}
	keys := make([]string, len(agentIDs))
	for i, id := range agentIDs {
		keys[i] = snapshotKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// HandleDebtChanged drops cached snapshots once a change is confirmed.
func (c *CachedReader) HandleDebtChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.DebtChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	return c.Invalidate(ctx, changed.AgentIDs...)
}
