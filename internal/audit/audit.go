// Package audit appends an operations trail for workflow actions. Writes
// are best-effort: a failed audit insert is logged, never propagated into
// the request outcome.
package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nix1947/statementTracker/internal/logger"
)

const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionVerify    = "verify"
	ActionReconcile = "reconcile"
)

type Entry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	IP         string
	UserAgent  string
	Metadata   map[string]any
}

type Recorder struct {
	Pool *pgxpool.Pool
}

func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{Pool: pool}
}

// Record writes one audit row. Safe on a nil recorder or pool so tests and
// tooling can run without the table.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.Pool == nil {
		return
	}

	var metadata any
	if len(e.Metadata) > 0 {
		if buf, err := json.Marshal(e.Metadata); err == nil {
			metadata = json.RawMessage(buf)
		}
	}

	_, err := r.Pool.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES (NULLIF($1, '')::uuid, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)`,
		e.ActorID, e.Action, e.EntityType, e.EntityID, e.IP, e.UserAgent, metadata)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Msg("audit write failed")
	}
}
