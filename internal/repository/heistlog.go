package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/citywide-rp/bankcore/internal/models"
)

// HeistLogRepository defines the interface for heist outcome logging
type HeistLogRepository interface {
	Create(ctx context.Context, log *models.HeistLog) error
	LatestEndTimes(ctx context.Context) (map[string]time.Time, error)
}

// heistLogRepository implements HeistLogRepository
type heistLogRepository struct {
	q Querier
}

// NewHeistLogRepository creates a new HeistLogRepository
func NewHeistLogRepository(q Querier) HeistLogRepository {
	return &heistLogRepository{q: q}
}

// Create appends a heist outcome row
func (r *heistLogRepository) Create(ctx context.Context, log *models.HeistLog) error {
	query := `
		INSERT INTO heist_logs (target_id, target_kind, initiator_id, participants, method, loot_cents, success, fail_reason, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		log.TargetID,
		log.TargetKind,
		log.InitiatorID,
		log.Participants,
		log.Method,
		log.LootCents,
		log.Success,
		log.FailReason,
		log.StartedAt,
		log.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create heist log: %w", err)
	}

	return nil
}

// LatestEndTimes returns, per target, the end time of the most recent attempt.
// Used to rebuild cooldown state on startup.
func (r *heistLogRepository) LatestEndTimes(ctx context.Context) (map[string]time.Time, error) {
	query := `SELECT target_id, MAX(ended_at) FROM heist_logs GROUP BY target_id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load heist end times: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]time.Time)
	for rows.Next() {
		var targetID string
		var endedAt time.Time
		if err := rows.Scan(&targetID, &endedAt); err != nil {
			return nil, fmt.Errorf("failed to scan heist end time: %w", err)
		}
		latest[targetID] = endedAt
	}

	return latest, rows.Err()
}
