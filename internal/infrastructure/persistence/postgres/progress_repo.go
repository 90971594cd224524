package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements achievement.ProgressRepository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// Get returns the stored record for a (user, achievement) pair.
func (r *ProgressRepository) Get(ctx context.Context, userID, achievementID string) (achievement.Progress, error) {
	query := `
		SELECT user_id, achievement_id, progress, achieved, achieved_at, metadata, updated_at
		FROM achievement_progress
		WHERE user_id = $1 AND achievement_id = $2
	`

	row := r.conn.QueryRow(ctx, query, userID, achievementID)
	p, err := scanProgress(row)
	if err != nil {
		if IsNoRows(err) {
			return achievement.Progress{}, shared.ErrProgressNotFound
		}
		return achievement.Progress{}, wrapStoreErr("Get", err)
	}

	return p, nil
}

// GetAllForUser returns every stored record for the user.
func (r *ProgressRepository) GetAllForUser(ctx context.Context, userID string) ([]achievement.Progress, error) {
	query := `
		SELECT user_id, achievement_id, progress, achieved, achieved_at, metadata, updated_at
		FROM achievement_progress
		WHERE user_id = $1
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapStoreErr("GetAllForUser", err)
	}
	defer rows.Close()

	var records []achievement.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, wrapStoreErr("GetAllForUser", err)
		}
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("GetAllForUser", err)
	}

	return records, nil
}

// Upsert writes the record, replacing any previous state for the
// (user, achievement) pair. A fresh unlock is also appended to the
// achievement_unlocks audit log in the same transaction.
func (r *ProgressRepository) Upsert(ctx context.Context, p achievement.Progress) error {
	metadataJSON, err := marshalMetadata(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	upsert := `
		INSERT INTO achievement_progress (
			user_id, achievement_id, progress, achieved, achieved_at, metadata, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, achievement_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			achieved = EXCLUDED.achieved,
			achieved_at = EXCLUDED.achieved_at,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var inserted bool
		err := tx.QueryRow(ctx, upsert,
			p.UserID,
			p.AchievementID,
			p.Progress,
			p.Achieved,
			p.AchievedAt,
			metadataJSON,
			p.UpdatedAt,
		).Scan(&inserted)
		if err != nil {
			return wrapStoreErr("Upsert", err)
		}

		if !p.Achieved {
			return nil
		}

		// Only log an unlock when this write flipped (or re-flipped for
		// repeatable achievements) the achieved flag during this run.
		// The saga always writes AchievedAt == UpdatedAt on the run that
		// unlocked; stale rows carry an older AchievedAt.
		if p.AchievedAt == nil || !p.AchievedAt.Equal(p.UpdatedAt) {
			return nil
		}

		audit := `
			INSERT INTO achievement_unlocks (user_id, achievement_id, progress, metadata, unlocked_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, audit, p.UserID, p.AchievementID, p.Progress, metadataJSON, p.UpdatedAt); err != nil {
			return wrapStoreErr("Upsert", err)
		}

		return nil
	})
}

// UnlockHistory returns the most recent unlock events for a user, newest
// first, including repeats of repeatable achievements.
func (r *ProgressRepository) UnlockHistory(ctx context.Context, userID string, limit int) ([]UnlockRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT user_id, achievement_id, progress, metadata, unlocked_at
		FROM achievement_unlocks
		WHERE user_id = $1
		ORDER BY unlocked_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapStoreErr("UnlockHistory", err)
	}
	defer rows.Close()

	var records []UnlockRecord
	for rows.Next() {
		var rec UnlockRecord
		var metadataJSON []byte

		if err := rows.Scan(&rec.UserID, &rec.AchievementID, &rec.Progress, &metadataJSON, &rec.UnlockedAt); err != nil {
			return nil, wrapStoreErr("UnlockHistory", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal unlock metadata: %w", err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// UnlockRecord is one row of the unlock audit log.
type UnlockRecord struct {
	UserID        string
	AchievementID string
	Progress      float64
	Metadata      map[string]interface{}
	UnlockedAt    time.Time
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanProgress(row pgx.Row) (achievement.Progress, error) {
	var p achievement.Progress
	var metadataJSON []byte

	err := row.Scan(
		&p.UserID,
		&p.AchievementID,
		&p.Progress,
		&p.Achieved,
		&p.AchievedAt,
		&metadataJSON,
		&p.UpdatedAt,
	)
	if err != nil {
		return achievement.Progress{}, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			return achievement.Progress{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return p, nil
}

func marshalMetadata(metadata map[string]interface{}) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}

// wrapStoreErr marks infrastructure failures as retryable so the saga's
// database retrier picks them up.
func wrapStoreErr(op string, err error) error {
	return shared.WrapError("progress", op, shared.ErrServiceUnavailable, "progress store unavailable", err)
}
