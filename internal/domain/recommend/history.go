package recommend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rafaelgorayb/barduino/pkg/uuid"
)

// SessionRecord is one persisted session outcome.
type SessionRecord struct {
	ID             string     `json:"id"`
	DeviceID       string     `json:"deviceId"`
	Phase          Phase      `json:"phase"`
	Reason         FailReason `json:"reason,omitempty"`
	PrimaryDrinkID string     `json:"primaryDrinkId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// HistoryStore persists terminal session outcomes. Session history is a
// diagnostic record (which drinks get picked, how often requests degrade),
// not part of the recommendation flow itself.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a HistoryStore backed by the given DB.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record inserts one terminal snapshot.
func (h *HistoryStore) Record(ctx context.Context, snap Snapshot) error {
	var primaryID *string
	if p := snap.Primary(); p != nil {
		primaryID = &p.Drink.ID
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO recommendation_session (id, device_id, phase, fail_reason, primary_drink_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewV7().String(), snap.DeviceID, string(snap.Phase), string(snap.Reason), primaryID, snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("history: insert session: %w", err)
	}
	return nil
}

// Recent returns the latest limit session outcomes, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, device_id, phase, fail_reason, COALESCE(primary_drink_id, ''), created_at
		FROM recommendation_session
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []SessionRecord
	for rows.Next() {
		var (
			r      SessionRecord
			phase  string
			reason string
		)
		if scanErr := rows.Scan(&r.ID, &r.DeviceID, &phase, &reason, &r.PrimaryDrinkID, &r.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("history: scan session: %w", scanErr)
		}
		r.Phase = Phase(phase)
		r.Reason = FailReason(reason)
		out = append(out, r)
	}
	return out, rows.Err()
}
