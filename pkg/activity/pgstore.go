package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed activity store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the activity table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS activity (
			id        TEXT PRIMARY KEY,
			type      TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			actor_id  TEXT NOT NULL DEFAULT '',
			content   JSONB NOT NULL DEFAULT '{}'
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_type ON activity(type)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_actor ON activity(actor_id)`)
	return err
}

// Append creates and stores a new event.
func (s *PgStore) Append(ctx context.Context, eventType, actorID string, content map[string]any) (*Event, error) {
	if content == nil {
		content = map[string]any{}
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	e := &Event{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      eventType,
		Timestamp: time.Now().Truncate(time.Microsecond),
		ActorID:   actorID,
		Content:   content,
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO activity (id, type, timestamp, actor_id, content)
		VALUES ($1, $2, $3, $4, $5::jsonb)`,
		e.ID, e.Type, e.Timestamp, e.ActorID, string(contentJSON))
	if err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}
	return e, nil
}

// Recent returns the newest events, newest first.
func (s *PgStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	return s.query(ctx, `SELECT id, type, timestamp, actor_id, content FROM activity
		ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
}

// ByType returns the newest events of one type.
func (s *PgStore) ByType(ctx context.Context, eventType string, limit int) ([]Event, error) {
	return s.query(ctx, `SELECT id, type, timestamp, actor_id, content FROM activity
		WHERE type = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`, eventType, limit)
}

// ByActor returns the newest events caused by one user.
func (s *PgStore) ByActor(ctx context.Context, actorID string, limit int) ([]Event, error) {
	return s.query(ctx, `SELECT id, type, timestamp, actor_id, content FROM activity
		WHERE actor_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`, actorID, limit)
}

// Count returns the total event count.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity`).Scan(&n)
	return n, err
}

func (s *PgStore) query(ctx context.Context, sql string, args ...any) ([]Event, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()
	return scanEventRows(rows)
}

func scanEventRows(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var contentJSON []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.Timestamp, &e.ActorID, &contentJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(contentJSON, &e.Content); err != nil {
			e.Content = map[string]any{}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return events, nil
}
