package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'Todo',
			priority    TEXT NOT NULL DEFAULT 'Low',
			due_date    TEXT NOT NULL DEFAULT '',
			due_time    TEXT NOT NULL DEFAULT '',
			created_by  JSONB NOT NULL,
			assignee    JSONB NOT NULL,
			created_at  TIMESTAMPTZ DEFAULT NOW(),
			updated_at  TIMESTAMPTZ DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_creator ON tasks((created_by->>'userId'))`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`)
	return err
}

const taskColumns = `id, title, description, status, priority, due_date, due_time, created_by, assignee, created_at, updated_at`

// Create inserts a new task. The id is a 24-hex object id so short
// display ids can be derived from the hex suffix.
func (s *PgStore) Create(ctx context.Context, t *Task) (*Task, error) {
	t.ID = primitive.NewObjectID().Hex()
	now := time.Now().Truncate(time.Microsecond)
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityLow
	}

	createdBy, err := json.Marshal(t.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("marshal createdBy: %w", err)
	}
	assignee, err := json.Marshal(t.Assignee)
	if err != nil {
		return nil, fmt.Errorf("marshal assignee: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, due_time, created_by, assignee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.DueTime, string(createdBy), string(assignee), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get retrieves a single task by ID.
func (s *PgStore) Get(ctx context.Context, id string) (*Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// Find returns tasks matching the query, newest first. All filter
// conditions are AND-combined; the creator scope is always applied.
func (s *PgStore) Find(ctx context.Context, q Query) ([]Task, error) {
	where := "created_by->>'userId' = $1"
	args := []any{q.CreatedByID}
	argIdx := 2

	add := func(cond string, v any) {
		where += fmt.Sprintf(" AND "+cond, argIdx)
		args = append(args, v)
		argIdx++
	}

	if q.IDs != nil {
		add("id = ANY($%d)", q.IDs)
	}
	if q.TitleContains != "" {
		add("title ILIKE '%%' || $%d || '%%'", q.TitleContains)
	}
	if q.DescriptionContains != "" {
		add("description ILIKE '%%' || $%d || '%%'", q.DescriptionContains)
	}
	if q.Status != "" {
		add("status = $%d", q.Status)
	}
	if q.Priority != "" {
		add("priority = $%d", q.Priority)
	}
	if q.DueDate != "" {
		add("due_date = $%d", q.DueDate)
	}
	if q.DueTime != "" {
		add("due_time = $%d", q.DueTime)
	}
	if q.AssigneeID != "" {
		add("assignee->>'userId' = $%d", q.AssigneeID)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}

// Update modifies task fields. Supported keys: title, description,
// status, priority, due_date, due_time, assignee. Unknown keys are
// ignored; created_by is never touched.
func (s *PgStore) Update(ctx context.Context, id string, updates map[string]any) (*Task, error) {
	now := time.Now().Truncate(time.Microsecond)

	setClauses := "updated_at = $1"
	args := []any{now}
	argIdx := 2

	for k, v := range updates {
		switch k {
		case "title", "description", "status", "priority", "due_date", "due_time":
			setClauses += fmt.Sprintf(", %s = $%d", k, argIdx)
			args = append(args, v)
			argIdx++
		case "assignee":
			assigneeJSON, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("marshal assignee: %w", err)
			}
			setClauses += fmt.Sprintf(", assignee = $%d::jsonb", argIdx)
			args = append(args, string(assigneeJSON))
			argIdx++
		}
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s", setClauses, argIdx, taskColumns)

	t, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

// Delete removes a task permanently.
func (s *PgStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var createdBy, assignee []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.DueTime, &createdBy, &assignee, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(createdBy, &t.CreatedBy); err != nil {
		return nil, fmt.Errorf("unmarshal createdBy: %w", err)
	}
	if err := json.Unmarshal(assignee, &t.Assignee); err != nil {
		return nil, fmt.Errorf("unmarshal assignee: %w", err)
	}
	return &t, nil
}
