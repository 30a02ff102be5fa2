package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/confsched/internal/domain/task"
	"github.com/rpggio/confsched/internal/repository"
)

// TaskRepository implements task.Repository for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task. A taken filename yields repository.ErrConflict.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (filename, start_date, end_date)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, t.Filename, formatDate(t.Start), formatDate(t.End))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// Get retrieves a task by filename
func (r *TaskRepository) Get(ctx context.Context, filename string) (*task.Task, error) {
	query := `
		SELECT filename, start_date, end_date
		FROM tasks
		WHERE filename = ?
	`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, filename))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// Replace deletes any task for the filename and inserts t in one transaction
func (r *TaskRepository) Replace(ctx context.Context, t *task.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE filename = ?`, t.Filename); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	insertQuery := `
		INSERT INTO tasks (filename, start_date, end_date)
		VALUES (?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insertQuery, t.Filename, formatDate(t.Start), formatDate(t.End)); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateWindow sets the window of an existing task and reports whether a row matched
func (r *TaskRepository) UpdateWindow(ctx context.Context, filename string, start, end time.Time) (bool, error) {
	query := `
		UPDATE tasks
		SET start_date = ?, end_date = ?
		WHERE filename = ?
	`

	result, err := r.db.ExecContext(ctx, query, formatDate(start), formatDate(end), filename)
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Delete removes a task and reports whether it existed
func (r *TaskRepository) Delete(ctx context.Context, filename string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE filename = ?`, filename)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// List returns all tasks ordered by start date, newest first
func (r *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	query := `
		SELECT filename, start_date, end_date
		FROM tasks
		ORDER BY start_date DESC, filename ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// InsertMissing inserts each task whose filename has no record and returns the
// filenames actually inserted. Existing windows are left as they are.
func (r *TaskRepository) InsertMissing(ctx context.Context, tasks []task.Task) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO tasks (filename, start_date, end_date)
		VALUES (?, ?, ?)
	`

	var inserted []string
	for _, t := range tasks {
		result, err := tx.ExecContext(ctx, query, t.Filename, formatDate(t.Start), formatDate(t.End))
		if err != nil {
			return nil, fmt.Errorf("failed to insert task %s: %w", t.Filename, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n > 0 {
			inserted = append(inserted, t.Filename)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var start, end any
	if err := row.Scan(&t.Filename, &start, &end); err != nil {
		return nil, err
	}

	var err error
	if t.Start, err = parseDate(start); err != nil {
		return nil, err
	}
	if t.End, err = parseDate(end); err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.Format(task.DateLayout)
}

// parseDate accepts the driver's representation of a DATE column: text in
// YYYY-MM-DD form, or a time value when the driver has already parsed it.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		y, m, day := d.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		return time.Parse(task.DateLayout, d)
	case []byte:
		return time.Parse(task.DateLayout, string(d))
	default:
		return time.Time{}, fmt.Errorf("unexpected date value %T", v)
	}
}
