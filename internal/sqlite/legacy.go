package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Stores written by earlier console releases keyed both tables on an integer id,
// allowed duplicate task filenames and had no logs.details column. CREATE TABLE
// IF NOT EXISTS would leave those tables in place, so they are moved aside first.

const (
	legacyTasksTable = "tasks_legacy"
	legacyLogsTable  = "logs_legacy"
)

// upgradeLegacySchema renames legacy tables out of the way so the embedded
// schema can create current ones, then copies their rows across.
// It reports whether anything was upgraded.
func (db *DB) upgradeLegacySchema(ctx context.Context) (bool, error) {
	taskCols, err := db.tableColumns(ctx, "tasks")
	if err != nil {
		return false, err
	}
	logCols, err := db.tableColumns(ctx, "logs")
	if err != nil {
		return false, err
	}

	legacyTasks := len(taskCols) > 0 && taskCols["id"]
	legacyLogs := len(logCols) > 0 && !logCols["details"]
	if !legacyTasks && !legacyLogs {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin schema upgrade: %w", err)
	}
	defer tx.Rollback()

	if legacyTasks {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE tasks RENAME TO `+legacyTasksTable); err != nil {
			return false, fmt.Errorf("failed to move legacy tasks table: %w", err)
		}
	}
	if legacyLogs {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE logs RENAME TO `+legacyLogsTable); err != nil {
			return false, fmt.Errorf("failed to move legacy logs table: %w", err)
		}
	}

	if err := applySchema(ctx, tx); err != nil {
		return false, err
	}

	if legacyTasks {
		// Newest row wins when the old table held duplicates.
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO tasks (filename, start_date, end_date)
			SELECT filename, start_date, end_date FROM `+legacyTasksTable+`
			ORDER BY id DESC`); err != nil {
			return false, fmt.Errorf("failed to copy legacy tasks: %w", err)
		}
	}
	if legacyLogs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO logs (id, action, filename, user, timestamp)
			SELECT 'legacy-' || id, action, filename, user, timestamp FROM `+legacyLogsTable); err != nil {
			return false, fmt.Errorf("failed to copy legacy logs: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit schema upgrade: %w", err)
	}
	return true, nil
}

// tableColumns returns the column names of table, or an empty set if it does not exist.
func (db *DB) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
