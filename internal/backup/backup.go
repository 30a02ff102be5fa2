// Package backup keeps timestamped copies of the task store next to it.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/natefinch/atomic"
)

const timestampLayout = "20060102150405"

// Snapshotter writes a consistent copy of an open store.
type Snapshotter interface {
	BackupTo(ctx context.Context, path string) error
}

// Manager creates and prunes backups of a single store file.
type Manager struct {
	dbPath string
	keep   int
	db     Snapshotter
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a Manager. keep is the number of backups retained; 0 keeps all.
func NewManager(dbPath string, keep int, db Snapshotter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{dbPath: dbPath, keep: keep, db: db, logger: logger, now: time.Now}
}

// SnapshotFile copies the store file before it is opened. It returns an empty
// path when there is no store yet.
func (m *Manager) SnapshotFile() (string, error) {
	src, err := os.Open(m.dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer src.Close()

	dst := m.nextPath()
	if err := atomic.WriteFile(dst, src); err != nil {
		return "", fmt.Errorf("copy store to %s: %w", dst, err)
	}
	m.logger.Info("store backed up", "path", dst)

	if err := m.prune(); err != nil {
		return dst, err
	}
	return dst, nil
}

// Snapshot backs up the open store.
func (m *Manager) Snapshot(ctx context.Context) (string, error) {
	if m.db == nil {
		return "", errors.New("no open store to snapshot")
	}
	dst := m.nextPath()
	if err := m.db.BackupTo(ctx, dst); err != nil {
		return "", err
	}
	m.logger.Info("store backed up", "path", dst)

	if err := m.prune(); err != nil {
		return dst, err
	}
	return dst, nil
}

// List returns existing backups, oldest first.
func (m *Manager) List() ([]string, error) {
	matches, err := filepath.Glob(m.dbPath + ".backup.*")
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func (m *Manager) nextPath() string {
	base := fmt.Sprintf("%s.backup.%s", m.dbPath, m.now().Format(timestampLayout))
	path := base
	for i := 1; fileExists(path); i++ {
		path = fmt.Sprintf("%s-%d", base, i)
	}
	return path
}

func (m *Manager) prune() error {
	if m.keep <= 0 {
		return nil
	}
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) <= m.keep {
		return nil
	}
	var errs []error
	for _, path := range backups[:len(backups)-m.keep] {
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("remove old backup: %w", err))
			continue
		}
		m.logger.Debug("old backup removed", "path", path)
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
