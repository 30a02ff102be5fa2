// Package fsstate keeps config-file state as directory membership: a file in
// the enabled directory is active, a file in the disabled directory is not.
package fsstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"

	"github.com/rpggio/confsched/internal/domain/task"
)

// ErrDestinationExists is returned when a move would overwrite a file.
var ErrDestinationExists = errors.New("destination already exists")

// Store resolves and changes the status of config files.
type Store struct {
	enabledDir  string
	disabledDir string
}

// New creates a Store over the two directories.
func New(enabledDir, disabledDir string) *Store {
	return &Store{enabledDir: enabledDir, disabledDir: disabledDir}
}

// EnsureDirs creates both directories if they do not exist.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.enabledDir, s.disabledDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// EnabledDir returns the directory holding active configs.
func (s *Store) EnabledDir() string { return s.enabledDir }

// DisabledDir returns the directory holding inactive configs.
func (s *Store) DisabledDir() string { return s.disabledDir }

// Resolve reports which directory owns filename. Enabled wins if both do.
func (s *Store) Resolve(filename string) (task.Status, string) {
	if exists(filepath.Join(s.enabledDir, filename)) {
		return task.StatusEnabled, s.enabledDir
	}
	if exists(filepath.Join(s.disabledDir, filename)) {
		return task.StatusDisabled, s.disabledDir
	}
	return task.StatusMissing, ""
}

// Enable moves filename from the disabled to the enabled directory.
func (s *Store) Enable(filename string) error {
	return move(filepath.Join(s.disabledDir, filename), filepath.Join(s.enabledDir, filename))
}

// Disable moves filename from the enabled to the disabled directory.
func (s *Store) Disable(filename string) error {
	return move(filepath.Join(s.enabledDir, filename), filepath.Join(s.disabledDir, filename))
}

// Remove deletes filename from both directories and returns the paths removed.
// Absence from either directory is not an error.
func (s *Store) Remove(filename string) ([]string, error) {
	var removed []string
	for _, dir := range []string{s.enabledDir, s.disabledDir} {
		path := filepath.Join(dir, filename)
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// ListEnabled returns the *.yml file names in the enabled directory, sorted.
func (s *Store) ListEnabled() ([]string, error) {
	entries, err := os.ReadDir(s.enabledDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.enabledDir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), task.ConfigExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func move(src, dst string) error {
	if exists(dst) {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("move %s to %s: %w", src, dst, err)
	}
	return copyAndRemove(src, dst)
}

// copyAndRemove handles moves across filesystems, where rename is not possible.
func copyAndRemove(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if err := atomic.WriteFile(dst, f); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	// atomic.WriteFile creates new files 0600.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("set mode on %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}
