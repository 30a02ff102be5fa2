package task

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// IsProtected reports whether name refers to the global config in any case.
func IsProtected(name string) bool {
	return strings.Contains(strings.ToLower(name), GlobalConfigName)
}

// ValidateFilename rejects empty names and anything that could escape the config directories.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidFilename)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must use YYYY-MM-DD", ErrInvalidInput, value)
	}
	return d, nil
}

// ParseWindow parses both dates and enforces start <= end.
func ParseWindow(start, end string) (time.Time, time.Time, error) {
	s, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, start, end)
	}
	return s, e, nil
}

// validateTarget applies the checks every mutation shares. Protection comes first
// so a reserved name is rejected before anything else is inspected.
func validateTarget(name string) error {
	if IsProtected(name) {
		return fmt.Errorf("%w: %s", ErrProtected, name)
	}
	return ValidateFilename(name)
}
