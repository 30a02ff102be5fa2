package task

import "time"

// DateLayout is the on-disk and wire format of schedule dates.
const DateLayout = "2006-01-02"

// GlobalConfigName is the recording tool's base config. It is never scheduled.
const GlobalConfigName = "global.yml"

// ConfigExt is the extension of every schedulable config file.
const ConfigExt = ".yml"

// Status is a config file's state as derived from directory membership
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
	StatusMissing  Status = "missing"
)

// Task is a scheduled validity window for a config file
type Task struct {
	Filename string
	Start    time.Time
	End      time.Time
}

// Contains reports whether day falls inside the window, bounds included.
func (t Task) Contains(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(t.Start) && !d.After(t.End)
}

// View pairs the task with its resolved status.
func (t Task) View(status Status) TaskView {
	return TaskView{
		Filename: t.Filename,
		Start:    t.Start.Format(DateLayout),
		End:      t.End.Format(DateLayout),
		Status:   status,
	}
}

// TaskView is a listing row
type TaskView struct {
	Filename string `json:"filename"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Status   Status `json:"status"`
}

// WindowRequest carries a filename and its requested window as entered by the user.
type WindowRequest struct {
	Filename string
	Start    string
	End      string
}

// DeleteResult reports what a delete actually removed.
type DeleteResult struct {
	RecordRemoved bool     `json:"record_removed"`
	FilesRemoved  []string `json:"files_removed"`
}

// ReconcileResult lists the records a reconcile pass dropped and created.
type ReconcileResult struct {
	Removed []string `json:"removed"`
	Added   []string `json:"added"`
}

// ApplyResult lists the files moved by window enforcement.
type ApplyResult struct {
	Enabled  []string `json:"enabled"`
	Disabled []string `json:"disabled"`
}

// truncateDay returns midnight of t's UTC calendar day.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
