package activity

import "time"

// Action names the kind of mutation an entry records
type Action string

const (
	ActionAdd             Action = "add"
	ActionForceAdd        Action = "force_add"
	ActionDelete          Action = "delete"
	ActionEdit            Action = "edit"
	ActionToggle          Action = "toggle"
	ActionReconcileRemove Action = "reconcile_remove"
	ActionReconcileAdd    Action = "reconcile_add"
	ActionCreateTemplate  Action = "create_template"
	ActionApplyWindow     Action = "apply_window"
)

// ActivityEntry is one row of the audit trail
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Filename  string    `json:"filename"`
	User      string    `json:"user"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
