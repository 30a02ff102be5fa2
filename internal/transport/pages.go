package transport

import (
	"embed"
	"html/template"
	"net/url"
	"strings"

	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"pathEscape":  url.PathEscape,
	"statusLabel": statusLabel,
}).ParseFS(templateFS, "templates/*.html"))

const recentActivityLimit = 20

type indexPage struct {
	Tasks     []task.TaskView
	Available []string
	Activity  []activity.ActivityEntry
}

type conflictPage struct {
	Filename string
	Start    string
	End      string
	ForceURL string
}

func baseName(filename string) string {
	return strings.TrimSuffix(filename, task.ConfigExt)
}

func statusLabel(s task.Status) string {
	switch s {
	case task.StatusEnabled:
		return "Enabled"
	case task.StatusDisabled:
		return "Disabled"
	default:
		return "File missing"
	}
}
