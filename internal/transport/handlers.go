package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.writeError(w, "list", err)
		return
	}
	available, err := s.tasks.AvailableConfigs()
	if err != nil {
		s.writeError(w, "list", err)
		return
	}

	page := indexPage{Tasks: tasks, Available: available}
	if s.activity != nil {
		entries, err := s.activity.GetRecentActivity(r.Context(), activity.ListActivityOptions{Limit: recentActivityLimit})
		if err != nil {
			s.logger.Warn("failed to load activity", "error", err)
		}
		page.Activity = entries
	}

	s.render(w, http.StatusOK, "index.html", page)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	base := baseName(strings.TrimSpace(r.FormValue("filename")))
	if base == "" {
		s.writeError(w, "add", task.ErrInvalidFilename)
		return
	}
	req := task.WindowRequest{
		Filename: base + task.ConfigExt,
		Start:    r.FormValue("start"),
		End:      r.FormValue("end"),
	}

	if _, err := s.tasks.Add(r.Context(), req); err != nil {
		if errors.Is(err, task.ErrDuplicate) {
			s.render(w, http.StatusConflict, "conflict.html", conflictPage{
				Filename: req.Filename,
				Start:    req.Start,
				End:      req.End,
				ForceURL: forceAddURL(base, req.Start, req.End),
			})
			return
		}
		s.writeError(w, "add", err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleForceAdd(w http.ResponseWriter, r *http.Request) {
	base := baseName(chi.URLParam(r, "filename"))
	req := task.WindowRequest{
		Filename: base + task.ConfigExt,
		Start:    r.URL.Query().Get("start"),
		End:      r.URL.Query().Get("end"),
	}
	if _, err := s.tasks.ForceAdd(r.Context(), req); err != nil {
		s.writeError(w, "force add", err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := s.tasks.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		s.writeError(w, "delete", err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if _, err := s.tasks.Toggle(r.Context(), chi.URLParam(r, "filename")); err != nil {
		s.writeError(w, "toggle", err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	req := task.WindowRequest{
		Filename: chi.URLParam(r, "filename"),
		Start:    r.FormValue("start"),
		End:      r.FormValue("end"),
	}
	if _, err := s.tasks.EditWindow(r.Context(), req); err != nil {
		s.writeError(w, "edit", err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, "create template", errors.Join(cfgtemplate.ErrInvalidRequest, err))
		return
	}
	req := cfgtemplate.Request{
		TaskName: strings.TrimSpace(r.PostForm.Get("taskname")),
		URL:      strings.TrimSpace(r.PostForm.Get("url")),
		Tags:     r.PostForm.Get("tags"),
		Repost:   r.PostForm.Has("is_repost"),
	}
	if _, err := s.templates.Generate(r.Context(), req); err != nil {
		s.writeError(w, "create template", err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render failed", "template", name, "error", err)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func forceAddURL(base, start, end string) string {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	return "/force_add/" + url.PathEscape(base) + "?" + q.Encode()
}
