package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coursedesk/reminder-engine/internal/alert"
	"github.com/coursedesk/reminder-engine/internal/model"
	"github.com/coursedesk/reminder-engine/internal/repo"
	"github.com/coursedesk/reminder-engine/internal/scheduler"
)

type Handler struct {
	evaluators map[string]*scheduler.Scheduler
	tasks      repo.TaskRepository
	feed       *alert.Feed
}

func NewHandler(evaluators map[string]*scheduler.Scheduler, tasks repo.TaskRepository, feed *alert.Feed) *Handler {
	return &Handler{
		evaluators: evaluators,
		tasks:      tasks,
		feed:       feed,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) evaluator(w http.ResponseWriter, r *http.Request) (*scheduler.Scheduler, bool) {
	name := r.PathValue("name")
	s, ok := h.evaluators[name]
	if !ok {
		http.Error(w, "unknown evaluator: "+name, http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func (h *Handler) EvaluatorStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.evaluator(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, evaluatorStatus(s))
}

func (h *Handler) EvaluatorStart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.evaluator(w, r)
	if !ok {
		return
	}
	s.Start()
	writeJSON(w, http.StatusOK, evaluatorStatus(s))
}

func (h *Handler) EvaluatorStop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.evaluator(w, r)
	if !ok {
		return
	}
	s.Stop()
	writeJSON(w, http.StatusOK, evaluatorStatus(s))
}

func (h *Handler) EvaluatorRun(w http.ResponseWriter, r *http.Request) {
	s, ok := h.evaluator(w, r)
	if !ok {
		return
	}
	ran := s.RunNow(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ran":     ran,
		"running": s.IsRunning(),
	})
}

func evaluatorStatus(s *scheduler.Scheduler) map[string]any {
	return map[string]any{
		"name":         s.Name(),
		"running":      s.IsRunning(),
		"skippedTicks": s.SkippedTicks(),
	}
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	status := model.MessageStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.MessageSent
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)

	items, err := h.tasks.ListByMessageStatus(r.Context(), status, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type alertView struct {
	ID      int64        `json:"id"`
	Kind    string       `json:"kind"`
	Title   string       `json:"title"`
	Body    string       `json:"body"`
	At      string       `json:"at"`
	Actions []actionView `json:"actions"`
}

type actionView struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.feed.Snapshot()

	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		v := alertView{
			ID:    a.ID,
			Kind:  string(a.Kind),
			Title: a.Title,
			Body:  a.Body,
			At:    a.At.Format(time.RFC3339),
		}
		for _, action := range a.Actions {
			v.Actions = append(v.Actions, actionView{Label: action.Label, URL: action.URL})
		}
		out = append(out, v)
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) InvokeAlertAction(w http.ResponseWriter, r *http.Request) {
	alertID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid alert id", http.StatusBadRequest)
		return
	}
	actionIdx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		http.Error(w, "invalid action index", http.StatusBadRequest)
		return
	}

	if err := h.feed.Invoke(r.Context(), alertID, actionIdx); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repo.ErrStaleState) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
