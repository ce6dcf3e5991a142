package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/agenda/internal/calendar"
	"github.com/yanizio/agenda/internal/recurrence"
	"github.com/yanizio/agenda/internal/workspace"
)

const (
	defaultOccurrences = 10
	maxOccurrences     = 100
)

// calendar serves every loaded event as one iCalendar feed.
func (s *server) calendar(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Load(r.Context(), workspace.TabEvents); err != nil {
		s.writeError(w, r, err)
		return
	}
	body := calendar.Export(s.Workspace.Events.Records(), s.ProdID)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	_, _ = w.Write([]byte(body))
}

type occurrencesResponse struct {
	ID    string      `json:"id"`
	Dates []time.Time `json:"dates"`
}

// occurrences lists the next dates of one event over the coming year.
func (s *server) occurrences(w http.ResponseWriter, r *http.Request) {
	limit := defaultOccurrences
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxOccurrences {
			writeMessage(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	id := chi.URLParam(r, "id")
	ev, err := s.Store.Events().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.Now()
	dates := recurrence.Between(ev.EventFields, now, now.AddDate(1, 0, 0), limit)
	if dates == nil {
		dates = []time.Time{}
	}
	writeJSON(w, http.StatusOK, occurrencesResponse{ID: id, Dates: dates})
}
