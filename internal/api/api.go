// internal/api/api.go
//
// JSON API over one dashboard workspace.
//
// Context
// -------
// The router exposes the workspace the way the dashboard screens use it:
// a tab switch loads what the tab shows, lists are filtered client-style
// over the loaded collection, and writes go through the per-kind form
// slot so the one-form-per-kind rule holds for HTTP callers too.
//
// Routes
// ------
//
//	GET    /healthz                          store ping
//	GET    /metrics                          Prometheus
//	GET    /api/tab                          active tab
//	PUT    /api/tab/{tab}                    switch tab and load it
//	GET    /api/dashboard                    stats, upcoming, recent, next dates
//	GET    /api/events/calendar.ics          iCalendar export
//	GET    /api/events/{id}/occurrences      next dates of one event
//	GET    /api/{kind}                       ?q=&classification=&sort=&desc=
//	POST   /api/{kind}                       create through the form slot
//	GET    /api/{kind}/form                  form slot state
//	DELETE /api/{kind}/form                  dismiss the form
//	GET    /api/{kind}/{id}
//	PUT    /api/{kind}/{id}                  edit through the form slot
//	DELETE /api/{kind}/{id}?confirm=true     confirmed delete
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/calendar"
	"github.com/yanizio/agenda/internal/dashboard"
	"github.com/yanizio/agenda/internal/middleware"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
	"github.com/yanizio/agenda/internal/workspace"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Store      *store.Store
	Workspace  *workspace.Workspace
	ForceHTTPS bool
	ProdID     string // calendar PRODID; calendar.DefaultProdID when empty
	Now        func() time.Time
	Log        *zap.Logger
}

type server struct {
	Deps
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.L()
	}
	if d.ProdID == "" {
		d.ProdID = calendar.DefaultProdID
	}
	s := &server{Deps: d}
	ws := d.Workspace

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(d.Log.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(d.ForceHTTPS))
	r.Use(middleware.Security)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tab", s.getTab)
		r.Put("/tab/{tab}", s.setTab)
		r.Get("/dashboard", s.dashboard)

		events := &resource[model.Event, model.EventFields]{
			server: s, kind: model.KindEvent, tab: workspace.TabEvents,
			coll: ws.Events, table: d.Store.Events(), slot: ws.Mutations.Events,
		}
		r.Route("/events", func(r chi.Router) {
			r.Get("/calendar.ics", s.calendar)
			r.Get("/{id}/occurrences", s.occurrences)
			events.mount(r)
		})
		r.Route("/locations", (&resource[model.Location, model.LocationFields]{
			server: s, kind: model.KindLocation, tab: workspace.TabLocations,
			coll: ws.Locations, table: d.Store.Locations(), slot: ws.Mutations.Locations,
		}).mount)
		r.Route("/contacts", (&resource[model.Contact, model.ContactFields]{
			server: s, kind: model.KindContact, tab: workspace.TabContacts,
			coll: ws.Contacts, table: d.Store.Contacts(), slot: ws.Mutations.Contacts,
		}).mount)
	})
	return r
}

//
// Workspace-level handlers
//

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DB().PingContext(r.Context()); err != nil {
		s.Log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tabResponse struct {
	Tab  workspace.Tab   `json:"tab"`
	Tabs []workspace.Tab `json:"tabs"`
}

func (s *server) getTab(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tabResponse{Tab: s.Workspace.Tab(), Tabs: workspace.Tabs})
}

func (s *server) setTab(w http.ResponseWriter, r *http.Request) {
	t, err := workspace.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	if err := s.Workspace.SetTab(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tabResponse{Tab: t, Tabs: workspace.Tabs})
}

type dashboardResponse struct {
	dashboard.Summary
	Next []dashboard.Occurrence `json:"next"`
}

func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Load(r.Context(), workspace.TabDashboard); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Summary: s.Workspace.Summary(),
		Next:    dashboard.NextOccurrences(s.Workspace.Events.Records(), s.Now(), dashboard.UpcomingLimit),
	})
}
