// internal/workspace/workspace.go
//
// Top-level container for one dashboard session.
//
// Context
// -------
// The workspace owns the navigation state (active tab), one Collection per
// entity kind, and the mutation Coordinator wired to those collections.
// Child views receive the pieces they need from here; nothing below the
// workspace holds state of its own that another view could mutate.
//
// Workflow
// --------
//  1. New builds the collections over the store and wires the coordinator.
//  2. SetTab activates a tab and reloads only what that tab displays.  The
//     dashboard tab loads all three kinds concurrently.
//  3. Summary derives the overview from whatever is loaded.
//  4. Close tears the collections down; in-flight reloads are discarded.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/agenda/internal/collection"
	"github.com/yanizio/agenda/internal/coordinator"
	"github.com/yanizio/agenda/internal/dashboard"
	"github.com/yanizio/agenda/internal/message"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
)

// Tab is one navigation destination.
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabEvents    Tab = "events"
	TabLocations Tab = "locations"
	TabContacts  Tab = "contacts"
	TabSettings  Tab = "settings"
	TabHelp      Tab = "help"
)

// Tabs lists the tabs in sidebar order.
var Tabs = []Tab{TabDashboard, TabEvents, TabLocations, TabContacts, TabSettings, TabHelp}

// ParseTab accepts a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("workspace: unknown tab %q", s)
}

// Options configures New.
type Options struct {
	// FoldOrdering sorts text columns case-insensitively.
	FoldOrdering bool
	Publisher    message.Publisher
	Now          func() time.Time
	Log          *zap.Logger
}

// Workspace is safe for concurrent use.
type Workspace struct {
	Events    *collection.Collection[model.Event]
	Locations *collection.Collection[model.Location]
	Contacts  *collection.Collection[model.Contact]
	Mutations *coordinator.Coordinator

	now func() time.Time
	log *zap.Logger

	mu  sync.Mutex
	tab Tab
}

// New builds a workspace over s, starting on the dashboard tab.  Nothing is
// loaded until SetTab or Load is called.
func New(s *store.Store, o Options) *Workspace {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = zap.L()
	}

	es, ls, cs := collection.EventSpec, collection.LocationSpec, collection.ContactSpec
	es.Order.Fold, ls.Order.Fold, cs.Order.Fold = o.FoldOrdering, o.FoldOrdering, o.FoldOrdering

	w := &Workspace{
		Events:    collection.New[model.Event](s.Events(), es, o.Log),
		Locations: collection.New[model.Location](s.Locations(), ls, o.Log),
		Contacts:  collection.New[model.Contact](s.Contacts(), cs, o.Log),
		now:       o.Now,
		log:       o.Log,
		tab:       TabDashboard,
	}
	// Events carry their joined location, so removing a location must
	// refresh them too.
	w.Locations.AlsoReload(w.Events)

	w.Mutations = coordinator.New(s, coordinator.Reloaders{
		Events:    w.Events,
		Locations: w.Locations,
		Contacts:  w.Contacts,
	}, o.Publisher, o.Now, o.Log)
	return w
}

// Tab returns the active tab.
func (w *Workspace) Tab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tab
}

// SetTab activates t and loads the collections it displays.
func (w *Workspace) SetTab(ctx context.Context, t Tab) error {
	if _, err := ParseTab(string(t)); err != nil {
		return err
	}
	w.mu.Lock()
	w.tab = t
	w.mu.Unlock()
	return w.Load(ctx, t)
}

// Load reloads the collections t displays without changing the active
// tab.  The events tab also loads locations for the event form's picker.
func (w *Workspace) Load(ctx context.Context, t Tab) error {
	var reloads []func(context.Context) error
	switch t {
	case TabDashboard:
		reloads = []func(context.Context) error{w.Events.Reload, w.Locations.Reload, w.Contacts.Reload}
	case TabEvents:
		reloads = []func(context.Context) error{w.Events.Reload, w.Locations.Reload}
	case TabLocations:
		reloads = []func(context.Context) error{w.Locations.Reload}
	case TabContacts:
		reloads = []func(context.Context) error{w.Contacts.Reload}
	default:
		return nil
	}

	// A failed reload does not cancel its siblings; each collection keeps
	// whatever it managed to load.
	var g errgroup.Group
	for _, r := range reloads {
		g.Go(func() error { return r(ctx) })
	}
	if err := g.Wait(); err != nil {
		w.log.Warn("tab load failed", zap.String("tab", string(t)), zap.Error(err))
		return err
	}
	return nil
}

// Summary computes the dashboard from the loaded collections.
func (w *Workspace) Summary() dashboard.Summary {
	return dashboard.Compute(w.Events.Records(), w.Locations.Records(), w.Contacts.Records(), w.now())
}

// Close discards future reload results.  The store handle is not closed.
func (w *Workspace) Close() {
	w.Events.Close()
	w.Locations.Close()
	w.Contacts.Close()
}
