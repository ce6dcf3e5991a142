package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/message"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
)

// Reloaders are the collections a write may invalidate.
type Reloaders struct {
	Events    Reloader
	Locations Reloader
	Contacts  Reloader
}

// Coordinator holds one slot per kind.
type Coordinator struct {
	Events    *Slot[model.Event, model.EventFields]
	Locations *Slot[model.Location, model.LocationFields]
	Contacts  *Slot[model.Contact, model.ContactFields]

	pub message.Publisher
	now func() time.Time
}

// New wires the slots to s and to the collections they refresh.  Events
// show their location, so an event write refreshes locations too, and a
// location write refreshes events.
func New(s *store.Store, c Reloaders, pub message.Publisher, now func() time.Time, log *zap.Logger) *Coordinator {
	if pub == nil {
		pub = message.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		Events: NewSlot(SlotConfig[model.Event, model.EventFields]{
			Kind:       model.KindEvent,
			Writer:     s.Events(),
			Fields:     func(e model.Event) model.EventFields { return e.EventFields },
			Blank:      model.NewEventFields,
			Dependents: []Reloader{c.Events, c.Locations},
			Publisher:  pub,
			Now:        now,
			Log:        log,
		}),
		Locations: NewSlot(SlotConfig[model.Location, model.LocationFields]{
			Kind:       model.KindLocation,
			Writer:     s.Locations(),
			Fields:     func(l model.Location) model.LocationFields { return l.LocationFields },
			Dependents: []Reloader{c.Locations, c.Events},
			Publisher:  pub,
			Now:        now,
			Log:        log,
		}),
		Contacts: NewSlot(SlotConfig[model.Contact, model.ContactFields]{
			Kind:       model.KindContact,
			Writer:     s.Contacts(),
			Fields:     func(c model.Contact) model.ContactFields { return c.ContactFields },
			Dependents: []Reloader{c.Contacts},
			Publisher:  pub,
			Now:        now,
			Log:        log,
		}),
		pub: pub,
		now: now,
	}
}

// Deleted announces a removal made through a collection.
func (c *Coordinator) Deleted(ctx context.Context, kind model.Kind, id string) {
	message.Notify(ctx, c.pub, message.Change{Kind: kind, Op: message.OpDeleted, ID: id, At: c.now().UTC()})
}
