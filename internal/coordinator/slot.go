// internal/coordinator/slot.go
//
// Mutation Coordinator.
//
// Context
// -------
// Each entity kind has one modal slot.  A slot is either Closed, creating a
// new record, or editing an existing one, and it holds the draft field set
// the form is bound to.  Only one modal per kind can be open.
//
// Workflow
// --------
//  1. OpenNew / OpenEdit move a Closed slot into an open state.
//  2. Save awaits the store write.  On success it reloads every dependent
//     collection in order, announces the change, and closes the slot.  On
//     failure the slot stays open with its draft and LastError set.
//  3. Cancel / Dismiss close the slot without touching the store.
//
// Notes
// -----
//   - Saving is guarded: a second Save, Cancel, or Dismiss while a write is
//     in flight returns ErrSaveInFlight.
//   - Updates are stamped with the submission instant, not the instant the
//     store applies them.
//   - Slots never edit collection records directly; they only ask for a
//     Reload.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/message"
	"github.com/yanizio/agenda/internal/metrics"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
)

var (
	ErrSlotBusy     = errors.New("another form of this kind is already open")
	ErrSaveInFlight = errors.New("a save is already in progress")
	ErrSlotClosed   = errors.New("no form is open")
)

// State is the modal state of a slot.
type State int

const (
	Closed State = iota
	CreatingNew
	EditingExisting
)

func (s State) String() string {
	switch s {
	case CreatingNew:
		return "creating"
	case EditingExisting:
		return "editing"
	default:
		return "closed"
	}
}

// Writer is the slice of the store a slot writes through.  *store.Table
// satisfies it.
type Writer[R model.Record, F any] interface {
	Insert(ctx context.Context, fields F) (R, error)
	Update(ctx context.Context, id string, fields F, stampedAt time.Time) error
}

// Reloader is a collection refreshed after a write.
type Reloader interface {
	Kind() model.Kind
	Reload(ctx context.Context) error
}

// RefreshError reports dependent reloads that failed after a write
// committed.  The write itself succeeded.
type RefreshError struct {
	Errs []error
}

func (e *RefreshError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "saved, but refresh failed: " + strings.Join(msgs, "; ")
}

func (e *RefreshError) Unwrap() []error { return e.Errs }

// SlotConfig wires a slot.
type SlotConfig[R model.Record, F any] struct {
	Kind       model.Kind
	Writer     Writer[R, F]
	Fields     func(R) F // current field set of a record, for OpenEdit
	Blank      func() F  // defaults for OpenNew; zero value when nil
	Dependents []Reloader
	Publisher  message.Publisher
	Now        func() time.Time
	Log        *zap.Logger
}

// Slot is safe for concurrent use.
type Slot[R model.Record, F any] struct {
	cfg SlotConfig[R, F]

	mu      sync.Mutex
	state   State
	editing string
	draft   F
	saving  bool
	lastErr error
}

// NewSlot returns a Closed slot.
func NewSlot[R model.Record, F any](cfg SlotConfig[R, F]) *Slot[R, F] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Publisher == nil {
		cfg.Publisher = message.Nop{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.L()
	}
	cfg.Log = cfg.Log.With(zap.String("kind", string(cfg.Kind)))
	return &Slot[R, F]{cfg: cfg}
}

// OpenNew opens the slot on a blank draft.
func (s *Slot[R, F]) OpenNew() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Closed {
		return ErrSlotBusy
	}
	var draft F
	if s.cfg.Blank != nil {
		draft = s.cfg.Blank()
	}
	s.state, s.editing, s.draft, s.lastErr = CreatingNew, "", draft, nil
	return nil
}

// OpenEdit opens the slot on rec's current fields.
func (s *Slot[R, F]) OpenEdit(rec R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Closed {
		return ErrSlotBusy
	}
	s.state, s.editing, s.draft, s.lastErr = EditingExisting, rec.RecordID(), s.cfg.Fields(rec), nil
	return nil
}

// Cancel closes the slot and discards the draft.
func (s *Slot[R, F]) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInFlight
	}
	s.reset()
	return nil
}

// Dismiss is Cancel triggered from outside the form, such as a backdrop
// click or the Escape key.
func (s *Slot[R, F]) Dismiss() error { return s.Cancel() }

// Save writes fields and returns the record id.  See the package notes for
// the success and failure paths.
func (s *Slot[R, F]) Save(ctx context.Context, fields F) (string, error) {
	s.mu.Lock()
	switch {
	case s.state == Closed:
		s.mu.Unlock()
		return "", ErrSlotClosed
	case s.saving:
		s.mu.Unlock()
		return "", ErrSaveInFlight
	}
	s.saving = true
	s.draft = fields
	state, id := s.state, s.editing
	stampedAt := s.cfg.Now()
	s.mu.Unlock()

	mode, op := "create", message.OpCreated
	var err error
	if state == CreatingNew {
		var rec R
		rec, err = s.cfg.Writer.Insert(ctx, fields)
		if err == nil {
			id = rec.RecordID()
		}
	} else {
		mode, op = "update", message.OpUpdated
		err = s.cfg.Writer.Update(ctx, id, fields, stampedAt)
	}

	kind := string(s.cfg.Kind)
	if err != nil {
		metrics.SlotSavesTotal.WithLabelValues(kind, mode, store.Outcome(err)).Inc()
		// The record vanished under the form; refresh so the list shows it.
		if errors.Is(err, store.ErrNotFound) {
			s.refresh(ctx)
		}
		s.mu.Lock()
		s.saving = false
		s.lastErr = err
		s.mu.Unlock()
		return "", err
	}
	metrics.SlotSavesTotal.WithLabelValues(kind, mode, metrics.OK).Inc()

	refreshErrs := s.refresh(ctx)
	message.Notify(ctx, s.cfg.Publisher, message.Change{Kind: s.cfg.Kind, Op: op, ID: id, At: stampedAt.UTC()})

	s.mu.Lock()
	s.reset()
	s.mu.Unlock()

	s.cfg.Log.Info("record saved", zap.String("mode", mode), zap.String("id", id))
	if len(refreshErrs) > 0 {
		return id, &RefreshError{Errs: refreshErrs}
	}
	return id, nil
}

// refresh reloads every dependent in order and returns the failures.
func (s *Slot[R, F]) refresh(ctx context.Context) []error {
	var errs []error
	for _, d := range s.cfg.Dependents {
		if d == nil {
			continue
		}
		if err := d.Reload(ctx); err != nil {
			s.cfg.Log.Warn("dependent reload failed", zap.String("dependent", string(d.Kind())), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", d.Kind(), err))
		}
	}
	return errs
}

// reset closes the slot.  Caller holds mu.
func (s *Slot[R, F]) reset() {
	var zero F
	s.state, s.editing, s.draft, s.saving, s.lastErr = Closed, "", zero, false, nil
}

func (s *Slot[R, F]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EditingID is the id being edited, or "".
func (s *Slot[R, F]) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

func (s *Slot[R, F]) Draft() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Slot[R, F]) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// LastError is the error of the most recent failed Save while open.
func (s *Slot[R, F]) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
