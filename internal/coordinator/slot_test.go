package coordinator

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/message"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
)

type fakeWriter struct {
	insertErr error
	updateErr error
	block     chan struct{} // when set, writes wait on it
	updates   []time.Time
}

func (w *fakeWriter) Insert(_ context.Context, f model.LocationFields) (model.Location, error) {
	if w.block != nil {
		<-w.block
	}
	if w.insertErr != nil {
		return model.Location{}, w.insertErr
	}
	return model.Location{Meta: model.Meta{ID: "new-1"}, LocationFields: f}, nil
}

func (w *fakeWriter) Update(_ context.Context, _ string, _ model.LocationFields, at time.Time) error {
	if w.block != nil {
		<-w.block
	}
	w.updates = append(w.updates, at)
	return w.updateErr
}

// journal records reload calls across collections in order.
type journal struct {
	mu    sync.Mutex
	calls []model.Kind
}

type fakeReloader struct {
	kind model.Kind
	j    *journal
	err  error
}

func (r *fakeReloader) Kind() model.Kind { return r.kind }

func (r *fakeReloader) Reload(context.Context) error {
	r.j.mu.Lock()
	r.j.calls = append(r.j.calls, r.kind)
	r.j.mu.Unlock()
	return r.err
}

type recorder struct {
	mu      sync.Mutex
	changes []message.Change
}

func (r *recorder) Publish(_ context.Context, c message.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

var clock = time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)

type harness struct {
	slot   *Slot[model.Location, model.LocationFields]
	w      *fakeWriter
	j      *journal
	events *fakeReloader
	pub    *recorder
}

func newHarness() *harness {
	j := &journal{}
	h := &harness{
		w:      &fakeWriter{},
		j:      j,
		events: &fakeReloader{kind: model.KindEvent, j: j},
		pub:    &recorder{},
	}
	h.slot = NewSlot(SlotConfig[model.Location, model.LocationFields]{
		Kind:       model.KindLocation,
		Writer:     h.w,
		Fields:     func(l model.Location) model.LocationFields { return l.LocationFields },
		Dependents: []Reloader{&fakeReloader{kind: model.KindLocation, j: j}, h.events},
		Publisher:  h.pub,
		Now:        func() time.Time { return clock },
		Log:        zap.NewNop(),
	})
	return h
}

var hall = model.LocationFields{Title: "Main Hall", Address: "123 St"}

func TestOneModalPerKind(t *testing.T) {
	h := newHarness()
	if err := h.slot.OpenNew(); err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	if err := h.slot.OpenNew(); !errors.Is(err, ErrSlotBusy) {
		t.Fatalf("second OpenNew: want ErrSlotBusy, got %v", err)
	}
	if err := h.slot.OpenEdit(model.Location{Meta: model.Meta{ID: "x"}}); !errors.Is(err, ErrSlotBusy) {
		t.Fatalf("OpenEdit while open: want ErrSlotBusy, got %v", err)
	}
	if err := h.slot.Cancel(); err != nil || h.slot.State() != Closed {
		t.Fatalf("Cancel: %v, state %v", err, h.slot.State())
	}
	if _, err := h.slot.Save(context.Background(), hall); !errors.Is(err, ErrSlotClosed) {
		t.Fatalf("Save on closed slot: want ErrSlotClosed, got %v", err)
	}
}

func TestCreateReloadsDependentsThenCloses(t *testing.T) {
	h := newHarness()
	_ = h.slot.OpenNew()

	id, err := h.slot.Save(context.Background(), hall)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != "new-1" {
		t.Fatalf("id = %q", id)
	}
	if want := []model.Kind{model.KindLocation, model.KindEvent}; !slices.Equal(h.j.calls, want) {
		t.Fatalf("reload order = %v, want %v", h.j.calls, want)
	}
	if h.slot.State() != Closed || h.slot.Saving() || h.slot.LastError() != nil {
		t.Fatalf("slot not reset: state=%v saving=%v err=%v", h.slot.State(), h.slot.Saving(), h.slot.LastError())
	}
	if len(h.pub.changes) != 1 || h.pub.changes[0].Op != message.OpCreated || h.pub.changes[0].ID != "new-1" {
		t.Fatalf("changes = %+v", h.pub.changes)
	}
}

func TestEditStampsSubmissionInstant(t *testing.T) {
	h := newHarness()
	rec := model.Location{Meta: model.Meta{ID: "l-1"}, LocationFields: hall}
	if err := h.slot.OpenEdit(rec); err != nil {
		t.Fatalf("OpenEdit: %v", err)
	}
	if h.slot.State() != EditingExisting || h.slot.EditingID() != "l-1" || h.slot.Draft() != hall {
		t.Fatalf("edit state not loaded: %v %q %+v", h.slot.State(), h.slot.EditingID(), h.slot.Draft())
	}

	edited := hall
	edited.Title = "Great Hall"
	id, err := h.slot.Save(context.Background(), edited)
	if err != nil || id != "l-1" {
		t.Fatalf("Save: %q, %v", id, err)
	}
	if len(h.w.updates) != 1 || !h.w.updates[0].Equal(clock) {
		t.Fatalf("update stamp = %v", h.w.updates)
	}
}

func TestFailedSaveKeepsDraft(t *testing.T) {
	h := newHarness()
	h.w.insertErr = &store.ValidationError{Kind: model.KindLocation, Fields: []store.FieldError{{Field: "title", Rule: "required"}}}
	_ = h.slot.OpenNew()

	bad := model.LocationFields{Address: "somewhere"}
	if _, err := h.slot.Save(context.Background(), bad); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if h.slot.State() != CreatingNew || h.slot.Draft() != bad {
		t.Fatalf("slot should stay open with draft: %v %+v", h.slot.State(), h.slot.Draft())
	}
	if !errors.Is(h.slot.LastError(), store.ErrValidation) {
		t.Fatalf("LastError = %v", h.slot.LastError())
	}
	if len(h.j.calls) != 0 || len(h.pub.changes) != 0 {
		t.Fatalf("failed save reloaded or published: %v %v", h.j.calls, h.pub.changes)
	}

	// The user fixes the form and retries.
	h.w.insertErr = nil
	if _, err := h.slot.Save(context.Background(), hall); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if h.slot.State() != Closed {
		t.Fatal("retry did not close the slot")
	}
}

func TestEditOfDeletedRecordRefreshes(t *testing.T) {
	h := newHarness()
	h.w.updateErr = store.ErrNotFound
	_ = h.slot.OpenEdit(model.Location{Meta: model.Meta{ID: "gone"}, LocationFields: hall})

	if _, err := h.slot.Save(context.Background(), hall); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if h.slot.State() != EditingExisting {
		t.Fatalf("slot closed on NotFound: %v", h.slot.State())
	}
	if len(h.j.calls) != 2 {
		t.Fatalf("NotFound should refresh dependents, got %v", h.j.calls)
	}
}

func TestDoubleSubmitGuard(t *testing.T) {
	h := newHarness()
	h.w.block = make(chan struct{})
	_ = h.slot.OpenNew()

	done := make(chan error, 1)
	go func() {
		_, err := h.slot.Save(context.Background(), hall)
		done <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !h.slot.Saving() {
		if time.Now().After(deadline) {
			t.Fatal("save never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := h.slot.Save(context.Background(), hall); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("second Save: want ErrSaveInFlight, got %v", err)
	}
	if err := h.slot.Dismiss(); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("Dismiss during save: want ErrSaveInFlight, got %v", err)
	}

	close(h.w.block)
	if err := <-done; err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if h.slot.State() != Closed {
		t.Fatal("slot not closed after save")
	}
}

func TestRefreshFailureStillCloses(t *testing.T) {
	h := newHarness()
	h.events.err = store.ErrStoreUnavailable
	_ = h.slot.OpenNew()

	id, err := h.slot.Save(context.Background(), hall)
	var re *RefreshError
	if !errors.As(err, &re) {
		t.Fatalf("want *RefreshError, got %v", err)
	}
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("RefreshError should unwrap to the reload error: %v", err)
	}
	if id != "new-1" || h.slot.State() != Closed {
		t.Fatalf("write committed but slot state = %v, id = %q", h.slot.State(), id)
	}
}
