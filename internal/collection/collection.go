// internal/collection/collection.go
//
// Entity Collection.
//
// Context
// -------
// A Collection holds the loaded records of one entity kind together with
// the list-screen state that belongs to them: the loading flag, the search
// text, and the classification filter.  The filtered view is never stored;
// it is derived from those three values each time it is read.
//
// Workflow
// --------
//  1. Reload fetches the full list from the store and replaces Records
//     wholesale.  The store's ordering is kept.
//  2. SetSearchText / SetClassificationFilter change only local state.
//  3. DeleteOne asks a Confirmer, deletes through the store, and reloads
//     itself and then every collection registered with AlsoReload, so a
//     removed location disappears from the events that joined it.
//
// Notes
// -----
//   - Every Reload carries a generation number.  A result older than the
//     one already applied, or arriving after Close, is dropped.
//   - On failure Records keep their previous value and the error is
//     returned to the caller.
//   - Oxford commas, two spaces after periods.
package collection

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/metrics"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
)

// ErrClosed is returned by operations on a closed Collection.
var ErrClosed = errors.New("collection closed")

// Lister is the slice of the store a Collection needs.  *store.Table
// satisfies it.
type Lister[R model.Record] interface {
	List(ctx context.Context, opts store.ListOptions) ([]R, error)
	Delete(ctx context.Context, id string) error
}

// Reloader is anything that can refresh itself from the store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Collection is safe for concurrent use.
type Collection[R model.Record] struct {
	spec Spec[R]
	src  Lister[R]
	log  *zap.Logger

	mu       sync.Mutex
	records  []R
	inflight int
	issued   uint64
	applied  uint64
	search   string
	class    model.Classification
	closed   bool
	deps     []Reloader
}

// New returns an empty Collection over src.  A nil logger uses zap.L().
func New[R model.Record](src Lister[R], spec Spec[R], log *zap.Logger) *Collection[R] {
	if log == nil {
		log = zap.L()
	}
	return &Collection[R]{
		spec:  spec,
		src:   src,
		log:   log.With(zap.String("kind", string(spec.Kind))),
		class: model.ClassificationAll,
	}
}

// AlsoReload registers collections that show data of c's kind and must
// be refreshed after DeleteOne removes a record.  Nil entries are ignored.
func (c *Collection[R]) AlsoReload(deps ...Reloader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range deps {
		if d != nil {
			c.deps = append(c.deps, d)
		}
	}
}

// Kind reports the entity kind held by c.
func (c *Collection[R]) Kind() model.Kind { return c.spec.Kind }

// Spec returns the list behaviour c was built with.
func (c *Collection[R]) Spec() Spec[R] { return c.spec }

// Reload replaces Records with a fresh list from the store.
func (c *Collection[R]) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.issued++
	gen := c.issued
	c.inflight++
	c.mu.Unlock()

	recs, err := c.src.List(ctx, store.ListOptions{Order: c.spec.Order, JoinLocation: c.spec.Join})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	kind := string(c.spec.Kind)
	switch {
	case c.closed:
		metrics.CollectionReloadsTotal.WithLabelValues(kind, metrics.Discarded).Inc()
		return ErrClosed
	case err != nil:
		metrics.CollectionReloadsTotal.WithLabelValues(kind, store.Outcome(err)).Inc()
		c.log.Warn("reload failed", zap.Uint64("generation", gen), zap.Error(err))
		return fmt.Errorf("reload %s: %w", kind, err)
	case gen < c.applied:
		metrics.CollectionReloadsTotal.WithLabelValues(kind, metrics.Stale).Inc()
		c.log.Debug("stale reload dropped", zap.Uint64("generation", gen), zap.Uint64("applied", c.applied))
		return nil
	}

	c.applied = gen
	c.records = recs
	metrics.CollectionReloadsTotal.WithLabelValues(kind, metrics.OK).Inc()
	return nil
}

// Records returns a copy of the loaded records in store order.
func (c *Collection[R]) Records() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Loading reports whether any reload is in flight.
func (c *Collection[R]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Loaded reports whether at least one reload has been applied.
func (c *Collection[R]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied > 0
}

func (c *Collection[R]) SearchText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SetSearchText changes the search text.  It never touches the store.
func (c *Collection[R]) SetSearchText(s string) {
	c.mu.Lock()
	c.search = s
	c.mu.Unlock()
}

func (c *Collection[R]) ClassificationFilter() model.Classification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.class
}

// SetClassificationFilter narrows the view to one classification.  "" and
// ClassificationAll clear it.  Kinds without a classification ignore it.
func (c *Collection[R]) SetClassificationFilter(cl model.Classification) {
	if cl == "" {
		cl = model.ClassificationAll
	}
	c.mu.Lock()
	c.class = cl
	c.mu.Unlock()
}

// FilteredView yields the records matching the current search text and
// filter.  The state is captured when FilteredView is called.
func (c *Collection[R]) FilteredView() iter.Seq[R] {
	c.mu.Lock()
	recs, search, class := c.records, c.search, c.class
	c.mu.Unlock()
	return Filter(recs, c.spec, search, class)
}

// View collects FilteredView into a slice.
func (c *Collection[R]) View() []R {
	return slices.Collect(c.FilteredView())
}

// DeleteOutcome reports how DeleteOne resolved.
type DeleteOutcome int

const (
	DeleteCancelled   DeleteOutcome = iota // user declined, no store call
	DeleteRemoved                          // row deleted and list reloaded
	DeleteAlreadyGone                      // row was already missing; list reloaded
	DeleteFailed                           // store refused; Records unchanged
)

func (o DeleteOutcome) String() string {
	switch o {
	case DeleteCancelled:
		return "cancelled"
	case DeleteRemoved:
		return "removed"
	case DeleteAlreadyGone:
		return "already_gone"
	default:
		return "failed"
	}
}

// DeleteOne confirms, deletes id, and reloads c and its dependents.  A
// missing id is treated as already deleted.  The returned error is the
// delete failure, or the joined reload failures after a successful delete.
// A nil confirm is rejected.
func (c *Collection[R]) DeleteOne(ctx context.Context, id string, confirm Confirmer) (DeleteOutcome, error) {
	if confirm == nil {
		return DeleteCancelled, errors.New("collection: DeleteOne requires a Confirmer")
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return DeleteCancelled, ErrClosed
	}

	ok, err := confirm.Confirm(ctx, c.spec.Prompt)
	if err != nil {
		return DeleteCancelled, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return DeleteCancelled, nil
	}

	outcome := DeleteRemoved
	if err := c.src.Delete(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("delete failed", zap.String("id", id), zap.Error(err))
			return DeleteFailed, err
		}
		outcome = DeleteAlreadyGone
		c.log.Info("delete raced with another removal", zap.String("id", id))
	}

	c.mu.Lock()
	deps := slices.Clone(c.deps)
	c.mu.Unlock()

	errs := []error{c.Reload(ctx)}
	for _, d := range deps {
		errs = append(errs, d.Reload(ctx))
	}
	return outcome, errors.Join(errs...)
}

// Close stops c from applying further reloads.  Records stay readable.
func (c *Collection[R]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
