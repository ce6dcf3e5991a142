package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/metrics"
	"github.com/yanizio/agenda/internal/model"
)

// tableDef describes one kind's table.  columns lists the writable
// columns in the order values() binds them.
type tableDef[R model.Record, F any] struct {
	kind      model.Kind
	columns   []string
	values    func(F) []any
	normalize func(F) F
	build     func(model.Meta, F) R
	sorts     map[SortField]bool // allowed field → is text
	joined    func(ctx context.Context, t *Table[R, F], where, order string, args ...any) ([]R, error)
}

// Table is the typed accessor for one kind.
type Table[R model.Record, F any] struct {
	s   *Store
	def tableDef[R, F]
}

// Kind reports the entity kind served by t.
func (t *Table[R, F]) Kind() model.Kind { return t.def.kind }

// List returns every record ordered by opts.Order.  JoinLocation attaches
// each event's location, or nil when the reference is absent or dangling.
func (t *Table[R, F]) List(ctx context.Context, opts ListOptions) (out []R, err error) {
	defer t.observe("list", time.Now(), &err)

	if opts.JoinLocation {
		if t.def.joined == nil {
			return nil, fmt.Errorf("%w: %s cannot join locations", ErrQuery, t.def.kind)
		}
		order, err := orderClause(t.def.kind, opts.Order, t.def.sorts, "t.")
		if err != nil {
			return nil, err
		}
		return t.def.joined(ctx, t, "", order)
	}

	order, err := orderClause(t.def.kind, opts.Order, t.def.sorts, "")
	if err != nil {
		return nil, err
	}
	out = make([]R, 0, 16)
	if err := t.s.q.SelectContext(ctx, &out, t.selectSQL()+order); err != nil {
		return nil, t.wrap("list", err)
	}
	return out, nil
}

// Get returns one record.  Events are joined with their location.
func (t *Table[R, F]) Get(ctx context.Context, id string) (rec R, err error) {
	defer t.observe("get", time.Now(), &err)

	if t.def.joined != nil {
		rows, err := t.def.joined(ctx, t, " WHERE t.id = ?", "", id)
		if err != nil {
			return rec, err
		}
		if len(rows) == 0 {
			return rec, t.wrap("get", ErrNotFound)
		}
		return rows[0], nil
	}
	if err := t.s.q.GetContext(ctx, &rec, t.selectSQL()+" WHERE id = ?", id); err != nil {
		return rec, t.wrap("get", err)
	}
	return rec, nil
}

// Insert validates fields, assigns id, created_at, and updated_at, and
// returns the stored record.
func (t *Table[R, F]) Insert(ctx context.Context, fields F) (rec R, err error) {
	defer t.observe("insert", time.Now(), &err)

	fields = t.def.normalize(fields)
	if err := check(t.s.validate, t.def.kind, fields); err != nil {
		return rec, err
	}

	now := t.s.stamp()
	meta := model.Meta{ID: t.s.newID(), CreatedAt: now, UpdatedAt: now}

	cols := append([]string{"id", "created_at", "updated_at"}, t.def.columns...)
	args := append([]any{meta.ID, meta.CreatedAt, meta.UpdatedAt}, t.def.values(fields)...)
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.def.kind, strings.Join(cols, ", "), placeholders(len(cols)))

	if _, err := t.s.q.ExecContext(ctx, q, args...); err != nil {
		return rec, t.wrap("insert", err)
	}
	return t.def.build(meta, fields), nil
}

// Update replaces the full field set of id.  updated_at becomes stampedAt,
// or the store clock when stampedAt is zero, but never moves backwards.
func (t *Table[R, F]) Update(ctx context.Context, id string, fields F, stampedAt time.Time) (err error) {
	defer t.observe("update", time.Now(), &err)

	fields = t.def.normalize(fields)
	if err := check(t.s.validate, t.def.kind, fields); err != nil {
		return err
	}
	if stampedAt.IsZero() {
		stampedAt = t.s.stamp()
	}
	stampedAt = stampedAt.UTC().Truncate(time.Microsecond)

	sets := make([]string, 0, len(t.def.columns)+1)
	for _, c := range t.def.columns {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "updated_at = CASE WHEN updated_at > ? THEN updated_at ELSE ? END")
	args := append(t.def.values(fields), stampedAt, stampedAt, id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.def.kind, strings.Join(sets, ", "))
	res, err := t.s.q.ExecContext(ctx, q, args...)
	if err != nil {
		return t.wrap("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.wrap("update", err)
	}
	if n > 0 {
		return nil
	}
	// Some drivers report zero changed rows when the values are identical;
	// only a missing row is NotFound.
	ok, err := t.exists(ctx, id)
	if err != nil {
		return t.wrap("update", err)
	}
	if !ok {
		return t.wrap("update", ErrNotFound)
	}
	return nil
}

// Delete removes id permanently.  A missing id is ErrNotFound.
func (t *Table[R, F]) Delete(ctx context.Context, id string) (err error) {
	defer t.observe("delete", time.Now(), &err)

	res, err := t.s.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.def.kind), id)
	if err != nil {
		return t.wrap("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.wrap("delete", err)
	}
	if n == 0 {
		return t.wrap("delete", ErrNotFound)
	}
	return nil
}

// Count returns the number of rows.
func (t *Table[R, F]) Count(ctx context.Context) (n int, err error) {
	defer t.observe("count", time.Now(), &err)

	if err := t.s.q.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.def.kind)); err != nil {
		return 0, t.wrap("count", err)
	}
	return n, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func (t *Table[R, F]) selectSQL() string {
	cols := append([]string{"id", "created_at", "updated_at"}, t.def.columns...)
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), t.def.kind)
}

func (t *Table[R, F]) exists(ctx context.Context, id string) (bool, error) {
	var n int
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", t.def.kind)
	if err := t.s.q.GetContext(ctx, &n, q, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// wrap classifies err and prefixes kind and operation.
func (t *Table[R, F]) wrap(op string, err error) error {
	return fmt.Errorf("%s %s: %w", t.def.kind, op, classify(err))
}

// observe records metrics and logs unexpected failures.  NotFound and
// validation outcomes are expected and logged at debug only.
func (t *Table[R, F]) observe(op string, start time.Time, errp *error) {
	kind := string(t.def.kind)
	oc := Outcome(*errp)
	metrics.StoreOpSeconds.WithLabelValues(kind, op).Observe(time.Since(start).Seconds())
	metrics.StoreOpsTotal.WithLabelValues(kind, op, oc).Inc()

	switch oc {
	case metrics.OK:
	case metrics.NotFound, metrics.Invalid:
		t.s.log.Debug("store op rejected",
			zap.String("kind", kind), zap.String("op", op), zap.Error(*errp))
	default:
		t.s.log.Error("store op failed",
			zap.String("kind", kind), zap.String("op", op), zap.Error(*errp))
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
