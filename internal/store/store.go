// internal/store/store.go
//
// Record Store Client.
//
// Context
// -------
// The store is the single point of access to the persisted directory.  It
// exposes one typed Table per entity kind, and every Table offers the same
// operation set:
//
//	List    – ordered read; events may eagerly join their location.
//	Get     – one record by id.
//	Insert  – validate, assign id and timestamps, persist.
//	Update  – replace the full field set, refresh updated_at.
//	Delete  – permanent removal by id.
//
// Collections and the mutation coordinator are written once against this
// uniform surface instead of once per kind.
//
// Workflow
// --------
//  1. Callers open a *sqlx.DB (internal/database) and wrap it with New.
//  2. InitSchema creates the tables for the handle's driver.
//  3. Events(), Locations(), and Contacts() return the typed tables.
//
// Notes
// -----
//   - A Store has no package-level state.  Tests open isolated handles.
//   - Placeholders are `?`, which both supported drivers (mysql, sqlite)
//     accept.
//   - Oxford commas, two spaces after periods.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/model"
)

// Store is safe for concurrent use.  Zero value is invalid; use New.
type Store struct {
	db       *sqlx.DB
	q        queryer // db, or the transaction of an inTx copy
	now      func() time.Time
	newID    func() string
	log      *zap.Logger
	validate *validator.Validate

	events    *Table[model.Event, model.EventFields]
	locations *Table[model.Location, model.LocationFields]
	contacts  *Table[model.Contact, model.ContactFields]
}

// queryer is the part of *sqlx.DB and *sqlx.Tx the tables use.
type queryer interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now for id-independent timestamps in tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDs replaces the UUID generator.
func WithIDs(gen func() string) Option { return func(s *Store) { s.newID = gen } }

// WithLogger sets the logger used for failed operations.
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// New wraps db.  The caller keeps ownership of db and closes it.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		q:        db,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      zap.L(),
		validate: newValidator(),
	}
	for _, o := range opts {
		o(s)
	}
	s.bindTables()
	return s
}

func (s *Store) bindTables() {
	s.events = &Table[model.Event, model.EventFields]{s: s, def: eventsDef}
	s.locations = &Table[model.Location, model.LocationFields]{s: s, def: locationsDef}
	s.contacts = &Table[model.Contact, model.ContactFields]{s: s, def: contactsDef}
}

// inTx runs fn against a copy of s whose tables all write through one
// transaction.  The transaction commits only when fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", classify(err))
	}
	txs := *s
	txs.q = tx
	txs.bindTables()

	if err := fn(&txs); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Events() *Table[model.Event, model.EventFields]          { return s.events }
func (s *Store) Locations() *Table[model.Location, model.LocationFields] { return s.locations }
func (s *Store) Contacts() *Table[model.Contact, model.ContactFields]    { return s.contacts }

// stamp returns the store clock in UTC at storage precision.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
