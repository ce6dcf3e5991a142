package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/yanizio/agenda/internal/model"
)

var (
	locationColumns = []string{"title", "address", "latitude", "longitude"}
	eventColumns    = []string{
		"title", "guests", "event_date", "timezone", "description",
		"recurrence", "reminder", "classification", "location_id",
	}
)

var locationsDef = tableDef[model.Location, model.LocationFields]{
	kind:    model.KindLocation,
	columns: locationColumns,
	values: func(f model.LocationFields) []any {
		return []any{f.Title, f.Address, f.Latitude, f.Longitude}
	},
	normalize: model.LocationFields.Normalize,
	build: func(m model.Meta, f model.LocationFields) model.Location {
		return model.Location{Meta: m, LocationFields: f}
	},
	sorts: map[SortField]bool{
		SortTitle:     true,
		SortAddress:   true,
		SortCreatedAt: false,
		SortUpdatedAt: false,
	},
}

var contactsDef = tableDef[model.Contact, model.ContactFields]{
	kind: model.KindContact,
	columns: []string{
		"salutation", "full_name", "identification_number",
		"email", "phone", "photo_url",
	},
	values: func(f model.ContactFields) []any {
		return []any{string(f.Salutation), f.FullName, f.IdentificationNumber,
			f.Email, f.Phone, f.PhotoURL}
	},
	normalize: model.ContactFields.Normalize,
	build: func(m model.Meta, f model.ContactFields) model.Contact {
		return model.Contact{Meta: m, ContactFields: f}
	},
	sorts: map[SortField]bool{
		SortFullName:  true,
		SortEmail:     true,
		SortCreatedAt: false,
		SortUpdatedAt: false,
	},
}

var eventsDef = tableDef[model.Event, model.EventFields]{
	kind:    model.KindEvent,
	columns: eventColumns,
	values: func(f model.EventFields) []any {
		return []any{f.Title, f.Guests, f.EventDate, string(f.Timezone), f.Description,
			string(f.Recurrence), string(f.Reminder), string(f.Classification), f.LocationID}
	},
	normalize: model.EventFields.Normalize,
	build: func(m model.Meta, f model.EventFields) model.Event {
		return model.Event{Meta: m, EventFields: f}
	},
	sorts: map[SortField]bool{
		SortTitle:     true,
		SortEventDate: false,
		SortCreatedAt: false,
		SortUpdatedAt: false,
	},
	joined: joinEvents,
}

// eventRow is one row of events LEFT JOIN locations.  Every l_* column is
// NULL when the event has no location or references a deleted one.
type eventRow struct {
	model.Meta
	model.EventFields

	LID        sql.NullString  `db:"l_id"`
	LTitle     sql.NullString  `db:"l_title"`
	LAddress   sql.NullString  `db:"l_address"`
	LLatitude  sql.NullFloat64 `db:"l_latitude"`
	LLongitude sql.NullFloat64 `db:"l_longitude"`
	LCreatedAt sql.NullTime    `db:"l_created_at"`
	LUpdatedAt sql.NullTime    `db:"l_updated_at"`
}

func (r eventRow) event() model.Event {
	ev := model.Event{Meta: r.Meta, EventFields: r.EventFields}
	if !r.LID.Valid {
		return ev
	}
	loc := &model.Location{
		Meta: model.Meta{ID: r.LID.String, CreatedAt: r.LCreatedAt.Time, UpdatedAt: r.LUpdatedAt.Time},
		LocationFields: model.LocationFields{
			Title:   r.LTitle.String,
			Address: r.LAddress.String,
		},
	}
	if r.LLatitude.Valid {
		lat := r.LLatitude.Float64
		loc.Latitude = &lat
	}
	if r.LLongitude.Valid {
		lng := r.LLongitude.Float64
		loc.Longitude = &lng
	}
	ev.Location = loc
	return ev
}

// joinedEventsSQL is built once from the column lists so the join stays in
// step with the table definitions.
var joinedEventsSQL = func() string {
	cols := []string{"t.id AS id", "t.created_at AS created_at", "t.updated_at AS updated_at"}
	for _, c := range eventColumns {
		cols = append(cols, "t."+c+" AS "+c)
	}
	for _, c := range append([]string{"id", "created_at", "updated_at"}, locationColumns...) {
		cols = append(cols, "l."+c+" AS l_"+c)
	}
	return "SELECT " + strings.Join(cols, ", ") +
		" FROM events t LEFT JOIN locations l ON l.id = t.location_id"
}()

func joinEvents(ctx context.Context, t *Table[model.Event, model.EventFields], where, order string, args ...any) ([]model.Event, error) {
	var rows []eventRow
	if err := t.s.q.SelectContext(ctx, &rows, joinedEventsSQL+where+order, args...); err != nil {
		return nil, t.wrap("list", err)
	}
	out := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.event())
	}
	return out, nil
}
