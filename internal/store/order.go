package store

import (
	"fmt"

	"github.com/yanizio/agenda/internal/model"
)

// SortField is a closed set of sortable columns.  Each kind accepts a
// subset; anything else is rejected with ErrQuery.
type SortField string

const (
	SortTitle     SortField = "title"
	SortAddress   SortField = "address"
	SortFullName  SortField = "full_name"
	SortEmail     SortField = "email"
	SortEventDate SortField = "event_date"
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
)

// Ordering selects the sort column and direction.  Fold switches text
// columns to case-insensitive ordering; the default follows the store's
// native collation.  Ties always break on id.
type Ordering struct {
	Field SortField
	Desc  bool
	Fold  bool
}

// ListOptions configures Table.List.
type ListOptions struct {
	Order        Ordering
	JoinLocation bool // events only
}

// DefaultOrder is the list order each kind is shown in: events by date,
// locations by title, and contacts by full name, all ascending.
func DefaultOrder(k model.Kind) Ordering {
	switch k {
	case model.KindEvent:
		return Ordering{Field: SortEventDate}
	case model.KindLocation:
		return Ordering{Field: SortTitle}
	default:
		return Ordering{Field: SortFullName}
	}
}

// orderClause renders ORDER BY for prefix-qualified columns.  text maps
// each allowed field to whether it is a text column.
func orderClause(k model.Kind, o Ordering, text map[SortField]bool, prefix string) (string, error) {
	if o.Field == "" {
		o.Field = DefaultOrder(k).Field
	}
	isText, ok := text[o.Field]
	if !ok {
		return "", fmt.Errorf("%w: %s cannot be sorted by %q", ErrQuery, k, o.Field)
	}
	col := prefix + string(o.Field)
	if o.Fold && isText {
		col = "LOWER(" + col + ")"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %sid %s", col, dir, prefix, dir), nil
}
