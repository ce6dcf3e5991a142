package collection

import (
	"iter"
	"strings"

	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
)

// Spec is the per-kind configuration of a Collection.
type Spec[R model.Record] struct {
	Kind  model.Kind
	Order store.Ordering
	Join  bool // events: attach each event's location

	// Search returns the fields matched case-insensitively against the
	// search text.  Exact fields match as plain substrings.
	Search func(R) []string
	Exact  func(R) []string

	// Classification is nil for kinds without one.
	Classification func(R) model.Classification

	// Prompt is shown before a delete.
	Prompt Prompt
}

// EventSpec lists events by date and searches title and description.
var EventSpec = Spec[model.Event]{
	Kind:  model.KindEvent,
	Order: store.DefaultOrder(model.KindEvent),
	Join:  true,
	Search: func(e model.Event) []string {
		return []string{e.Title, e.Description}
	},
	Classification: func(e model.Event) model.Classification { return e.Classification },
	Prompt:         Prompt{Title: "Delete event", Message: "Are you sure you want to delete this event?"},
}

// LocationSpec lists locations by title and searches title and address.
var LocationSpec = Spec[model.Location]{
	Kind:  model.KindLocation,
	Order: store.DefaultOrder(model.KindLocation),
	Search: func(l model.Location) []string {
		return []string{l.Title, l.Address}
	},
	Prompt: Prompt{Title: "Delete location", Message: "Are you sure you want to delete this location?"},
}

// ContactSpec lists contacts by full name.  Name and email match
// case-insensitively; the phone number matches as typed.
var ContactSpec = Spec[model.Contact]{
	Kind:  model.KindContact,
	Order: store.DefaultOrder(model.KindContact),
	Search: func(c model.Contact) []string {
		return []string{c.FullName, c.Email}
	},
	Exact: func(c model.Contact) []string {
		return []string{c.Phone}
	},
	Prompt: Prompt{Title: "Delete contact", Message: "Are you sure you want to delete this contact?"},
}

// Filter yields the records matching search and class, in input order.  An
// empty search matches everything, as does ClassificationAll or "".
// records is not modified.
func Filter[R model.Record](records []R, spec Spec[R], search string, class model.Classification) iter.Seq[R] {
	needle := strings.ToLower(search)
	byClass := spec.Classification != nil && class != "" && class != model.ClassificationAll

	return func(yield func(R) bool) {
		for _, r := range records {
			if byClass && spec.Classification(r) != class {
				continue
			}
			if search != "" && !matches(r, spec, search, needle) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func matches[R model.Record](r R, spec Spec[R], raw, lower string) bool {
	if spec.Search != nil {
		for _, f := range spec.Search(r) {
			if strings.Contains(strings.ToLower(f), lower) {
				return true
			}
		}
	}
	if spec.Exact != nil {
		for _, f := range spec.Exact(r) {
			if f != "" && strings.Contains(f, raw) {
				return true
			}
		}
	}
	return false
}
