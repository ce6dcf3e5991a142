// Package dashboard derives the overview screen from already loaded
// collections.  It never talks to the store.
package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/recurrence"
)

const (
	UpcomingLimit = 5
	RecentLimit   = 4
)

// Stats are the headline counts.  Upcoming counts every event after now,
// not just the ones listed.
type Stats struct {
	Events    int `json:"events"`
	Locations int `json:"locations"`
	Contacts  int `json:"contacts"`
	Upcoming  int `json:"upcoming"`
}

// Summary is everything the overview screen shows.
type Summary struct {
	Stats    Stats         `json:"stats"`
	Upcoming []model.Event `json:"upcoming"`
	Recent   []model.Event `json:"recent"`
}

// Compute builds the summary.  Upcoming holds events strictly after now,
// soonest first.  Recent holds the most recently created events.  The
// input slices are not modified.
func Compute(events []model.Event, locations []model.Location, contacts []model.Contact, now time.Time) Summary {
	upcoming := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.EventDate.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b model.Event) int {
		return a.EventDate.Compare(b.EventDate)
	})

	recent := slices.Clone(events)
	slices.SortStableFunc(recent, func(a, b model.Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return Summary{
		Stats: Stats{
			Events:    len(events),
			Locations: len(locations),
			Contacts:  len(contacts),
			Upcoming:  len(upcoming),
		},
		Upcoming: head(upcoming, UpcomingLimit),
		Recent:   head(recent, RecentLimit),
	}
}

// Occurrence pairs an event with one of its future dates.
type Occurrence struct {
	Event model.Event `json:"event"`
	At    time.Time   `json:"at"`
}

// NextOccurrences lists the next date of every event that still has one,
// recurring events included, soonest first.
func NextOccurrences(events []model.Event, now time.Time, limit int) []Occurrence {
	out := make([]Occurrence, 0, len(events))
	for _, e := range events {
		if at := recurrence.NextFor(e.EventFields, now); !at.IsZero() {
			out = append(out, Occurrence{Event: e, At: at})
		}
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int {
		return cmp.Or(a.At.Compare(b.At), cmp.Compare(a.Event.ID, b.Event.ID))
	})
	return head(out, limit)
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
