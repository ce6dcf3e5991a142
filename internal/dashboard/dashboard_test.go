package dashboard

import (
	"slices"
	"testing"
	"time"

	"github.com/yanizio/agenda/internal/model"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func eventAt(id string, offset time.Duration, created time.Time) model.Event {
	return model.Event{
		Meta: model.Meta{ID: id, CreatedAt: created},
		EventFields: model.EventFields{
			Title:      id,
			EventDate:  now.Add(offset),
			Timezone:   model.TZLima,
			Recurrence: model.RecurNone,
		},
	}
}

func titlesOf(es []model.Event) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Title)
	}
	return out
}

func TestUpcomingDerivation(t *testing.T) {
	day := 24 * time.Hour
	events := []model.Event{
		eventAt("T+20", 20*day, now),
		eventAt("T-1", -day, now),
		eventAt("T+5", 5*day, now),
		eventAt("T+1", day, now),
		eventAt("T+30", 30*day, now),
		eventAt("T+10", 10*day, now),
	}
	before := slices.Clone(events)

	s := Compute(events, nil, nil, now)
	want := []string{"T+1", "T+5", "T+10", "T+20", "T+30"}
	if got := titlesOf(s.Upcoming); !slices.Equal(got, want) {
		t.Fatalf("upcoming = %v, want %v", got, want)
	}

	events = append(events, eventAt("T+40", 40*day, now))
	s = Compute(events, nil, nil, now)
	if got := titlesOf(s.Upcoming); !slices.Equal(got, want) {
		t.Fatalf("T+40 should be truncated away, got %v", got)
	}
	if s.Stats.Upcoming != 6 || s.Stats.Events != 7 {
		t.Fatalf("stats = %+v", s.Stats)
	}
	if !slices.EqualFunc(before, events[:6], func(a, b model.Event) bool { return a.ID == b.ID }) {
		t.Fatal("input reordered")
	}
}

func TestUpcomingExcludesNow(t *testing.T) {
	s := Compute([]model.Event{eventAt("now", 0, now)}, nil, nil, now)
	if len(s.Upcoming) != 0 {
		t.Fatalf("an event at now is not upcoming: %v", titlesOf(s.Upcoming))
	}
}

func TestRecentActivity(t *testing.T) {
	var events []model.Event
	for i := range 6 {
		events = append(events, eventAt(string(rune('a'+i)), -time.Hour, now.Add(time.Duration(i)*time.Minute)))
	}
	s := Compute(events, []model.Location{{}}, []model.Contact{{}, {}}, now)

	if got := titlesOf(s.Recent); !slices.Equal(got, []string{"f", "e", "d", "c"}) {
		t.Fatalf("recent = %v", got)
	}
	if s.Stats.Locations != 1 || s.Stats.Contacts != 2 {
		t.Fatalf("stats = %+v", s.Stats)
	}
}

func TestNextOccurrencesIncludesRecurring(t *testing.T) {
	seminar := eventAt("seminar", -30*24*time.Hour, now)
	seminar.Recurrence = model.RecurMonthly
	past := eventAt("past", -time.Hour, now)
	soon := eventAt("soon", time.Hour, now)

	got := NextOccurrences([]model.Event{seminar, past, soon}, now, 10)
	if len(got) != 2 {
		t.Fatalf("want 2 occurrences, got %d", len(got))
	}
	if got[0].Event.ID != "soon" || got[1].Event.ID != "seminar" {
		t.Fatalf("order = %s, %s", got[0].Event.ID, got[1].Event.ID)
	}
	if !got[1].At.After(now) {
		t.Fatalf("seminar next date %v is not in the future", got[1].At)
	}
}
