package recurrence

import (
	"testing"
	"time"

	"github.com/yanizio/agenda/internal/model"
)

func TestNextNonRepeating(t *testing.T) {
	start := time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC)

	if got := Next(model.RecurNone, start, start.Add(-time.Hour)); !got.Equal(start) {
		t.Errorf("future one-off: got %v", got)
	}
	if got := Next(model.RecurNone, start, start); !got.IsZero() {
		t.Errorf("next must be strictly after: got %v", got)
	}
}

func TestNextWeekly(t *testing.T) {
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	after := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	got := Next(model.RecurWeekly, start, after)
	if want := time.Date(2026, 10, 22, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextForKeepsLocalTimeAcrossDST(t *testing.T) {
	madrid := Location(model.TZMadrid)
	f := model.EventFields{
		EventDate:  time.Date(2026, 10, 19, 10, 0, 0, 0, madrid).UTC(),
		Timezone:   model.TZMadrid,
		Recurrence: model.RecurWeekly,
	}
	// Summer time ends on 2026-10-25.
	got := NextFor(f, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
	got = got.In(madrid)
	if got.Day() != 26 || got.Hour() != 10 {
		t.Fatalf("got %v, want 2026-10-26 10:00 local", got)
	}
}

func TestRRule(t *testing.T) {
	cases := map[model.Recurrence]string{
		model.RecurNone:    "",
		model.RecurDaily:   "FREQ=DAILY",
		model.RecurMonthly: "FREQ=MONTHLY",
		model.RecurYearly:  "FREQ=YEARLY",
	}
	for rec, want := range cases {
		if got := RRule(rec); got != want {
			t.Errorf("RRule(%s) = %q, want %q", rec, got, want)
		}
	}
	if _, err := Rule(model.RecurNone, time.Now()); err == nil {
		t.Error("Rule(none) should fail")
	}
}

func TestBetweenCaps(t *testing.T) {
	f := model.EventFields{
		EventDate:  time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		Timezone:   model.TZLima,
		Recurrence: model.RecurDaily,
	}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Between(f, from, from.AddDate(0, 1, 0), 3)
	if len(got) != 3 || !got[0].Equal(f.EventDate) {
		t.Fatalf("got %v", got)
	}
}

func TestLocationFallsBack(t *testing.T) {
	if Location("Mars/Olympus") != Location(model.DefaultTimezone) {
		t.Fatal("unknown zone should resolve to the default")
	}
}
