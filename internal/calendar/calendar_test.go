package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/yanizio/agenda/internal/model"
)

func TestExportRoundTrip(t *testing.T) {
	lat, lng := -0.2105, -78.4876
	loc := &model.Location{
		Meta:           model.Meta{ID: "l-1"},
		LocationFields: model.LocationFields{Title: "Main Hall", Address: "123 St", Latitude: &lat, Longitude: &lng},
	}
	stamp := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	events := []model.Event{
		{
			Meta: model.Meta{ID: "e-1", CreatedAt: stamp, UpdatedAt: stamp},
			EventFields: model.EventFields{
				Title:          "Research seminar",
				Guests:         "Dra. López, , Ing. Mora",
				EventDate:      time.Date(2026, 10, 30, 15, 0, 0, 0, time.UTC),
				Timezone:       model.TZGuayaquil,
				Recurrence:     model.RecurMonthly,
				Reminder:       model.Reminder1Week,
				Classification: model.ClassSeminar,
			},
			Location: loc,
		},
		{
			Meta: model.Meta{ID: "e-2", CreatedAt: stamp, UpdatedAt: stamp},
			EventFields: model.EventFields{
				Title:          "Kickoff",
				EventDate:      time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC),
				Timezone:       model.TZLima,
				Recurrence:     model.RecurNone,
				Reminder:       model.ReminderNone,
				Classification: model.ClassConference,
			},
		},
	}

	out := Export(events, "")
	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar: %v\n%s", err, out)
	}
	got := cal.Events()
	if len(got) != 2 {
		t.Fatalf("want 2 VEVENTs, got %d", len(got))
	}

	seminar := got[0]
	if p := seminar.GetProperty(ics.ComponentPropertyUniqueId); p == nil || p.Value != "e-1" {
		t.Errorf("UID = %+v", p)
	}
	dt := seminar.GetProperty(ics.ComponentPropertyDtStart)
	if dt == nil || dt.Value != "20261030T100000" {
		t.Fatalf("DTSTART should be local Guayaquil time, got %+v", dt)
	}
	if tz := dt.ICalParameters["TZID"]; len(tz) != 1 || tz[0] != "America/Guayaquil" {
		t.Errorf("TZID = %v", tz)
	}
	if p := seminar.GetProperty(ics.ComponentPropertyRrule); p == nil || p.Value != "FREQ=MONTHLY" {
		t.Errorf("RRULE = %+v", p)
	}
	if p := seminar.GetProperty(ics.ComponentPropertyLocation); p == nil || !strings.Contains(p.Value, "Main Hall") {
		t.Errorf("LOCATION = %+v", p)
	}
	if p := seminar.GetProperty(ics.ComponentPropertyGeo); p == nil || !strings.HasPrefix(p.Value, "-0.2105") {
		t.Errorf("GEO = %+v", p)
	}
	if p := seminar.GetProperty(ics.ComponentProperty("X-GUESTS")); p == nil || !strings.Contains(p.Value, "Ing. Mora") {
		t.Errorf("X-GUESTS = %+v", p)
	}
	if !strings.Contains(out, "TRIGGER:-P7D") {
		t.Errorf("missing one-week alarm:\n%s", out)
	}

	kickoff := got[1]
	if kickoff.GetProperty(ics.ComponentPropertyRrule) != nil {
		t.Error("one-off event carries an RRULE")
	}
	if kickoff.GetProperty(ics.ComponentPropertyLocation) != nil {
		t.Error("event without location carries LOCATION")
	}
	if strings.Count(out, "BEGIN:VALARM") != 1 {
		t.Errorf("want exactly one alarm:\n%s", out)
	}
}

func TestTrigger(t *testing.T) {
	cases := map[time.Duration]string{
		5 * time.Minute:    "-PT5M",
		time.Hour:          "-PT1H",
		24 * time.Hour:     "-P1D",
		7 * 24 * time.Hour: "-P7D",
	}
	for d, want := range cases {
		if got := trigger(d); got != want {
			t.Errorf("trigger(%v) = %q, want %q", d, got, want)
		}
	}
}
