// Package recurrence maps an event's recurrence setting onto RFC 5545
// rules and computes upcoming occurrences.  Rules are evaluated in the
// event's own timezone so a weekly 10:00 session stays at 10:00 local time
// across daylight-saving changes.
package recurrence

import (
	"fmt"
	"time"
	_ "time/tzdata" // zones must resolve on hosts without a zoneinfo database

	"github.com/teambition/rrule-go"

	"github.com/yanizio/agenda/internal/cache"
	"github.com/yanizio/agenda/internal/model"
)

var freqs = map[model.Recurrence]rrule.Frequency{
	model.RecurDaily:   rrule.DAILY,
	model.RecurWeekly:  rrule.WEEKLY,
	model.RecurMonthly: rrule.MONTHLY,
	model.RecurYearly:  rrule.YEARLY,
}

var zones = cache.New[model.Timezone, *time.Location](16)

// Location resolves tz, falling back to the default zone for unknown
// values.
func Location(tz model.Timezone) *time.Location {
	if !tz.Valid() {
		tz = model.DefaultTimezone
	}
	loc, err := zones.GetOrLoad(tz, func(z model.Timezone) (*time.Location, error) {
		return time.LoadLocation(string(z))
	})
	if err != nil {
		return time.UTC
	}
	return loc
}

// RRule returns the RRULE value for rec, e.g. "FREQ=WEEKLY", or "" when the
// event does not repeat.
func RRule(rec model.Recurrence) string {
	f, ok := freqs[rec]
	if !ok {
		return ""
	}
	return "FREQ=" + f.String()
}

// Rule builds the rule for rec starting at start.  It fails for
// RecurNone and unknown values.
func Rule(rec model.Recurrence, start time.Time) (*rrule.RRule, error) {
	f, ok := freqs[rec]
	if !ok {
		return nil, fmt.Errorf("recurrence: %q does not repeat", rec)
	}
	return rrule.NewRRule(rrule.ROption{Freq: f, Dtstart: start})
}

// Next returns the first occurrence strictly after after.  A non-repeating
// event occurs once, at start; the zero time means no further occurrence.
func Next(rec model.Recurrence, start, after time.Time) time.Time {
	if _, ok := freqs[rec]; !ok {
		if start.After(after) {
			return start
		}
		return time.Time{}
	}
	r, err := Rule(rec, start)
	if err != nil {
		return time.Time{}
	}
	return r.After(after, false)
}

// NextFor is Next evaluated in the event's timezone.
func NextFor(f model.EventFields, after time.Time) time.Time {
	start := f.EventDate.In(Location(f.Timezone))
	return Next(f.Recurrence, start, after)
}

// Between lists occurrences of f in [from, to], capped at limit.
func Between(f model.EventFields, from, to time.Time, limit int) []time.Time {
	start := f.EventDate.In(Location(f.Timezone))
	if _, ok := freqs[f.Recurrence]; !ok {
		if !start.Before(from) && !start.After(to) {
			return []time.Time{start}
		}
		return nil
	}
	r, err := Rule(f.Recurrence, start)
	if err != nil {
		return nil
	}
	out := r.Between(from, to, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
