// Package calendar exports events as an iCalendar feed so the directory
// can be subscribed to from any calendar client.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/recurrence"
)

// DefaultProdID identifies the feed when the caller passes "".
const DefaultProdID = "-//agenda//event directory//EN"

const localLayout = "20060102T150405"

// Export renders events as a VCALENDAR.  Each event keeps its own timezone
// in DTSTART, its recurrence as RRULE, and its reminder as a display alarm.
func Export(events []model.Event, prodID string) string {
	if prodID == "" {
		prodID = DefaultProdID
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	for _, e := range events {
		addEvent(cal, e)
	}
	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, e model.Event) {
	ve := cal.AddEvent(e.ID)
	ve.SetDtStampTime(e.UpdatedAt)
	ve.SetCreatedTime(e.CreatedAt)
	ve.SetModifiedAt(e.UpdatedAt)

	tz := e.Timezone
	if !tz.Valid() {
		tz = model.DefaultTimezone
	}
	start := e.EventDate.In(recurrence.Location(tz))
	ve.SetProperty(ics.ComponentPropertyDtStart, start.Format(localLayout),
		&ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{string(tz)}})

	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Classification != "" {
		ve.SetProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(e.Classification)))
	}
	if rule := recurrence.RRule(e.Recurrence); rule != "" {
		ve.AddProperty(ics.ComponentPropertyRrule, rule)
	}
	if guests := e.GuestList(); len(guests) > 0 {
		ve.SetProperty(ics.ComponentProperty("X-GUESTS"), strings.Join(guests, ", "))
	}

	if l := e.Location; l != nil {
		ve.SetLocation(l.Title + ", " + l.Address)
		if l.HasCoordinates() {
			ve.SetProperty(ics.ComponentPropertyGeo, fmt.Sprintf("%f;%f", *l.Latitude, *l.Longitude))
		}
	}

	if lead := e.Reminder.Lead(); lead > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(trigger(lead))
		alarm.SetProperty(ics.ComponentPropertyDescription, e.Title)
	}
}

// trigger formats a lead time as a negative RFC 5545 duration.
func trigger(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("-P%dD", d/(24*time.Hour))
	case d%time.Hour == 0:
		return fmt.Sprintf("-PT%dH", d/time.Hour)
	default:
		return fmt.Sprintf("-PT%dM", d/time.Minute)
	}
}
