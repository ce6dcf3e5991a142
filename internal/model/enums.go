package model

import "time"

// Enumerations are closed sets.  Each type reports membership through
// Valid so the store's "enum" validation rule can check any of them.

// Classification categorises an event.
type Classification string

const (
	ClassConference Classification = "conference"
	ClassWorkshop   Classification = "workshop"
	ClassSeminar    Classification = "seminar"

	// ClassificationAll disables the classification filter.  It is never a
	// valid stored value.
	ClassificationAll Classification = "all"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassConference, ClassWorkshop, ClassSeminar:
		return true
	}
	return false
}

// Recurrence is how often an event repeats.
type Recurrence string

const (
	RecurNone    Recurrence = "none"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
	RecurYearly  Recurrence = "yearly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

// Reminder is the lead time before an event at which a reminder fires.
type Reminder string

const (
	ReminderNone  Reminder = "none"
	Reminder5Min  Reminder = "5min"
	Reminder15Min Reminder = "15min"
	Reminder30Min Reminder = "30min"
	Reminder1Hour Reminder = "1hour"
	Reminder1Day  Reminder = "1day"
	Reminder1Week Reminder = "1week"
)

var reminderLeads = map[Reminder]time.Duration{
	ReminderNone:  0,
	Reminder5Min:  5 * time.Minute,
	Reminder15Min: 15 * time.Minute,
	Reminder30Min: 30 * time.Minute,
	Reminder1Hour: time.Hour,
	Reminder1Day:  24 * time.Hour,
	Reminder1Week: 7 * 24 * time.Hour,
}

func (r Reminder) Valid() bool {
	_, ok := reminderLeads[r]
	return ok
}

// Lead returns the reminder offset; zero for none or unknown values.
func (r Reminder) Lead() time.Duration { return reminderLeads[r] }

// Timezone is one of the IANA zones offered by the event form.
type Timezone string

const (
	TZLima        Timezone = "America/Lima"
	TZBogota      Timezone = "America/Bogota"
	TZMexicoCity  Timezone = "America/Mexico_City"
	TZBuenosAires Timezone = "America/Argentina/Buenos_Aires"
	TZNewYork     Timezone = "America/New_York"
	TZLosAngeles  Timezone = "America/Los_Angeles"
	TZMadrid      Timezone = "Europe/Madrid"
	TZGuayaquil   Timezone = "America/Guayaquil"

	// DefaultTimezone pre-fills new event forms.
	DefaultTimezone = TZLima
)

// Timezones lists the selectable zones in form order.
var Timezones = []Timezone{
	TZLima, TZBogota, TZMexicoCity, TZBuenosAires,
	TZNewYork, TZLosAngeles, TZMadrid, TZGuayaquil,
}

func (t Timezone) Valid() bool {
	for _, z := range Timezones {
		if z == t {
			return true
		}
	}
	return false
}

// Salutation is an optional honorific shown before a contact's name.
type Salutation string

// Salutations lists the accepted honorifics.  The empty value means none.
var Salutations = []Salutation{
	"Sr.", "Sra.", "Srta.", "Dr.", "Dra.", "Ing.", "Lic.", "Msc.", "Prof.",
}

func (s Salutation) Valid() bool {
	if s == "" {
		return true
	}
	for _, v := range Salutations {
		if v == s {
			return true
		}
	}
	return false
}
