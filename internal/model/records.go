package model

import (
	"strings"
	"time"
)

//
// Location
//

// LocationFields is the editable part of a location.  Latitude and
// longitude are usually set together by the map picker, but the store does
// not require both.
type LocationFields struct {
	Title     string   `db:"title"     json:"title"     validate:"required,max=255"`
	Address   string   `db:"address"   json:"address"   validate:"required,max=512"`
	Latitude  *float64 `db:"latitude"  json:"latitude"  validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `db:"longitude" json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// Normalize trims free-text input.
func (f LocationFields) Normalize() LocationFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Address = strings.TrimSpace(f.Address)
	return f
}

// HasCoordinates reports whether both coordinates are set.
func (f LocationFields) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Location is one row of the locations table.
type Location struct {
	Meta
	LocationFields
}

//
// Contact
//

// ContactFields is the editable part of a contact.  PhotoURL is free-form
// and never fetched.
type ContactFields struct {
	Salutation           Salutation `db:"salutation"            json:"salutation"            validate:"enum"`
	FullName             string     `db:"full_name"             json:"full_name"             validate:"required,max=255"`
	IdentificationNumber *string    `db:"identification_number" json:"identification_number" validate:"omitempty,max=32"`
	Email                string     `db:"email"                 json:"email"                 validate:"required,email,max=255"`
	Phone                string     `db:"phone"                 json:"phone"                 validate:"max=64"`
	PhotoURL             string     `db:"photo_url"             json:"photo_url"             validate:"max=1024"`
}

// Normalize trims input and turns a blank identification number into nil.
func (f ContactFields) Normalize() ContactFields {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.PhotoURL = strings.TrimSpace(f.PhotoURL)
	if f.IdentificationNumber != nil {
		id := strings.TrimSpace(*f.IdentificationNumber)
		if id == "" {
			f.IdentificationNumber = nil
		} else {
			f.IdentificationNumber = &id
		}
	}
	return f
}

// Contact is one row of the contacts table.
type Contact struct {
	Meta
	ContactFields
}

// DisplayName prefixes the salutation when present.
func (c Contact) DisplayName() string {
	if c.Salutation == "" {
		return c.FullName
	}
	return string(c.Salutation) + " " + c.FullName
}

//
// Event
//

// EventFields is the editable part of an event.  Guests is free text,
// not a relation to contacts.
type EventFields struct {
	Title          string         `db:"title"          json:"title"          validate:"required,max=255"`
	Guests         string         `db:"guests"         json:"guests"         validate:"max=2048"`
	EventDate      time.Time      `db:"event_date"     json:"event_date"     validate:"notzero"`
	Timezone       Timezone       `db:"timezone"       json:"timezone"       validate:"enum"`
	Description    string         `db:"description"    json:"description"    validate:"max=8192"`
	Recurrence     Recurrence     `db:"recurrence"     json:"recurrence"     validate:"enum"`
	Reminder       Reminder       `db:"reminder"       json:"reminder"       validate:"enum"`
	Classification Classification `db:"classification" json:"classification" validate:"enum"`
	LocationID     *string        `db:"location_id"    json:"location_id"`
}

// Normalize trims input, stores the instant in UTC at microsecond
// precision, and turns a blank location id into nil.
func (f EventFields) Normalize() EventFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Guests = strings.TrimSpace(f.Guests)
	f.Description = strings.TrimSpace(f.Description)
	if !f.EventDate.IsZero() {
		f.EventDate = f.EventDate.UTC().Truncate(time.Microsecond)
	}
	if f.LocationID != nil {
		id := strings.TrimSpace(*f.LocationID)
		if id == "" {
			f.LocationID = nil
		} else {
			f.LocationID = &id
		}
	}
	return f
}

// GuestList splits the comma-separated guest text, dropping blanks.
func (f EventFields) GuestList() []string {
	var out []string
	for _, g := range strings.Split(f.Guests, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// NewEventFields returns the defaults a blank event form starts with.
func NewEventFields() EventFields {
	return EventFields{
		Timezone:       DefaultTimezone,
		Recurrence:     RecurNone,
		Reminder:       ReminderNone,
		Classification: ClassConference,
	}
}

// Event is one row of the events table.  Location is filled only by a
// joined read and is nil when the reference is absent or dangling.
type Event struct {
	Meta
	EventFields
	Location *Location `db:"-" json:"location"`
}
