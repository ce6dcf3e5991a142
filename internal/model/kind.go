// internal/model/kind.go
//
// Record types shared by the store, collections, and the coordinator.
//
// Context
// -------
// The directory manages three entity kinds: events, locations, and
// contacts.  Each record is split into two halves:
//
//   - Meta    – id, created_at, and updated_at, assigned by the store.
//   - Fields  – the user-editable field set submitted by a form.
//
// Forms submit a full Fields value on create and on update; there is no
// partial-field diffing.  Records returned by the store embed both halves
// so sqlx can scan a row straight into them.
//
// Notes
// -----
//   - Kind values double as table names.
//   - Validation rules live in `validate:"…"` tags and are enforced by the
//     store, which is the final validator.
package model

import (
	"fmt"
	"time"
)

// Kind names one of the three entity kinds.
type Kind string

const (
	KindEvent    Kind = "events"
	KindLocation Kind = "locations"
	KindContact  Kind = "contacts"
)

// Kinds lists every entity kind in display order.
var Kinds = []Kind{KindEvent, KindLocation, KindContact}

// ParseKind maps a table name onto a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("model: unknown kind %q", s)
}

// Meta holds the server-assigned part of every record.
type Meta struct {
	ID        string    `db:"id"         json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RecordID returns the record's stable identifier.
func (m Meta) RecordID() string { return m.ID }

// Created returns the creation timestamp.
func (m Meta) Created() time.Time { return m.CreatedAt }

// Record is implemented by Event, Location, and Contact.
type Record interface {
	RecordID() string
	Created() time.Time
}
