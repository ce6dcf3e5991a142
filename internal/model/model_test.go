package model

import (
	"testing"
	"time"
)

func TestContactNormalizeBlankIdentification(t *testing.T) {
	blank := "   "
	f := ContactFields{FullName: "  Ana Vera ", IdentificationNumber: &blank}.Normalize()
	if f.IdentificationNumber != nil {
		t.Fatalf("blank identification should normalize to nil, got %q", *f.IdentificationNumber)
	}
	if f.FullName != "Ana Vera" {
		t.Fatalf("full name not trimmed: %q", f.FullName)
	}

	id := " 1712345678 "
	f = ContactFields{IdentificationNumber: &id}.Normalize()
	if f.IdentificationNumber == nil || *f.IdentificationNumber != "1712345678" {
		t.Fatalf("identification = %v", f.IdentificationNumber)
	}
}

func TestEventNormalize(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	empty := ""
	at := time.Date(2026, 3, 1, 9, 30, 0, 123456789, lima)
	f := EventFields{Title: " Kickoff ", EventDate: at, LocationID: &empty}.Normalize()

	if f.LocationID != nil {
		t.Fatalf("blank location id should be nil")
	}
	if f.EventDate.Location() != time.UTC {
		t.Fatalf("event date not in UTC: %v", f.EventDate.Location())
	}
	if !f.EventDate.Equal(at.Truncate(time.Microsecond)) {
		t.Fatalf("event date shifted: %v", f.EventDate)
	}
	if f.Title != "Kickoff" {
		t.Fatalf("title = %q", f.Title)
	}
}

func TestGuestList(t *testing.T) {
	f := EventFields{Guests: "Dr. Ramírez, , Dra. López ,"}
	got := f.GuestList()
	if len(got) != 2 || got[0] != "Dr. Ramírez" || got[1] != "Dra. López" {
		t.Fatalf("guest list = %#v", got)
	}
}

func TestEnumValidity(t *testing.T) {
	if !Salutation("").Valid() || !Salutation("Ing.").Valid() || Salutation("Sir").Valid() {
		t.Fatal("salutation membership wrong")
	}
	if ClassificationAll.Valid() {
		t.Fatal("the all filter must not be a storable classification")
	}
	if Reminder1Week.Lead() != 7*24*time.Hour || ReminderNone.Lead() != 0 {
		t.Fatal("reminder leads wrong")
	}
	if !TZGuayaquil.Valid() || Timezone("Mars/Olympus").Valid() {
		t.Fatal("timezone membership wrong")
	}
	if _, err := ParseKind("venues"); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestContactDisplayName(t *testing.T) {
	c := Contact{ContactFields: ContactFields{Salutation: "Dra.", FullName: "María López"}}
	if c.DisplayName() != "Dra. María López" {
		t.Fatalf("display name = %q", c.DisplayName())
	}
}
