package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/model"
)

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Skipped   bool
	Locations int
	Contacts  int
	Events    int
}

// Seed loads the sample campus directory: four locations, four contacts,
// and four events scheduled 3, 7, 14, and 21 days from the store clock.
// It does nothing unless all three tables are empty.  Every insert runs in
// one transaction, so a failure leaves the store empty and a later Seed
// can retry.
func Seed(ctx context.Context, s *Store) (SeedResult, error) {
	var res SeedResult
	err := s.inTx(ctx, func(tx *Store) error {
		skip, err := tx.populated(ctx)
		if err != nil || skip {
			res.Skipped = skip
			return err
		}
		return tx.seed(ctx, &res)
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}
	if res.Skipped {
		s.log.Info("seed skipped, store not empty")
		return res, nil
	}
	s.log.Info("seeded sample directory",
		zap.Int("locations", res.Locations),
		zap.Int("contacts", res.Contacts),
		zap.Int("events", res.Events))
	return res, nil
}

// populated reports whether any table already holds a row.
func (s *Store) populated(ctx context.Context) (bool, error) {
	for _, c := range []interface {
		Count(context.Context) (int, error)
	}{s.events, s.locations, s.contacts} {
		n, err := c.Count(ctx)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) seed(ctx context.Context, res *SeedResult) error {
	locs := make([]model.Location, 0, len(sampleLocations))
	for _, f := range sampleLocations {
		l, err := s.locations.Insert(ctx, f)
		if err != nil {
			return fmt.Errorf("location %q: %w", f.Title, err)
		}
		locs = append(locs, l)
		res.Locations++
	}

	for _, f := range sampleContacts {
		if _, err := s.contacts.Insert(ctx, f); err != nil {
			return fmt.Errorf("contact %q: %w", f.FullName, err)
		}
		res.Contacts++
	}

	now := s.stamp()
	for _, e := range sampleEvents {
		f := e.fields
		f.EventDate = now.Add(time.Duration(e.inDays) * 24 * time.Hour)
		id := locs[e.location].ID
		f.LocationID = &id
		if _, err := s.events.Insert(ctx, f); err != nil {
			return fmt.Errorf("event %q: %w", f.Title, err)
		}
		res.Events++
	}
	return nil
}

func coord(v float64) *float64 { return &v }
func text(v string) *string     { return &v }

var sampleLocations = []model.LocationFields{
	{
		Title:     "Auditorio Principal UTE",
		Address:   "Av. Mariscal Sucre y Mariana de Jesús, Campus Occidental, Quito",
		Latitude:  coord(-0.2105),
		Longitude: coord(-78.4876),
	},
	{
		Title:     "Sala de Conferencias - Facultad de Ingeniería",
		Address:   "Bloque C, Piso 3, Campus UTE",
		Latitude:  coord(-0.2110),
		Longitude: coord(-78.4880),
	},
	{
		Title:     "Laboratorio de Computación",
		Address:   "Bloque B, Piso 2, Campus UTE",
		Latitude:  coord(-0.2100),
		Longitude: coord(-78.4870),
	},
	{
		Title:     "Centro de Innovación Tecnológica",
		Address:   "Edificio de Posgrados, Campus UTE",
		Latitude:  coord(-0.2095),
		Longitude: coord(-78.4865),
	},
}

var sampleContacts = []model.ContactFields{
	{
		Salutation:           "Dr.",
		FullName:             "Juan Carlos Ramírez",
		IdentificationNumber: text("1712345678"),
		Email:                "jramirez@ute.edu.ec",
		Phone:                "+593 99 123 4567",
	},
	{
		Salutation:           "Dra.",
		FullName:             "María Fernanda López",
		IdentificationNumber: text("1798765432"),
		Email:                "mflopez@ute.edu.ec",
		Phone:                "+593 99 987 6543",
	},
	{
		Salutation:           "Ing.",
		FullName:             "Andrés Sebastián Mora",
		IdentificationNumber: text("1756789012"),
		Email:                "asmora@ute.edu.ec",
		Phone:                "+593 99 567 8901",
	},
	{
		Salutation:           "Msc.",
		FullName:             "Carolina Espinoza Vega",
		IdentificationNumber: text("1734567890"),
		Email:                "cespinoza@ute.edu.ec",
		Phone:                "+593 99 345 6789",
	},
}

// sampleEvents index into sampleLocations.
var sampleEvents = []struct {
	fields   model.EventFields
	inDays   int
	location int
}{
	{
		fields: model.EventFields{
			Title:          "Conferencia: Inteligencia Artificial en la Educación",
			Guests:         "Dr. Juan Carlos Ramírez, Dra. María Fernanda López",
			Timezone:       model.TZGuayaquil,
			Description:    "Conferencia magistral sobre la aplicación de IA y machine learning en procesos educativos universitarios.",
			Recurrence:     model.RecurNone,
			Reminder:       model.Reminder1Day,
			Classification: model.ClassConference,
		},
		inDays:   7,
		location: 0,
	},
	{
		fields: model.EventFields{
			Title:          "Taller: Desarrollo de Aplicaciones Web con React",
			Guests:         "Ing. Andrés Sebastián Mora",
			Timezone:       model.TZGuayaquil,
			Description:    "Taller práctico sobre desarrollo frontend moderno con React, TypeScript y Tailwind CSS.",
			Recurrence:     model.RecurNone,
			Reminder:       model.Reminder30Min,
			Classification: model.ClassWorkshop,
		},
		inDays:   3,
		location: 2,
	},
	{
		fields: model.EventFields{
			Title:          "Seminario: Investigación en Ciencias de la Computación",
			Guests:         "Msc. Carolina Espinoza, Docentes de la Facultad",
			Timezone:       model.TZGuayaquil,
			Description:    "Seminario mensual de presentación de avances en proyectos de investigación de la Facultad de Ingeniería.",
			Recurrence:     model.RecurMonthly,
			Reminder:       model.Reminder1Week,
			Classification: model.ClassSeminar,
		},
		inDays:   14,
		location: 1,
	},
	{
		fields: model.EventFields{
			Title:          "Conferencia: Ciberseguridad y Protección de Datos",
			Guests:         "Expertos invitados",
			Timezone:       model.TZGuayaquil,
			Description:    "Conferencia sobre las mejores prácticas en seguridad informática y cumplimiento de normativas de protección de datos.",
			Recurrence:     model.RecurNone,
			Reminder:       model.Reminder1Day,
			Classification: model.ClassConference,
		},
		inDays:   21,
		location: 3,
	},
}
