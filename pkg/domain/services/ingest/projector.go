package ingest

import (
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/services/datenorm"
)

// DropReason explains why a row did not become a record.
type DropReason string

const (
	DropMissingResNumber      DropReason = "missing_res_number"
	DropMissingName           DropReason = "missing_name"
	DropMissingPickup         DropReason = "missing_pickup"
	DropDuplicateResNumber    DropReason = "duplicate_res_number"
	DropMissingUnitID         DropReason = "missing_unit_id"
	DropMissingUnitOrName     DropReason = "missing_unit_or_name"
	DropMissingExpectedReturn DropReason = "missing_expected_return"
)

// Stats counts what happened to a table's rows.
type Stats struct {
	Kind    entities.RecordKind
	Read    int
	Kept    int
	Dropped map[DropReason]int
}

// DroppedTotal sums the dropped rows over all reasons.
func (s Stats) DroppedTotal() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

func (s *Stats) drop(reason DropReason) {
	if s.Dropped == nil {
		s.Dropped = map[DropReason]int{}
	}
	s.Dropped[reason]++
}

// Projection holds the records projected from one table. Only the slice
// matching Kind is populated.
type Projection struct {
	Kind         entities.RecordKind
	Reservations []entities.Reservation
	Available    []entities.AvailableUnit
	DueIn        []entities.DueInUnit
}

// Projector maps classified rows onto canonical records.
type Projector struct {
	schema     Schema
	classifier *Classifier
	dates      *datenorm.Normalizer
}

// NewProjector returns a projector using schema for column names and dates
// for every date cell.
func NewProjector(schema Schema, dates *datenorm.Normalizer) *Projector {
	if dates == nil {
		dates = datenorm.New(nil)
	}
	return &Projector{
		schema:     schema,
		classifier: NewClassifier(schema),
		dates:      dates,
	}
}

// Classifier exposes the classifier built from the projector's schema.
func (p *Projector) Classifier() *Classifier {
	return p.classifier
}

// Project classifies table and projects its rows. An unknown table yields
// an empty projection of kind unknown.
func (p *Projector) Project(table entities.Table) (Projection, Stats) {
	return p.ProjectAs(p.classifier.ClassifyTable(table), table)
}

// ProjectAs projects table as kind, skipping classification.
func (p *Projector) ProjectAs(kind entities.RecordKind, table entities.Table) (Projection, Stats) {
	out := Projection{Kind: kind}
	stats := Stats{Kind: kind, Read: len(table.Rows)}
	ext := NewExtractor(table.Headers)

	switch kind {
	case entities.KindReservations:
		out.Reservations = p.reservations(ext, table.Rows, &stats)
		stats.Kept = len(out.Reservations)
	case entities.KindAvailable:
		out.Available = p.available(ext, table.Rows, &stats)
		stats.Kept = len(out.Available)
	case entities.KindDueIn:
		out.DueIn = p.dueIn(ext, table.Rows, &stats)
		stats.Kept = len(out.DueIn)
	default:
		out.Kind = entities.KindUnknown
		stats.Kind = entities.KindUnknown
	}
	return out, stats
}

func (p *Projector) text(ext *Extractor, row entities.Row, spec FieldSpec) string {
	v, _ := ext.Extract(row, spec)
	return Text(v)
}

func (p *Projector) reservations(ext *Extractor, rows []entities.Row, stats *Stats) []entities.Reservation {
	f := p.schema.Reservations
	seen := make(map[string]struct{}, len(rows))
	out := make([]entities.Reservation, 0, len(rows))

	for _, row := range rows {
		res := entities.Reservation{
			ResNumber: p.text(ext, row, f.ResNumber),
			Name:      p.text(ext, row, f.Name),
			Class:     entities.NormalizeClass(p.text(ext, row, f.Class)),
		}
		if res.ResNumber == "" {
			stats.drop(DropMissingResNumber)
			continue
		}
		if res.Name == "" {
			stats.drop(DropMissingName)
			continue
		}

		raw, _ := ext.Extract(row, f.Pickup)
		pickup, ok := p.dates.Normalize(raw)
		if !ok {
			stats.drop(DropMissingPickup)
			continue
		}
		res.Pickup = pickup

		if raw, found := ext.Extract(row, f.DropOff); found {
			if drop, ok := p.dates.Normalize(raw); ok {
				res.DropOff = &drop
			}
		}
		if raw, found := ext.Extract(row, f.DailyRate); found {
			res.DailyRate = ParseDecimal(raw)
		}

		if _, dup := seen[res.ResNumber]; dup {
			stats.drop(DropDuplicateResNumber)
			continue
		}
		seen[res.ResNumber] = struct{}{}
		out = append(out, res)
	}
	return out
}

func (p *Projector) available(ext *Extractor, rows []entities.Row, stats *Stats) []entities.AvailableUnit {
	f := p.schema.Available
	out := make([]entities.AvailableUnit, 0, len(rows))

	for _, row := range rows {
		unit := entities.AvailableUnit{
			UnitID: entities.CleanUnitID(p.text(ext, row, f.UnitID)),
			Class:  entities.NormalizeClass(p.text(ext, row, f.Class)),
			Fuel:   entities.ParseFuel(p.text(ext, row, f.Fuel)),
			Plate:  p.text(ext, row, f.Plate),
		}
		if unit.UnitID == "" {
			stats.drop(DropMissingUnitID)
			continue
		}
		if raw, found := ext.Extract(row, f.Odometer); found {
			unit.Odometer = ParseOdometer(raw)
		}
		if loc := p.text(ext, row, f.Location); loc != "" {
			unit.Location = p.schema.Locations.Normalize(loc)
		}
		out = append(out, unit)
	}
	return out
}

func (p *Projector) dueIn(ext *Extractor, rows []entities.Row, stats *Stats) []entities.DueInUnit {
	f := p.schema.DueIn
	out := make([]entities.DueInUnit, 0, len(rows))

	for _, row := range rows {
		unit := entities.DueInUnit{
			UnitID: entities.CleanUnitID(p.text(ext, row, f.UnitID)),
			Model:  p.text(ext, row, f.Model),
			Class:  entities.NormalizeClass(p.text(ext, row, f.Class)),
			Name:   p.text(ext, row, f.Name),
		}
		if unit.UnitID == "" && unit.Name == "" {
			stats.drop(DropMissingUnitOrName)
			continue
		}

		raw, _ := ext.Extract(row, f.ExpectedReturn)
		expected, ok := p.dates.Normalize(raw)
		if !ok {
			stats.drop(DropMissingExpectedReturn)
			continue
		}
		unit.ExpectedReturn = expected

		if raw, found := ext.Extract(row, f.DaysLate); found {
			unit.DaysLate = LeadingInt(raw)
		}
		unit.Location = p.location(p.text(ext, row, f.Location), unit.UnitID)
		out = append(out, unit)
	}
	return out
}

// location prefers the location column, then a branch code embedded in the
// unit id.
func (p *Projector) location(raw, unitID string) string {
	if raw != "" {
		return p.schema.Locations.Normalize(raw)
	}
	if name, ok := p.schema.Locations.Resolve(unitID); ok {
		return name
	}
	return ""
}
