package assignment

import (
	"strings"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// NormalizeChoice cleans an operator's unit choice. Any spelling of "none"
// maps to entities.NoUnit and an empty choice stays empty.
func NormalizeChoice(unit string) string {
	u := entities.CleanUnitID(unit)
	if strings.EqualFold(u, entities.NoUnit) {
		return entities.NoUnit
	}
	return u
}

// Provenance derives the metadata of an operator assignment. A unit counts
// as coming from returns when one of its due-in returns lands at least the
// margin before the pickup; the latest such return is reported.
func (e *Engine) Provenance(records entities.Records, resNumber, unit string) entities.Metadata {
	if unit == entities.NoUnit {
		return entities.Metadata{Source: entities.SourceManual, Pinned: true}
	}
	md := entities.Metadata{Source: entities.SourceAvailable, Pinned: true}
	res, ok := records.FindReservation(resNumber)
	if !ok {
		return md
	}
	if ret, ok := latestReturn(records.DueIn, unit, res.Pickup, e.policy); ok {
		md.Source = entities.SourceReturn
		md.ReturnDate = &ret
	}
	if cls, ok := records.UnitClass(unit); ok {
		md.Upgrade = entities.IsUpgrade(res.Class, cls)
	}
	return md
}

// Override returns a copy of current with resNumber pinned to unit, which is
// a unit id or entities.NoUnit. Checking that the unit is free is up to the
// caller.
func (e *Engine) Override(current dto.AssignmentResult, records entities.Records, resNumber, unit string) dto.AssignmentResult {
	out := current.Clone()
	if out.Assignments == nil {
		out.Assignments = entities.Assignments{}
	}
	if out.Metadata == nil {
		out.Metadata = entities.MetadataMap{}
	}
	out.Assignments[resNumber] = unit
	out.Metadata[resNumber] = e.Provenance(records, resNumber, unit)
	return out
}

// Release returns a copy of current without resNumber's entry.
func Release(current dto.AssignmentResult, resNumber string) dto.AssignmentResult {
	out := current.Clone()
	delete(out.Assignments, resNumber)
	delete(out.Metadata, resNumber)
	return out
}
