package dto

import (
	"sort"
	"time"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/services/ingest"
)

// AssignmentResult is the complete output of an assignment run.
type AssignmentResult struct {
	Assignments entities.Assignments `json:"assignments"`
	Metadata    entities.MetadataMap `json:"metadata"`
}

// Clone returns an independent copy of the result.
func (r AssignmentResult) Clone() AssignmentResult {
	return AssignmentResult{
		Assignments: r.Assignments.Clone(),
		Metadata:    r.Metadata.Clone(),
	}
}

// Changes lists the reservations whose entry differs from prev, sorted.
func (r AssignmentResult) Changes(prev AssignmentResult) []string {
	var out []string
	seen := map[string]struct{}{}
	for res, unit := range r.Assignments {
		seen[res] = struct{}{}
		if prev.Assignments[res] != unit {
			out = append(out, res)
		}
	}
	for res := range prev.Assignments {
		if _, ok := seen[res]; !ok {
			out = append(out, res)
		}
	}
	sort.Strings(out)
	return out
}

// ImportResult describes one imported table.
type ImportResult struct {
	Source   string              `json:"source"`
	Kind     entities.RecordKind `json:"kind"`
	Stats    ingest.Stats        `json:"stats"`
	Released int                 `json:"released"`
	Result   AssignmentResult    `json:"result"`
}

// UnitOption is a unit an operator may pick for a reservation.
type UnitOption struct {
	UnitID         string             `json:"unit"`
	Class          entities.ClassCode `json:"class"`
	Source         entities.Source    `json:"source"`
	ReturnDate     *time.Time         `json:"returnDate,omitempty"`
	Upgrade        bool               `json:"upgrade"`
	Current        bool               `json:"current"`
	TakenBy        string             `json:"takenBy,omitempty"`
	TakenElsewhere bool               `json:"takenElsewhere"`
}
