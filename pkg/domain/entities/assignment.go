package entities

import "time"

// NoUnit is the explicit "no vehicle" assignment set by an operator.
const NoUnit = "none"

// Source records where an assigned unit came from.
type Source string

const (
	SourceAvailable Source = "available"
	SourceReturn    Source = "return"
	SourceManual    Source = "manual"
)

// Metadata is the provenance of one assignment.
type Metadata struct {
	Source     Source     `json:"source"`
	ReturnDate *time.Time `json:"returnDate"`
	Upgrade    bool       `json:"upgrade"`
	// Pinned entries were set by an operator and survive every recompute.
	Pinned bool `json:"pinned,omitempty"`
}

// Assignments maps reservation numbers to a unit id or NoUnit.
type Assignments map[string]string

// MetadataMap maps reservation numbers to assignment provenance.
type MetadataMap map[string]Metadata

// Clone returns an independent copy.
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Holder returns the reservation holding unitID, if any.
func (a Assignments) Holder(unitID string) (string, bool) {
	for res, unit := range a {
		if unit == unitID && unit != NoUnit {
			return res, true
		}
	}
	return "", false
}

// ClaimedUnits returns the set of units assigned to any reservation.
func (a Assignments) ClaimedUnits() map[string]struct{} {
	out := make(map[string]struct{}, len(a))
	for _, unit := range a {
		if unit != "" && unit != NoUnit {
			out[unit] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy, including return dates.
func (m MetadataMap) Clone() MetadataMap {
	out := make(MetadataMap, len(m))
	for k, v := range m {
		if v.ReturnDate != nil {
			t := *v.ReturnDate
			v.ReturnDate = &t
		}
		out[k] = v
	}
	return out
}

// Pinned returns the subset of entries marked pinned in meta.
func Pinned(asg Assignments, meta MetadataMap) (Assignments, MetadataMap) {
	pa, pm := Assignments{}, MetadataMap{}
	for res, unit := range asg {
		if md, ok := meta[res]; ok && md.Pinned {
			pa[res] = unit
			pm[res] = md
		}
	}
	return pa, pm.Clone()
}
