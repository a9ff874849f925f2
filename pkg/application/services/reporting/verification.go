package reporting

import (
	"sort"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// VerificationRow is one line of the lot check sheet.
type VerificationRow struct {
	Unit        entities.AvailableUnit `json:"unit"`
	FuelNotFull bool                   `json:"fuelNotFull"`
	Check       *entities.Verification `json:"check,omitempty"`
	// KmDelta is the recorded reading minus the exported odometer.
	KmDelta *float64 `json:"kmDelta,omitempty"`
}

// VerificationSheet lists every available unit by class then unit number,
// flags tanks below the full threshold and joins the recorded checks. A
// fuel level recorded on the lot takes precedence over the exported one.
func (r *Reporter) VerificationSheet(records entities.Records, checks map[string]entities.Verification) []VerificationRow {
	out := make([]VerificationRow, 0, len(records.Available))
	for _, u := range records.Available {
		row := VerificationRow{Unit: u}
		fuel := u.Fuel
		if v, ok := checks[u.UnitID]; ok {
			v := v
			row.Check = &v
			if v.Fuel != "" {
				fuel = entities.ParseFuel(v.Fuel)
			}
			if v.ActualKm != nil && u.Odometer != nil {
				d := *v.ActualKm - *u.Odometer
				row.KmDelta = &d
			}
		}
		row.FuelNotFull = fuel.Known() && !fuel.IsFull(r.fuelThreshold)
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Unit.Class.Rank(), out[j].Unit.Class.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Unit.UnitID < out[j].Unit.UnitID
	})
	return out
}
