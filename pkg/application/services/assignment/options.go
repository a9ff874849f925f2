package assignment

import (
	"sort"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// Options lists the units an operator may choose for res: every unit able to
// serve its class, exact matches first and upgrades after by rank. Units held
// by another reservation are listed but flagged. The currently assigned unit
// is always included.
func (e *Engine) Options(records entities.Records, current dto.AssignmentResult, res entities.Reservation) []dto.UnitOption {
	assigned := current.Assignments[res.ResNumber]
	candidates := newPool(records, e.policy).at(res.Pickup, nil)

	var out []dto.UnitOption
	listed := map[string]struct{}{}
	for _, c := range candidates {
		if !entities.CanSatisfy(res.Class, c.Class) && c.UnitID != assigned {
			continue
		}
		listed[c.UnitID] = struct{}{}
		out = append(out, e.option(current, res, c, assigned))
	}

	if assigned != "" && assigned != entities.NoUnit {
		if _, ok := listed[assigned]; !ok {
			c := Candidate{UnitID: assigned, Source: entities.SourceAvailable}
			if md, ok := current.Metadata[res.ResNumber]; ok && md.Source != "" {
				c.Source = md.Source
				c.ReturnDate = md.ReturnDate
			}
			c.Class, _ = records.UnitClass(assigned)
			out = append(out, e.option(current, res, c, assigned))
		}
	}

	want := entities.NormalizeClass(string(res.Class))
	sort.SliceStable(out, func(i, j int) bool {
		ei := entities.NormalizeClass(string(out[i].Class)) == want
		ej := entities.NormalizeClass(string(out[j].Class)) == want
		if ei != ej {
			return ei
		}
		return out[i].Class.Rank() < out[j].Class.Rank()
	})
	return out
}

func (e *Engine) option(current dto.AssignmentResult, res entities.Reservation, c Candidate, assigned string) dto.UnitOption {
	opt := dto.UnitOption{
		UnitID:     c.UnitID,
		Class:      c.Class,
		Source:     c.Source,
		ReturnDate: c.ReturnDate,
		Upgrade:    entities.IsUpgrade(res.Class, c.Class),
		Current:    c.UnitID == assigned,
	}
	if holder, ok := current.Assignments.Holder(c.UnitID); ok && holder != res.ResNumber {
		opt.TakenBy = holder
		opt.TakenElsewhere = true
	}
	return opt
}
