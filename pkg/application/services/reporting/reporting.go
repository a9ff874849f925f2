// Package reporting derives the dashboard read models from records and the
// current assignment result. Nothing here changes state.
package reporting

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/application/services/assignment"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// UnknownLocation groups due-in units without a usable location.
const UnknownLocation = "Unknown"

// Reporter builds reports relative to a clock and an assignment window.
type Reporter struct {
	engine        *assignment.Engine
	fuelThreshold float64
}

// New creates a reporter sharing the engine's window and time zone. A
// non-positive threshold falls back to entities.DefaultFuelFullThreshold.
func New(engine *assignment.Engine, fuelThreshold float64) *Reporter {
	if fuelThreshold <= 0 {
		fuelThreshold = entities.DefaultFuelFullThreshold
	}
	return &Reporter{engine: engine, fuelThreshold: fuelThreshold}
}

// KPIs are the headline counters.
type KPIs struct {
	Reservations    int             `json:"reservations"`
	Upcoming        int             `json:"upcoming"`
	Available       int             `json:"available"`
	OnRent          int             `json:"onRent"`
	Overdue         int             `json:"overdue"`
	UpcomingRevenue decimal.Decimal `json:"upcomingRevenue"`
}

// KPIs counts records and sums the expected revenue of upcoming
// reservations: billed days times daily rate, skipping reservations without
// a drop-off or a rate.
func (r *Reporter) KPIs(records entities.Records, now time.Time) KPIs {
	upcoming := r.engine.Upcoming(records.Reservations, now)
	k := KPIs{
		Reservations:    len(records.Reservations),
		Upcoming:        len(upcoming),
		Available:       len(records.Available),
		OnRent:          len(records.DueIn),
		UpcomingRevenue: decimal.Zero,
	}
	for _, u := range records.DueIn {
		if u.Overdue() {
			k.Overdue++
		}
	}
	for _, res := range upcoming {
		days, ok := res.RentalDays()
		if !ok || !res.DailyRate.Valid {
			continue
		}
		k.UpcomingRevenue = k.UpcomingRevenue.Add(res.DailyRate.Decimal.Mul(decimal.NewFromInt(days)))
	}
	return k
}

// Summary describes how well upcoming reservations are covered.
type Summary struct {
	Upcoming    int `json:"upcoming"`
	Assigned    int `json:"assigned"`
	Unassigned  int `json:"unassigned"`
	FromReturns int `json:"fromReturns"`
	Upgrades    int `json:"upgrades"`
}

// Summary counts upcoming reservations by assignment state. A reservation
// set to "none" counts as unassigned.
func (r *Reporter) Summary(records entities.Records, result dto.AssignmentResult, now time.Time) Summary {
	var s Summary
	for _, res := range r.engine.Upcoming(records.Reservations, now) {
		s.Upcoming++
		unit := result.Assignments[res.ResNumber]
		if unit == "" || unit == entities.NoUnit {
			s.Unassigned++
			continue
		}
		s.Assigned++
		md := result.Metadata[res.ResNumber]
		if md.Source == entities.SourceReturn {
			s.FromReturns++
		}
		if md.Upgrade {
			s.Upgrades++
		}
	}
	return s
}

// UpcomingReturns lists due-in units expected back within the window,
// earliest first.
func (r *Reporter) UpcomingReturns(records entities.Records, now time.Time) []entities.DueInUnit {
	policy := r.engine.Policy()
	var out []entities.DueInUnit
	for _, u := range records.DueIn {
		if policy.InWindow(u.ExpectedReturn, now) {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpectedReturn.Equal(out[j].ExpectedReturn) {
			return out[i].ExpectedReturn.Before(out[j].ExpectedReturn)
		}
		return out[i].UnitID < out[j].UnitID
	})
	return out
}

// Overdue lists late units, latest first.
func (r *Reporter) Overdue(records entities.Records) []entities.DueInUnit {
	var out []entities.DueInUnit
	for _, u := range records.DueIn {
		if u.Overdue() {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysLate != out[j].DaysLate {
			return out[i].DaysLate > out[j].DaysLate
		}
		return out[i].UnitID < out[j].UnitID
	})
	return out
}

// LocationGroup is the due-in units heading to one location.
type LocationGroup struct {
	Location string               `json:"location"`
	Units    []entities.DueInUnit `json:"units"`
}

// DueInByLocation groups due-in units by location, alphabetically, with the
// unknown group last. Units within a group are ordered by expected return.
func (r *Reporter) DueInByLocation(records entities.Records) []LocationGroup {
	groups := map[string][]entities.DueInUnit{}
	for _, u := range records.DueIn {
		loc := strings.TrimSpace(u.Location)
		if loc == "" {
			loc = UnknownLocation
		}
		groups[loc] = append(groups[loc], u)
	}

	out := make([]LocationGroup, 0, len(groups))
	for loc, units := range groups {
		sort.SliceStable(units, func(i, j int) bool {
			return units[i].ExpectedReturn.Before(units[j].ExpectedReturn)
		})
		out = append(out, LocationGroup{Location: loc, Units: units})
	}
	sort.Slice(out, func(i, j int) bool {
		ui, uj := out[i].Location == UnknownLocation, out[j].Location == UnknownLocation
		if ui != uj {
			return uj
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// AvailabilityRow is one unit on the lot.
type AvailabilityRow struct {
	Unit     entities.AvailableUnit `json:"unit"`
	Locked   bool                   `json:"locked"`
	LockedBy string                 `json:"lockedBy,omitempty"`
}

// CategoryGroup is the units on the lot of one class.
type CategoryGroup struct {
	Class entities.ClassCode `json:"class"`
	Units []AvailabilityRow  `json:"units"`
}

// AvailabilityByCategory groups available units by class in chain order,
// unknown classes last. A unit is locked when a reservation holds it.
func (r *Reporter) AvailabilityByCategory(records entities.Records, result dto.AssignmentResult) []CategoryGroup {
	groups := map[entities.ClassCode][]AvailabilityRow{}
	for _, u := range records.Available {
		row := AvailabilityRow{Unit: u}
		if holder, ok := result.Assignments.Holder(u.UnitID); ok {
			row.Locked, row.LockedBy = true, holder
		}
		cls := entities.NormalizeClass(string(u.Class))
		groups[cls] = append(groups[cls], row)
	}

	out := make([]CategoryGroup, 0, len(groups))
	for cls, rows := range groups {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Unit.UnitID < rows[j].Unit.UnitID })
		out = append(out, CategoryGroup{Class: cls, Units: rows})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Class.Rank(), out[j].Class.Rank()
		if (ri < 0) != (rj < 0) {
			return rj < 0
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Class < out[j].Class
	})
	return out
}
