// Package assignment matches upcoming reservations to fleet units.
//
// The heuristic works one pickup day at a time, earliest first. Within a day
// every reservation is first offered a unit of exactly its class; only the
// reservations still unmatched are then offered larger classes along the
// upgrade chain. Units already claimed by existing entries, or by earlier
// picks of the same run, are never handed out twice.
package assignment

import (
	"sort"
	"time"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// Input is what one assignment run needs.
type Input struct {
	Records  entities.Records
	Existing dto.AssignmentResult
	Now      time.Time
}

// Engine runs the assignment heuristic. It holds no state between runs.
type Engine struct {
	policy Policy
	loc    *time.Location
}

// NewEngine creates an engine. Day grouping happens in loc.
func NewEngine(policy Policy, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if policy.Window <= 0 {
		policy.Window = DefaultWindow
	}
	return &Engine{policy: policy, loc: loc}
}

func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) Location() *time.Location { return e.loc }

// Upcoming returns the reservations picked up within the window, ordered by
// pickup then reservation number.
func (e *Engine) Upcoming(reservations []entities.Reservation, now time.Time) []entities.Reservation {
	var out []entities.Reservation
	for _, r := range reservations {
		if e.policy.InWindow(r.Pickup, now) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Pickup.Equal(out[j].Pickup) {
			return out[i].Pickup.Before(out[j].Pickup)
		}
		return out[i].ResNumber < out[j].ResNumber
	})
	return out
}

// Assign extends in.Existing with new matches. Existing entries are carried
// over unchanged and their units stay claimed. Inputs are not modified.
func (e *Engine) Assign(in Input) dto.AssignmentResult {
	out := in.Existing.Clone()
	if out.Assignments == nil {
		out.Assignments = entities.Assignments{}
	}
	if out.Metadata == nil {
		out.Metadata = entities.MetadataMap{}
	}

	claimed := out.Assignments.ClaimedUnits()
	units := newPool(in.Records, e.policy)

	for _, day := range e.byDay(e.Upcoming(in.Records.Reservations, in.Now)) {
		var pending []entities.Reservation
		for _, r := range day {
			if out.Assignments[r.ResNumber] != "" {
				continue
			}
			pending = append(pending, r)
		}

		// Exact class first, for the whole day.
		var unmatched []entities.Reservation
		for _, r := range pending {
			c, ok := pick(units.at(r.Pickup, claimed), r.Class, r.Class)
			if !ok {
				unmatched = append(unmatched, r)
				continue
			}
			e.record(out, claimed, r, c, false)
		}

		for _, r := range unmatched {
			auto := r.Class.IsAutomatic()
			for _, cls := range entities.UpgradePath(r.Class)[1:] {
				if auto && !cls.IsAutomatic() {
					continue
				}
				c, ok := pick(units.at(r.Pickup, claimed), r.Class, cls)
				if ok {
					e.record(out, claimed, r, c, true)
					break
				}
			}
		}
	}
	return out
}

func (e *Engine) record(out dto.AssignmentResult, claimed map[string]struct{}, r entities.Reservation, c Candidate, upgrade bool) {
	out.Assignments[r.ResNumber] = c.UnitID
	out.Metadata[r.ResNumber] = c.metadata(upgrade)
	claimed[c.UnitID] = struct{}{}
}

// pick returns the first candidate of class cls able to serve requested.
func pick(candidates []Candidate, requested, cls entities.ClassCode) (Candidate, bool) {
	want := entities.NormalizeClass(string(cls))
	for _, c := range candidates {
		if entities.NormalizeClass(string(c.Class)) != want {
			continue
		}
		if entities.CanSatisfy(requested, c.Class) {
			return c, true
		}
	}
	return Candidate{}, false
}

// byDay groups sorted reservations by local calendar date, keeping order.
func (e *Engine) byDay(sorted []entities.Reservation) [][]entities.Reservation {
	var days [][]entities.Reservation
	var last string
	for _, r := range sorted {
		key := r.Pickup.In(e.loc).Format("2006-01-02")
		if len(days) == 0 || key != last {
			days = append(days, nil)
			last = key
		}
		days[len(days)-1] = append(days[len(days)-1], r)
	}
	return days
}
