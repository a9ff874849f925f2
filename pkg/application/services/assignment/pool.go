package assignment

import (
	"sort"
	"time"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// Candidate is a unit that could serve a reservation.
type Candidate struct {
	UnitID     string
	Class      entities.ClassCode
	Source     entities.Source
	ReturnDate *time.Time
}

func (c Candidate) metadata(upgrade bool) entities.Metadata {
	md := entities.Metadata{Source: c.Source, Upgrade: upgrade}
	if c.ReturnDate != nil {
		t := *c.ReturnDate
		md.ReturnDate = &t
	}
	return md
}

// pool is the unit inventory the engine draws from.
type pool struct {
	policy    Policy
	available []entities.AvailableUnit
	availIDs  map[string]struct{}
	dueIn     []entities.DueInUnit
}

func newPool(records entities.Records, policy Policy) *pool {
	p := &pool{policy: policy, availIDs: map[string]struct{}{}}
	for _, u := range records.Available {
		if u.UnitID == "" {
			continue
		}
		if _, dup := p.availIDs[u.UnitID]; dup {
			continue
		}
		p.availIDs[u.UnitID] = struct{}{}
		p.available = append(p.available, u)
	}
	for _, u := range records.DueIn {
		if u.UnitID == "" || policy.excluded(u.Name) {
			continue
		}
		p.dueIn = append(p.dueIn, u)
	}
	return p
}

// at returns the unclaimed candidates for a pickup, ordered by class rank,
// then available before returning, then unit id. Available units shadow
// returns of the same unit; a unit listed twice as due-in keeps its latest
// eligible return.
func (p *pool) at(pickup time.Time, claimed map[string]struct{}) []Candidate {
	out := make([]Candidate, 0, len(p.available)+len(p.dueIn))
	for _, u := range p.available {
		if _, taken := claimed[u.UnitID]; taken {
			continue
		}
		out = append(out, Candidate{UnitID: u.UnitID, Class: u.Class, Source: entities.SourceAvailable})
	}

	returns := map[string]int{}
	for _, u := range p.dueIn {
		if _, shadowed := p.availIDs[u.UnitID]; shadowed {
			continue
		}
		if _, taken := claimed[u.UnitID]; taken {
			continue
		}
		if !p.policy.Eligible(u.ExpectedReturn, pickup) {
			continue
		}
		ret := u.ExpectedReturn
		if i, seen := returns[u.UnitID]; seen {
			if ret.After(*out[i].ReturnDate) {
				out[i].ReturnDate = &ret
				out[i].Class = u.Class
			}
			continue
		}
		returns[u.UnitID] = len(out)
		out = append(out, Candidate{UnitID: u.UnitID, Class: u.Class, Source: entities.SourceReturn, ReturnDate: &ret})
	}

	sortCandidates(out)
	return out
}

func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		ri, rj := cs[i].Class.Rank(), cs[j].Class.Rank()
		if ri != rj {
			return ri < rj
		}
		ai, aj := cs[i].Source == entities.SourceAvailable, cs[j].Source == entities.SourceAvailable
		if ai != aj {
			return ai
		}
		return cs[i].UnitID < cs[j].UnitID
	})
}

// latestReturn finds the latest return of unitID eligible for pickup.
func latestReturn(dueIn []entities.DueInUnit, unitID string, pickup time.Time, policy Policy) (time.Time, bool) {
	var best time.Time
	found := false
	for _, u := range dueIn {
		if u.UnitID != unitID || !policy.Eligible(u.ExpectedReturn, pickup) {
			continue
		}
		if !found || u.ExpectedReturn.After(best) {
			best, found = u.ExpectedReturn, true
		}
	}
	return best, found
}
