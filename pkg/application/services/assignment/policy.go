package assignment

import (
	"strings"
	"time"
)

const (
	DefaultWindow            = 7 * 24 * time.Hour
	DefaultEligibilityMargin = time.Hour
)

// Policy holds the business thresholds of the assignment heuristic.
type Policy struct {
	// Window is how far ahead of now reservations are considered.
	Window time.Duration
	// EligibilityMargin is the minimum turnaround between a unit's expected
	// return and the next pickup it may serve.
	EligibilityMargin time.Duration
	// ExcludedReturnAccounts lists renters whose returning units are never
	// matched automatically. Compared case-insensitively.
	ExcludedReturnAccounts []string
}

// DefaultPolicy returns a 7 day window, a 1 hour margin and no exclusions.
func DefaultPolicy() Policy {
	return Policy{
		Window:            DefaultWindow,
		EligibilityMargin: DefaultEligibilityMargin,
	}
}

// InWindow reports whether t falls in [now, now+Window].
func (p Policy) InWindow(t, now time.Time) bool {
	return !t.Before(now) && !t.After(now.Add(p.Window))
}

// Eligible reports whether a unit returning at ret can serve a pickup.
func (p Policy) Eligible(ret, pickup time.Time) bool {
	return pickup.Sub(ret) >= p.EligibilityMargin
}

func (p Policy) excluded(account string) bool {
	name := strings.TrimSpace(account)
	if name == "" {
		return false
	}
	for _, x := range p.ExcludedReturnAccounts {
		if strings.EqualFold(strings.TrimSpace(x), name) {
			return true
		}
	}
	return false
}
