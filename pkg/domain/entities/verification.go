package entities

import "time"

// Verification is what an agent recorded while walking the lot for one unit.
type Verification struct {
	ActualKm  *float64  `json:"actualKm,omitempty"`
	Fuel      string    `json:"fuel,omitempty"`
	Checked   bool      `json:"checked"`
	CheckedAt time.Time `json:"checkedAt"`
}

// VerificationUpdate changes the fields that are set and leaves the rest.
type VerificationUpdate struct {
	ActualKm *float64
	Fuel     *string
	Checked  *bool
}

// Apply returns v with the update's fields written over it.
func (u VerificationUpdate) Apply(v Verification, at time.Time) Verification {
	if u.ActualKm != nil {
		km := *u.ActualKm
		v.ActualKm = &km
	}
	if u.Fuel != nil {
		v.Fuel = *u.Fuel
	}
	if u.Checked != nil {
		v.Checked = *u.Checked
	}
	v.CheckedAt = at
	return v
}
