package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reservation is an upcoming rental as read from the reservations export.
type Reservation struct {
	ResNumber string              `json:"resNumber"`
	Name      string              `json:"name"`
	Class     ClassCode           `json:"class"`
	Pickup    time.Time           `json:"pickupDate"`
	DropOff   *time.Time          `json:"dropOffDate"`
	DailyRate decimal.NullDecimal `json:"dailyRate"`
}

// RentalDays is the billed duration: whole days between pickup and drop-off,
// at least one. ok is false when there is no drop-off.
func (r Reservation) RentalDays() (days int64, ok bool) {
	if r.DropOff == nil {
		return 0, false
	}
	days = int64(r.DropOff.Sub(r.Pickup) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days, true
}

// AvailableUnit is a vehicle on the lot, ready to go out.
type AvailableUnit struct {
	UnitID   string    `json:"unitNumber"`
	Class    ClassCode `json:"class"`
	Fuel     FuelLevel `json:"currentFuel"`
	Odometer *float64  `json:"currentOdo"`
	Plate    string    `json:"plate,omitempty"`
	Location string    `json:"location,omitempty"`
}

// DueInUnit is a vehicle currently on rent and expected back.
type DueInUnit struct {
	UnitID         string    `json:"unitNumber"`
	Model          string    `json:"model,omitempty"`
	Class          ClassCode `json:"class"`
	DaysLate       int       `json:"daysLate"`
	Name           string    `json:"name,omitempty"`
	Location       string    `json:"location,omitempty"`
	ExpectedReturn time.Time `json:"expectedReturn"`
}

// Overdue reports whether the renter is past the agreed return.
func (d DueInUnit) Overdue() bool {
	return d.DaysLate > 0
}

var returnSuffix = regexp.MustCompile(`(?i)\s*\((retour|return)\)$`)

// CleanUnitID trims a unit identifier and removes a trailing "(retour)" or
// "(return)" marker that some exports append.
func CleanUnitID(raw string) string {
	s := strings.TrimSpace(raw)
	return strings.TrimSpace(returnSuffix.ReplaceAllString(s, ""))
}

// Records is the canonical view of the three imports.
type Records struct {
	Reservations []Reservation
	Available    []AvailableUnit
	DueIn        []DueInUnit
}

// FindReservation returns the reservation with the given number.
func (r Records) FindReservation(resNumber string) (Reservation, bool) {
	for _, res := range r.Reservations {
		if res.ResNumber == resNumber {
			return res, true
		}
	}
	return Reservation{}, false
}

// UnitClass looks a unit's class up in the available units first, then the
// due-in units.
func (r Records) UnitClass(unitID string) (ClassCode, bool) {
	for _, u := range r.Available {
		if u.UnitID == unitID {
			return u.Class, true
		}
	}
	for _, u := range r.DueIn {
		if u.UnitID == unitID {
			return u.Class, true
		}
	}
	return "", false
}

// Count returns the number of records of the given kind.
func (r Records) Count(kind RecordKind) int {
	switch kind {
	case KindReservations:
		return len(r.Reservations)
	case KindAvailable:
		return len(r.Available)
	case KindDueIn:
		return len(r.DueIn)
	default:
		return 0
	}
}
