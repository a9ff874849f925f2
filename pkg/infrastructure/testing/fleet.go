package testing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// Now is the fixed clock used by fleet scenarios: Sunday 10 March 2024, 08:00 UTC.
var Now = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

// Hours returns Now shifted by h hours.
func Hours(h float64) time.Time {
	return Now.Add(time.Duration(h * float64(time.Hour)))
}

// Reservation builds a reservation picked up at pickup.
func Reservation(resNumber, name, class string, pickup time.Time) entities.Reservation {
	return entities.Reservation{
		ResNumber: resNumber,
		Name:      name,
		Class:     entities.NormalizeClass(class),
		Pickup:    pickup,
	}
}

// Priced adds a drop-off and daily rate to r.
func Priced(r entities.Reservation, dropOff time.Time, rate string) entities.Reservation {
	r.DropOff = &dropOff
	r.DailyRate = decimal.NewNullDecimal(decimal.RequireFromString(rate))
	return r
}

// Available builds a unit on the lot with a full tank.
func Available(unitID, class string) entities.AvailableUnit {
	return entities.AvailableUnit{
		UnitID: unitID,
		Class:  entities.NormalizeClass(class),
		Fuel:   entities.ParseFuel("F"),
	}
}

// DueIn builds a unit expected back at ret.
func DueIn(unitID, class string, ret time.Time) entities.DueInUnit {
	return entities.DueInUnit{
		UnitID:         unitID,
		Class:          entities.NormalizeClass(class),
		ExpectedReturn: ret,
	}
}

// Fleet bundles the three record kinds.
func Fleet(res []entities.Reservation, avail []entities.AvailableUnit, due []entities.DueInUnit) entities.Records {
	return entities.Records{Reservations: res, Available: avail, DueIn: due}
}

// BuildWeekScenario returns a small fleet exercising exact matches, returns
// and upgrades over the first days of the window.
func BuildWeekScenario() entities.Records {
	return Fleet(
		[]entities.Reservation{
			Priced(Reservation("R100", "ALAMI", "cdmr", Hours(4)), Hours(4+72), "350"),
			Priced(Reservation("R101", "BENNANI", "idar", Hours(6)), Hours(6+24), "500.50"),
			Reservation("R102", "CHRAIBI", "mdmr", Hours(26)),
			Reservation("R103", "DOUIRI", "sdah", Hours(27)),
			Reservation("R104", "ELFASSI", "edmr", Hours(28)),
		},
		[]entities.AvailableUnit{
			Available("U1", "cdmr"),
			Available("U2", "mdar"),
			Available("U3", "cfmr"),
		},
		[]entities.DueInUnit{
			DueIn("U7", "idar", Hours(3)),
			DueIn("U8", "edmr", Hours(27.5)),
		},
	)
}

// BuildLargeFleet returns n reservations spread over the window, with about
// as many units split between the lot and returns, cycling through every
// class in the chain.
func BuildLargeFleet(n int) entities.Records {
	chain := entities.ClassChain()
	records := entities.Records{
		Reservations: make([]entities.Reservation, 0, n),
		Available:    make([]entities.AvailableUnit, 0, n/2+1),
		DueIn:        make([]entities.DueInUnit, 0, n/2+1),
	}
	for i := 0; i < n; i++ {
		class := string(chain[i%len(chain)])
		pickup := Hours(float64(i%(7*24)) + 0.5)
		records.Reservations = append(records.Reservations,
			Reservation(fmt.Sprintf("R%05d", i), fmt.Sprintf("CUSTOMER %d", i), class, pickup))

		unitClass := string(chain[(i*7)%len(chain)])
		if i%2 == 0 {
			records.Available = append(records.Available, Available(fmt.Sprintf("A%05d", i), unitClass))
		} else {
			records.DueIn = append(records.DueIn, DueIn(fmt.Sprintf("D%05d", i), unitClass, Hours(float64(i%(6*24)))))
		}
	}
	return records
}
