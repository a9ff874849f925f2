package output

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/application/services/reporting"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

const timeLayout = "2006-01-02 15:04"

func when(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func whenPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return when(*t)
}

func yes(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func km(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// AssignmentRow joins a reservation with its assignment entry.
type AssignmentRow struct {
	ResNumber  string             `json:"resNumber"`
	Name       string             `json:"name"`
	Class      entities.ClassCode `json:"class"`
	Pickup     time.Time          `json:"pickup"`
	Unit       string             `json:"unit,omitempty"`
	Source     entities.Source    `json:"source,omitempty"`
	ReturnDate *time.Time         `json:"returnDate,omitempty"`
	Upgrade    bool               `json:"upgrade"`
	Pinned     bool               `json:"pinned"`
}

// AssignmentRows lists reservations in the given order with their entries.
func AssignmentRows(reservations []entities.Reservation, result dto.AssignmentResult) []AssignmentRow {
	rows := make([]AssignmentRow, 0, len(reservations))
	for _, res := range reservations {
		md := result.Metadata[res.ResNumber]
		row := AssignmentRow{
			ResNumber: res.ResNumber,
			Name:      res.Name,
			Class:     res.Class,
			Pickup:    res.Pickup,
			Unit:      result.Assignments[res.ResNumber],
		}
		if row.Unit != "" {
			row.Source, row.ReturnDate = md.Source, md.ReturnDate
			row.Upgrade, row.Pinned = md.Upgrade, md.Pinned
		}
		rows = append(rows, row)
	}
	return rows
}

func AssignmentTable(title string, rows []AssignmentRow) Table {
	t := Table{
		Title:   title,
		Headers: []string{"res #", "name", "class", "pickup", "unit", "source", "return", "upgrade", "pinned"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.ResNumber, r.Name, string(r.Class), when(r.Pickup), r.Unit,
			string(r.Source), whenPtr(r.ReturnDate), yes(r.Upgrade), yes(r.Pinned),
		})
	}
	return t
}

func ImportTable(results []dto.ImportResult) Table {
	t := Table{
		Title:   "Imports",
		Headers: []string{"source", "kind", "read", "kept", "dropped", "released", "assigned"},
	}
	for _, r := range results {
		t.Rows = append(t.Rows, []string{
			r.Source, string(r.Kind),
			strconv.Itoa(r.Stats.Read), strconv.Itoa(r.Stats.Kept), strconv.Itoa(r.Stats.DroppedTotal()),
			strconv.Itoa(r.Released), strconv.Itoa(len(r.Result.Assignments)),
		})
	}
	return t
}

func OptionsTable(res entities.Reservation, opts []dto.UnitOption) Table {
	t := Table{
		Title:   fmt.Sprintf("Options for %s (%s, %s)", res.ResNumber, res.Class, when(res.Pickup)),
		Headers: []string{"unit", "class", "source", "return", "upgrade", "current", "taken by"},
	}
	for _, o := range opts {
		takenBy := ""
		if o.TakenElsewhere {
			takenBy = o.TakenBy
		}
		t.Rows = append(t.Rows, []string{
			o.UnitID, string(o.Class), string(o.Source), whenPtr(o.ReturnDate),
			yes(o.Upgrade), yes(o.Current), takenBy,
		})
	}
	return t
}

func KPITable(k reporting.KPIs, s reporting.Summary) Table {
	return Table{
		Title:   "Key figures",
		Headers: []string{"metric", "value"},
		Rows: [][]string{
			{"reservations", strconv.Itoa(k.Reservations)},
			{"upcoming", strconv.Itoa(k.Upcoming)},
			{"assigned", strconv.Itoa(s.Assigned)},
			{"unassigned", strconv.Itoa(s.Unassigned)},
			{"from returns", strconv.Itoa(s.FromReturns)},
			{"upgrades", strconv.Itoa(s.Upgrades)},
			{"available", strconv.Itoa(k.Available)},
			{"on rent", strconv.Itoa(k.OnRent)},
			{"overdue", strconv.Itoa(k.Overdue)},
			{"upcoming revenue", k.UpcomingRevenue.StringFixed(2)},
		},
	}
}

func DueInTable(title string, units []entities.DueInUnit) Table {
	t := Table{
		Title:   title,
		Headers: []string{"unit", "model", "class", "name", "location", "expected return", "days late"},
	}
	for _, u := range units {
		t.Rows = append(t.Rows, []string{
			u.UnitID, u.Model, string(u.Class), u.Name, u.Location,
			when(u.ExpectedReturn), strconv.Itoa(u.DaysLate),
		})
	}
	return t
}

func LocationTable(groups []reporting.LocationGroup) Table {
	t := Table{
		Title:   "Due in by location",
		Headers: []string{"location", "unit", "class", "name", "expected return"},
	}
	for _, g := range groups {
		for _, u := range g.Units {
			t.Rows = append(t.Rows, []string{g.Location, u.UnitID, string(u.Class), u.Name, when(u.ExpectedReturn)})
		}
	}
	return t
}

func AvailabilityTable(groups []reporting.CategoryGroup) Table {
	t := Table{
		Title:   "Availability",
		Headers: []string{"class", "unit", "fuel", "odometer", "plate", "location", "locked by"},
	}
	for _, g := range groups {
		for _, row := range g.Units {
			u := row.Unit
			t.Rows = append(t.Rows, []string{
				string(g.Class), u.UnitID, u.Fuel.String(), km(u.Odometer), u.Plate, u.Location, row.LockedBy,
			})
		}
	}
	return t
}

func BusyTable(days []reporting.BusyDay) Table {
	t := Table{
		Title:   "Busy hours",
		Headers: []string{"date", "hour", "pickups", "drop offs", "returns", "total"},
	}
	for _, d := range days {
		for _, h := range d.Hours {
			t.Rows = append(t.Rows, []string{
				d.Date.Format("2006-01-02 Mon"), fmt.Sprintf("%02d:00", h.Hour),
				strconv.Itoa(h.Pickups), strconv.Itoa(h.DropOffs), strconv.Itoa(h.Returns), strconv.Itoa(h.Total()),
			})
		}
	}
	return t
}

func VerificationTable(rows []reporting.VerificationRow) Table {
	t := Table{
		Title:   "Verification",
		Headers: []string{"unit", "class", "plate", "fuel", "not full", "odometer", "actual km", "km delta", "checked"},
	}
	for _, r := range rows {
		fuel := r.Unit.Fuel.String()
		var actual *float64
		checked := ""
		if r.Check != nil {
			if r.Check.Fuel != "" {
				fuel = r.Check.Fuel
			}
			actual = r.Check.ActualKm
			if r.Check.Checked {
				checked = when(r.Check.CheckedAt)
			}
		}
		t.Rows = append(t.Rows, []string{
			r.Unit.UnitID, string(r.Unit.Class), r.Unit.Plate, fuel, yes(r.FuelNotFull),
			km(r.Unit.Odometer), km(actual), km(r.KmDelta), checked,
		})
	}
	return t
}

// SortedAssignments lists every entry of result, including reservations
// that are no longer in the records, by reservation number.
func SortedAssignments(records entities.Records, result dto.AssignmentResult) []AssignmentRow {
	resNumbers := make([]string, 0, len(result.Assignments))
	for res := range result.Assignments {
		resNumbers = append(resNumbers, res)
	}
	sort.Strings(resNumbers)

	reservations := make([]entities.Reservation, 0, len(resNumbers))
	for _, n := range resNumbers {
		res, ok := records.FindReservation(n)
		if !ok {
			res = entities.Reservation{ResNumber: n}
		}
		reservations = append(reservations, res)
	}
	return AssignmentRows(reservations, result)
}
