package reporting

import (
	"time"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// BusyHour is an hour with more than one counter movement.
type BusyHour struct {
	Hour     int `json:"hour"`
	Pickups  int `json:"pickups"`
	DropOffs int `json:"dropOffs"`
	Returns  int `json:"returns"`
}

// Total is the number of movements in the hour.
func (h BusyHour) Total() int {
	return h.Pickups + h.DropOffs + h.Returns
}

// BusyDay lists the busy hours of one calendar day.
type BusyDay struct {
	Date   time.Time  `json:"date"`
	Hours  []BusyHour `json:"hours"`
	Events int        `json:"events"`
}

// BusyDays scans n days starting with today for hours holding more than one
// pickup, reservation drop-off or due-in return. Every day is listed, busy
// or not.
func (r *Reporter) BusyDays(records entities.Records, now time.Time, n int) []BusyDay {
	if n <= 0 {
		return nil
	}
	loc := r.engine.Location()
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	buckets := make([][24]BusyHour, n)
	place := func(t time.Time, add func(*BusyHour)) {
		t = t.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if day.Before(start) {
			return
		}
		i := dayIndex(start, day)
		if i >= n {
			return
		}
		add(&buckets[i][t.Hour()])
	}

	for _, res := range records.Reservations {
		place(res.Pickup, func(h *BusyHour) { h.Pickups++ })
		if res.DropOff != nil {
			place(*res.DropOff, func(h *BusyHour) { h.DropOffs++ })
		}
	}
	for _, u := range records.DueIn {
		place(u.ExpectedReturn, func(h *BusyHour) { h.Returns++ })
	}

	out := make([]BusyDay, n)
	for i := range out {
		out[i].Date = start.AddDate(0, 0, i)
		for hour, b := range buckets[i] {
			if b.Total() > 1 {
				b.Hour = hour
				out[i].Hours = append(out[i].Hours, b)
				out[i].Events += b.Total()
			}
		}
	}
	return out
}

// dayIndex counts calendar days from start to day. The dates are compared
// in UTC so a DST change does not shorten a day.
func dayIndex(start, day time.Time) int {
	y1, m1, d1 := start.Date()
	y2, m2, d2 := day.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
