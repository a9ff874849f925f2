package repositories

import "github.com/vsinha/fleetdash/pkg/domain/entities"

// RecordRepository holds the canonical records of the current session.
// Each import replaces one kind wholesale; records are never merged.
type RecordRepository interface {
	ReplaceReservations(reservations []entities.Reservation) error
	ReplaceAvailable(units []entities.AvailableUnit) error
	ReplaceDueIn(units []entities.DueInUnit) error
	// Snapshot returns a copy the caller may keep.
	Snapshot() entities.Records
	Clear() error
}
