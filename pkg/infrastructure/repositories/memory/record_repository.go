package memory

import (
	"sync"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/repositories"
)

// RecordRepository provides in-memory storage for the three record kinds
type RecordRepository struct {
	mu           sync.RWMutex
	reservations []entities.Reservation
	available    []entities.AvailableUnit
	dueIn        []entities.DueInUnit
}

// NewRecordRepository creates an empty record repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{}
}

// Verify interface compliance
var _ repositories.RecordRepository = (*RecordRepository)(nil)

// ReplaceReservations swaps in a new reservation list
func (r *RecordRepository) ReplaceReservations(reservations []entities.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations = append([]entities.Reservation(nil), reservations...)
	return nil
}

// ReplaceAvailable swaps in a new list of units on the lot
func (r *RecordRepository) ReplaceAvailable(units []entities.AvailableUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = append([]entities.AvailableUnit(nil), units...)
	return nil
}

// ReplaceDueIn swaps in a new list of units on rent
func (r *RecordRepository) ReplaceDueIn(units []entities.DueInUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dueIn = append([]entities.DueInUnit(nil), units...)
	return nil
}

// Snapshot returns copies of all records
func (r *RecordRepository) Snapshot() entities.Records {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return entities.Records{
		Reservations: append([]entities.Reservation(nil), r.reservations...),
		Available:    append([]entities.AvailableUnit(nil), r.available...),
		DueIn:        append([]entities.DueInUnit(nil), r.dueIn...),
	}
}

// Clear drops every record
func (r *RecordRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations, r.available, r.dueIn = nil, nil, nil
	return nil
}
