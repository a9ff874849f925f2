package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/application/services/assignment"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/repositories"
	"github.com/vsinha/fleetdash/pkg/domain/services/datenorm"
	"github.com/vsinha/fleetdash/pkg/domain/services/ingest"
	"github.com/vsinha/fleetdash/pkg/errors"
	"github.com/vsinha/fleetdash/pkg/infrastructure/events"
	"github.com/vsinha/fleetdash/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/fleetdash/pkg/logging"
)

// Keys under which the session persists itself.
const (
	StateKey        = "fleetdash_state_v1"
	VerificationKey = "fleetdash_verification_v1"
)

var (
	// ErrUnrecognizedTable is returned when a table matches no record kind.
	// The session is left untouched.
	ErrUnrecognizedTable = errors.New("unrecognized table")

	// ErrUnitClaimed is returned when an operator picks a unit another
	// reservation holds by operator choice.
	ErrUnitClaimed = errors.New("unit already claimed")
)

// persistedState is the stored shape of a session.
type persistedState struct {
	Reservations []entities.Reservation   `json:"r"`
	DueIn        []entities.DueInUnit     `json:"d"`
	Available    []entities.AvailableUnit `json:"a"`
	Assignments  entities.Assignments     `json:"asg"`
	Metadata     entities.MetadataMap     `json:"asgMeta"`
}

// SessionConfig wires a session. Nil fields get in-memory or default
// implementations.
type SessionConfig struct {
	Store     repositories.KeyValueStore
	Records   repositories.RecordRepository
	Projector *ingest.Projector
	Engine    *assignment.Engine
	Events    events.EventStore
	Clock     func() time.Time
}

// Session owns the imported records, the current assignment result and the
// verification sheet, and keeps them in the store after every change.
type Session struct {
	mu           sync.Mutex
	store        repositories.KeyValueStore
	records      repositories.RecordRepository
	projector    *ingest.Projector
	engine       *assignment.Engine
	events       events.EventStore
	clock        func() time.Time
	result       dto.AssignmentResult
	verification map[string]entities.Verification
}

// NewSession creates an empty session. Call Load to restore persisted state.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		store:        cfg.Store,
		records:      cfg.Records,
		projector:    cfg.Projector,
		engine:       cfg.Engine,
		events:       cfg.Events,
		clock:        cfg.Clock,
		result:       emptyResult(),
		verification: map[string]entities.Verification{},
	}
	if s.store == nil {
		s.store = memory.NewKeyValueStore()
	}
	if s.records == nil {
		s.records = memory.NewRecordRepository()
	}
	if s.engine == nil {
		s.engine = assignment.NewEngine(assignment.DefaultPolicy(), time.Local)
	}
	if s.projector == nil {
		s.projector = ingest.NewProjector(ingest.DefaultSchema(), datenorm.New(s.engine.Location()))
	}
	if s.events == nil {
		s.events = events.NewInMemoryEventStore()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

func emptyResult() dto.AssignmentResult {
	return dto.AssignmentResult{
		Assignments: entities.Assignments{},
		Metadata:    entities.MetadataMap{},
	}
}

// Engine exposes the assignment engine the session runs.
func (s *Session) Engine() *assignment.Engine { return s.engine }

// Events exposes the session's event store.
func (s *Session) Events() events.EventStore { return s.events }

// Now is the session clock.
func (s *Session) Now() time.Time { return s.clock() }

// Records returns a snapshot of the imported records.
func (s *Session) Records() entities.Records {
	return s.records.Snapshot()
}

// Result returns a copy of the current assignment result.
func (s *Session) Result() dto.AssignmentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.Clone()
}

// Load restores records, assignments and the verification sheet from the
// store. Missing keys leave the session empty; unreadable state is logged
// and ignored.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := logging.FromContext(ctx)

	raw, ok, err := s.store.Get(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	var state persistedState
	if ok {
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			logger.Warn().Err(err).Str("key", StateKey).Msg("ignoring unreadable saved state")
			state = persistedState{}
		}
	}

	if err := s.replaceAll(state); err != nil {
		return err
	}
	s.result = dto.AssignmentResult{Assignments: state.Assignments, Metadata: state.Metadata}
	if s.result.Assignments == nil {
		s.result.Assignments = entities.Assignments{}
	}
	if s.result.Metadata == nil {
		s.result.Metadata = entities.MetadataMap{}
	}

	s.verification = map[string]entities.Verification{}
	raw, ok, err = s.store.Get(ctx, VerificationKey)
	if err != nil {
		return fmt.Errorf("load verification: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &s.verification); err != nil {
			logger.Warn().Err(err).Str("key", VerificationKey).Msg("ignoring unreadable verification sheet")
			s.verification = map[string]entities.Verification{}
		}
	}

	logger.Debug().
		Int("reservations", len(state.Reservations)).
		Int("available", len(state.Available)).
		Int("due_in", len(state.DueIn)).
		Int("assignments", len(s.result.Assignments)).
		Msg("session loaded")
	return nil
}

func (s *Session) replaceAll(state persistedState) error {
	if err := s.records.ReplaceReservations(state.Reservations); err != nil {
		return err
	}
	if err := s.records.ReplaceAvailable(state.Available); err != nil {
		return err
	}
	return s.records.ReplaceDueIn(state.DueIn)
}

// Import classifies and projects table, replaces the records of its kind,
// drops every assignment that was not set by an operator and recomputes.
func (s *Session) Import(ctx context.Context, table entities.Table) (dto.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logging.WithOperation(ctx, "import")
	logger := logging.FromContext(ctx)

	proj, stats := s.projector.Project(table)
	out := dto.ImportResult{Source: table.Name, Kind: proj.Kind, Stats: stats}
	if proj.Kind == entities.KindUnknown {
		logger.Warn().Str("source", table.Name).Strs("headers", table.Headers).Msg("table not recognized")
		return out, fmt.Errorf("%w: %s", ErrUnrecognizedTable, table.Name)
	}

	var err error
	switch proj.Kind {
	case entities.KindReservations:
		err = s.records.ReplaceReservations(proj.Reservations)
	case entities.KindAvailable:
		err = s.records.ReplaceAvailable(proj.Available)
	case entities.KindDueIn:
		err = s.records.ReplaceDueIn(proj.DueIn)
	}
	if err != nil {
		return out, errors.WrapResource("replace", "records", string(proj.Kind), err)
	}

	logger.Info().
		Str("source", table.Name).
		Str("kind", string(proj.Kind)).
		Int("read", stats.Read).
		Int("kept", stats.Kept).
		Int("dropped", stats.DroppedTotal()).
		Msg("records imported")

	out.Released = s.releaseUnpinned(ctx, "import")
	s.assign(ctx)
	if err := s.save(ctx); err != nil {
		return out, err
	}

	s.emit(ctx, string(proj.Kind), events.NewRecordsImportedEvent(events.RecordsImported{
		Source:   table.Name,
		Kind:     proj.Kind,
		Read:     stats.Read,
		Kept:     stats.Kept,
		Dropped:  stats.DroppedTotal(),
		Released: out.Released,
	}))
	out.Result = s.result.Clone()
	return out, nil
}

// Recompute re-derives every automatic assignment from the records and the
// operator's choices.
func (s *Session) Recompute(ctx context.Context) (dto.AssignmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logging.WithOperation(ctx, "recompute")

	s.releaseUnpinned(ctx, "recompute")
	s.assign(ctx)
	if err := s.save(ctx); err != nil {
		return dto.AssignmentResult{}, err
	}
	return s.result.Clone(), nil
}

// Override sets resNumber to unit, or to entities.NoUnit, pins it and
// re-derives every automatic assignment around the operator's choices. A unit
// pinned to another reservation is refused with ErrUnitClaimed.
func (s *Session) Override(ctx context.Context, resNumber, unit string) (dto.AssignmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resNumber = strings.TrimSpace(resNumber)
	ctx = logging.WithReservation(logging.WithOperation(ctx, "override"), resNumber)
	logger := logging.FromContext(ctx)

	if resNumber == "" {
		return dto.AssignmentResult{}, errors.NewValidationError("reservation", resNumber, "must not be empty")
	}
	unit = assignment.NormalizeChoice(unit)
	if unit == "" {
		return dto.AssignmentResult{}, errors.NewValidationError("unit", unit, `must be a unit number or "none"`)
	}

	records := s.records.Snapshot()
	if _, ok := records.FindReservation(resNumber); !ok {
		logger.Warn().Str("unit", unit).Msg("override for a reservation that is not imported")
	}

	if unit != entities.NoUnit {
		if holder, ok := s.result.Assignments.Holder(unit); ok && holder != resNumber {
			if s.result.Metadata[holder].Pinned {
				logger.Warn().Str("unit", unit).Str("held_by", holder).Msg("override refused")
				return dto.AssignmentResult{}, fmt.Errorf("%w: %w", ErrUnitClaimed,
					errors.NewConflictError("unit", unit, holder))
			}
			s.emit(ctx, holder, events.NewAssignmentReleasedEvent(holder, unit, "reassigned to "+resNumber))
		}
	}

	s.releaseUnpinned(ctx, "override")
	s.result = s.engine.Override(s.result, records, resNumber, unit)
	md := s.result.Metadata[resNumber]
	logger.Info().Str("unit", unit).Str("source", string(md.Source)).Bool("upgrade", md.Upgrade).Msg("assignment overridden")
	s.emit(ctx, resNumber, events.NewAssignmentOverriddenEvent(resNumber, unit, md))

	s.assign(ctx)
	if err := s.save(ctx); err != nil {
		return dto.AssignmentResult{}, err
	}
	return s.result.Clone(), nil
}

// Unpin drops the operator's choice for resNumber and re-derives every
// automatic assignment.
func (s *Session) Unpin(ctx context.Context, resNumber string) (dto.AssignmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resNumber = strings.TrimSpace(resNumber)
	ctx = logging.WithReservation(logging.WithOperation(ctx, "unpin"), resNumber)

	unit, ok := s.result.Assignments[resNumber]
	if !ok {
		return dto.AssignmentResult{}, errors.NewNotFoundError("assignment", resNumber)
	}
	s.result = assignment.Release(s.result, resNumber)
	s.emit(ctx, resNumber, events.NewAssignmentReleasedEvent(resNumber, unit, "unpinned"))

	s.releaseUnpinned(ctx, "unpin")
	s.assign(ctx)
	if err := s.save(ctx); err != nil {
		return dto.AssignmentResult{}, err
	}
	return s.result.Clone(), nil
}

// Options lists the units an operator may pick for resNumber.
func (s *Session) Options(ctx context.Context, resNumber string) (entities.Reservation, []dto.UnitOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records.Snapshot()
	res, ok := records.FindReservation(strings.TrimSpace(resNumber))
	if !ok {
		return entities.Reservation{}, nil, errors.NewNotFoundError("reservation", resNumber)
	}
	return res, s.engine.Options(records, s.result, res), nil
}

// Reset forgets everything and removes the persisted state.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logging.WithOperation(ctx, "reset")

	before := s.records.Snapshot()
	cleared := events.StateReset{
		Reservations: len(before.Reservations),
		Available:    len(before.Available),
		DueIn:        len(before.DueIn),
		Assignments:  len(s.result.Assignments),
	}

	if err := s.records.Clear(); err != nil {
		return errors.WrapResource("clear", "records", "all", err)
	}
	s.result = emptyResult()
	s.verification = map[string]entities.Verification{}

	for _, key := range []string{StateKey, VerificationKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	logging.FromContext(ctx).Info().Int("assignments", cleared.Assignments).Msg("session reset")
	s.emit(ctx, events.SessionStream, events.NewStateResetEvent(cleared))
	return nil
}

// SetVerification records a lot check for an available unit.
func (s *Session) SetVerification(ctx context.Context, unitID string, update entities.VerificationUpdate) (entities.Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unitID = entities.CleanUnitID(unitID)
	known := false
	for _, u := range s.records.Snapshot().Available {
		if u.UnitID == unitID {
			known = true
			break
		}
	}
	if !known {
		return entities.Verification{}, errors.NewNotFoundError("available unit", unitID)
	}
	if update.ActualKm != nil && *update.ActualKm < 0 {
		return entities.Verification{}, errors.NewValidationError("km", *update.ActualKm, "must not be negative")
	}

	v := update.Apply(s.verification[unitID], s.clock())
	s.verification[unitID] = v

	raw, err := json.Marshal(s.verification)
	if err != nil {
		return entities.Verification{}, err
	}
	if err := s.store.Set(ctx, VerificationKey, string(raw)); err != nil {
		return entities.Verification{}, fmt.Errorf("save verification: %w", err)
	}
	return v, nil
}

// Verification returns a copy of the verification sheet.
func (s *Session) Verification() map[string]entities.Verification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]entities.Verification, len(s.verification))
	for k, v := range s.verification {
		out[k] = v
	}
	return out
}

// releaseUnpinned keeps only operator entries and returns how many were dropped.
func (s *Session) releaseUnpinned(ctx context.Context, reason string) int {
	pa, pm := entities.Pinned(s.result.Assignments, s.result.Metadata)
	released := len(s.result.Assignments) - len(pa)
	s.result = dto.AssignmentResult{Assignments: pa, Metadata: pm}
	if released > 0 {
		logging.FromContext(ctx).Debug().Int("released", released).Str("reason", reason).Msg("automatic assignments released")
	}
	return released
}

// assign runs the engine over the current result, keeping its entries, and
// reports what is new.
func (s *Session) assign(ctx context.Context) {
	prev := s.result
	s.result = s.engine.Assign(assignment.Input{
		Records:  s.records.Snapshot(),
		Existing: prev,
		Now:      s.clock(),
	})

	added := make([]string, 0, len(s.result.Assignments))
	for res := range s.result.Assignments {
		if _, had := prev.Assignments[res]; !had {
			added = append(added, res)
		}
	}
	sort.Strings(added)
	for _, res := range added {
		s.emit(ctx, res, events.NewAssignmentAutoEvent(res, s.result.Assignments[res], s.result.Metadata[res]))
	}

	logging.FromContext(ctx).Info().
		Int("assignments", len(s.result.Assignments)).
		Int("new", len(added)).
		Msg("assignments computed")
}

func (s *Session) save(ctx context.Context) error {
	records := s.records.Snapshot()
	raw, err := json.Marshal(persistedState{
		Reservations: records.Reservations,
		DueIn:        records.DueIn,
		Available:    records.Available,
		Assignments:  s.result.Assignments,
		Metadata:     s.result.Metadata,
	})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.store.Set(ctx, StateKey, string(raw)); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *Session) emit(ctx context.Context, stream string, event events.Event) {
	if err := s.events.AppendEvent(stream, event); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("event", event.Type()).Msg("event not recorded")
	}
}

// IsUnrecognizedTable reports whether err came from importing an unknown table.
func IsUnrecognizedTable(err error) bool {
	return stderrors.Is(err, ErrUnrecognizedTable)
}
