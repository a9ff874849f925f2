package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vsinha/fleetdash/pkg/application/services/assignment"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/errors"
	"github.com/vsinha/fleetdash/pkg/infrastructure/events"
	"github.com/vsinha/fleetdash/pkg/infrastructure/repositories/memory"
	th "github.com/vsinha/fleetdash/pkg/infrastructure/testing"
)

func reservationsTable() entities.Table {
	return entities.NewTable("ResManifest.xlsx",
		[]string{"Res #", "Name", "Class", "Pickup Date", "Drop Off Date", "Daily Rate"},
		[][]any{
			{"R100", "ALAMI", "CDMR", "10/03/2024 12:00", "13/03/2024 12:00", "350"},
			{"R101", "BENNANI", "idar", "10/03/2024 14:00", "", ""},
			{"R102", "CHRAIBI", "mdmr", "11/03/2024 10:00", "", ""},
			{"", "NO NUMBER", "cdmr", "11/03/2024 10:00", "", ""},
		})
}

func availableTable() entities.Table {
	return entities.NewTable("UnitsAvailable.xlsx",
		[]string{"Unit #", "Class", "Curr Fuel", "Curr Loc"},
		[][]any{
			{"U1", "cdmr", "F", "CMN"},
			{"U2", "mdar", "1/2", "CMNO1"},
		})
}

func dueInTable() entities.Table {
	return entities.NewTable("UnitsDueIn.xlsx",
		[]string{"Unit #", "Class", "Name", "Expected Return", "Days Late"},
		[][]any{
			{"U7 (retour)", "idar", "SMITH", "10/03/2024 11:00", "0"},
		})
}

func newTestSession(store *memory.KeyValueStore) *Session {
	return NewSession(SessionConfig{
		Store:  store,
		Engine: assignment.NewEngine(assignment.DefaultPolicy(), time.UTC),
		Clock:  func() time.Time { return th.Now },
	})
}

// recordEvents collects the session's events of the given types.
func recordEvents(t *testing.T, s *Session, types ...string) *[]events.Event {
	t.Helper()
	var got []events.Event
	require.NoError(t, s.Events().Subscribe(types, &events.HandlerFunc{Fn: func(e events.Event) error {
		got = append(got, e)
		return nil
	}}))
	return &got
}

func importAll(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	for _, table := range []entities.Table{reservationsTable(), availableTable(), dueInTable()} {
		_, err := s.Import(ctx, table)
		require.NoError(t, err, table.Name)
	}
}

func TestSession_ImportAssigns(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSession(memory.NewKeyValueStore())
	ctx := context.Background()

	res, err := s.Import(ctx, reservationsTable())
	require.NoError(t, err)
	assert.Equal(t, entities.KindReservations, res.Kind)
	assert.Equal(t, 4, res.Stats.Read)
	assert.Equal(t, 3, res.Stats.Kept)
	assert.Empty(t, res.Result.Assignments, "no units imported yet")

	_, err = s.Import(ctx, availableTable())
	require.NoError(t, err)
	last, err := s.Import(ctx, dueInTable())
	require.NoError(t, err)

	assert.Equal(t, entities.Assignments{"R100": "U1", "R101": "U7", "R102": "U2"}, last.Result.Assignments)
	assert.Equal(t, entities.SourceReturn, last.Result.Metadata["R101"].Source)
	assert.True(t, last.Result.Metadata["R102"].Upgrade)
	assert.Equal(t, 2, last.Released, "automatic entries are recomputed on every import")
}

func TestSession_UnrecognizedTableLeavesStateAlone(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)
	before := s.Result()

	out, err := s.Import(context.Background(), entities.NewTable("notes.csv",
		[]string{"Foo", "Bar"}, [][]any{{"1", "2"}}))

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrUnrecognizedTable))
	assert.True(t, IsUnrecognizedTable(err))
	assert.Equal(t, entities.KindUnknown, out.Kind)
	assert.Equal(t, before, s.Result())
	assert.Len(t, s.Records().Reservations, 3)
}

func TestSession_OverridePinSurvivesImport(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)
	ctx := context.Background()

	got, err := s.Override(ctx, "R100", "none")
	require.NoError(t, err)
	assert.Equal(t, entities.NoUnit, got.Assignments["R100"])
	assert.Equal(t, entities.SourceManual, got.Metadata["R100"].Source)
	assert.True(t, got.Metadata["R100"].Pinned)

	_, err = s.Import(ctx, availableTable())
	require.NoError(t, err)

	after := s.Result()
	assert.Equal(t, entities.NoUnit, after.Assignments["R100"])
	for res, unit := range after.Assignments {
		if res != "R100" {
			assert.NotEqual(t, entities.NoUnit, unit)
		}
	}
}

func TestSession_OverrideTakesAutomaticUnit(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)

	released := recordEvents(t, s, events.AssignmentReleasedEvent)

	// U1 went to R100 automatically; R102 takes it by hand. The freed mdar
	// is too small for R100, which ends up without a unit.
	got, err := s.Override(context.Background(), "R102", "U1")
	require.NoError(t, err)

	assert.Equal(t, "U1", got.Assignments["R102"])
	assert.True(t, got.Metadata["R102"].Pinned)
	assert.True(t, got.Metadata["R102"].Upgrade)
	assert.NotContains(t, got.Assignments, "R100")

	require.Len(t, *released, 1)
	assert.Equal(t, "R100", (*released)[0].StreamID())
	assert.Equal(t, "reassigned to R102", (*released)[0].Data().(events.AssignmentReleased).Reason)
}

func TestSession_OverrideMatchesRecompute(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	ctx := context.Background()
	_, err := s.Import(ctx, entities.NewTable("ResManifest.xlsx",
		[]string{"Res #", "Name", "Class", "Pickup Date"},
		[][]any{
			{"R0", "ALAMI", "edmr", "10/03/2024 12:00"},
			{"R1", "BENNANI", "edmr", "10/03/2024 13:00"},
			{"R2", "CHRAIBI", "cdmr", "11/03/2024 10:00"},
		}))
	require.NoError(t, err)
	first, err := s.Import(ctx, entities.NewTable("UnitsAvailable.xlsx",
		[]string{"Unit #", "Class"},
		[][]any{{"U4", "edmr"}, {"U5", "cdmr"}}))
	require.NoError(t, err)
	require.Equal(t, entities.Assignments{"R0": "U4", "R1": "U5"}, first.Result.Assignments)

	got, err := s.Override(ctx, "R0", "none")
	require.NoError(t, err)

	// The freed edmr goes to R1 and its cdmr moves on to R2.
	assert.Equal(t, entities.Assignments{"R0": entities.NoUnit, "R1": "U4", "R2": "U5"}, got.Assignments)
	assert.False(t, got.Metadata["R1"].Upgrade)

	again, err := s.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, again, got)

	unpinned, err := s.Unpin(ctx, "R0")
	require.NoError(t, err)
	assert.Equal(t, entities.Assignments{"R0": "U4", "R1": "U5"}, unpinned.Assignments)
	again, err = s.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, again, unpinned)
}

func TestSession_OverrideRefusesPinnedUnit(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)
	ctx := context.Background()

	_, err := s.Override(ctx, "R100", "U2")
	require.NoError(t, err)
	before := s.Result()

	_, err = s.Override(ctx, "R102", "U2")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrUnitClaimed))
	assert.True(t, errors.IsConflict(err))

	var conflict *errors.ConflictError
	require.True(t, stderrors.As(err, &conflict))
	assert.Equal(t, "R100", conflict.HeldBy)
	assert.Equal(t, before, s.Result())
}

func TestSession_OverrideValidation(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	ctx := context.Background()

	_, err := s.Override(ctx, " ", "U1")
	assert.True(t, errors.IsValidationError(err))

	_, err = s.Override(ctx, "R1", "  ")
	assert.True(t, errors.IsValidationError(err))
}

func TestSession_OverrideUnknownReservationIsRecorded(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)

	got, err := s.Override(context.Background(), "GHOST", "U9")
	require.NoError(t, err)
	assert.Equal(t, "U9", got.Assignments["GHOST"])
	assert.Equal(t, entities.SourceAvailable, got.Metadata["GHOST"].Source)
}

func TestSession_Unpin(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)
	ctx := context.Background()

	_, err := s.Override(ctx, "R100", "none")
	require.NoError(t, err)

	got, err := s.Unpin(ctx, "R100")
	require.NoError(t, err)
	assert.Equal(t, "U1", got.Assignments["R100"])
	assert.False(t, got.Metadata["R100"].Pinned)

	_, err = s.Unpin(ctx, "NOPE")
	assert.True(t, errors.IsNotFound(err))
}

func TestSession_PersistAndLoad(t *testing.T) {
	store := memory.NewKeyValueStore()
	s := newTestSession(store)
	importAll(t, s)
	ctx := context.Background()
	_, err := s.Override(ctx, "R101", "none")
	require.NoError(t, err)
	km := 12345.0
	_, err = s.SetVerification(ctx, "U1", entities.VerificationUpdate{ActualKm: &km})
	require.NoError(t, err)

	restored := newTestSession(store)
	require.NoError(t, restored.Load(ctx))

	assert.Equal(t, s.Result(), restored.Result())
	assert.Equal(t, s.Records().Available, restored.Records().Available)
	require.Len(t, restored.Records().Reservations, 3)
	r100, ok := restored.Records().FindReservation("R100")
	require.True(t, ok)
	assert.True(t, r100.Pickup.Equal(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "350", r100.DailyRate.Decimal.String())
	assert.Equal(t, 12345.0, *restored.Verification()["U1"].ActualKm)
}

func TestSession_LoadIgnoresCorruptState(t *testing.T) {
	store := memory.NewKeyValueStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, StateKey, "{not json"))

	s := newTestSession(store)
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Result().Assignments)
	assert.Empty(t, s.Records().Reservations)
}

func TestSession_Reset(t *testing.T) {
	store := memory.NewKeyValueStore()
	s := newTestSession(store)
	importAll(t, s)
	ctx := context.Background()
	ready := true
	_, err := s.SetVerification(ctx, "U2", entities.VerificationUpdate{Checked: &ready})
	require.NoError(t, err)
	resets := recordEvents(t, s, events.StateResetEvent)

	require.NoError(t, s.Reset(ctx))

	assert.Empty(t, s.Result().Assignments)
	assert.Empty(t, s.Records().Reservations)
	assert.Empty(t, s.Verification())
	assert.Equal(t, 0, store.Len())

	require.Len(t, *resets, 1)
	assert.Equal(t, events.SessionStream, (*resets)[0].StreamID())
	assert.Equal(t, 3, (*resets)[0].Data().(events.StateReset).Assignments)
}

func TestSession_Recompute(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)

	first := s.Result()
	again, err := s.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSession_Verification(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)
	ctx := context.Background()

	fuel := "3/4"
	v, err := s.SetVerification(ctx, "U2", entities.VerificationUpdate{Fuel: &fuel})
	require.NoError(t, err)
	assert.Equal(t, "3/4", v.Fuel)
	assert.False(t, v.Checked)
	assert.True(t, v.CheckedAt.Equal(th.Now))

	checked := true
	v, err = s.SetVerification(ctx, "U2", entities.VerificationUpdate{Checked: &checked})
	require.NoError(t, err)
	assert.Equal(t, "3/4", v.Fuel, "unset fields are kept")
	assert.True(t, v.Checked)

	_, err = s.SetVerification(ctx, "U7", entities.VerificationUpdate{Checked: &checked})
	assert.True(t, errors.IsNotFound(err), "only units on the lot are verified")

	neg := -1.0
	_, err = s.SetVerification(ctx, "U1", entities.VerificationUpdate{ActualKm: &neg})
	assert.True(t, errors.IsValidationError(err))
}

func TestSession_Options(t *testing.T) {
	s := newTestSession(memory.NewKeyValueStore())
	importAll(t, s)
	ctx := context.Background()

	res, opts, err := s.Options(ctx, "R102")
	require.NoError(t, err)
	assert.Equal(t, "R102", res.ResNumber)
	require.NotEmpty(t, opts)
	assert.Equal(t, "U2", opts[0].UnitID)
	assert.True(t, opts[0].Current)

	_, _, err = s.Options(ctx, "NOPE")
	assert.True(t, errors.IsNotFound(err))
}
