package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	th "github.com/vsinha/fleetdash/pkg/infrastructure/testing"
)

func TestNormalizeChoice(t *testing.T) {
	tests := map[string]string{
		"none":            entities.NoUnit,
		" NONE ":          entities.NoUnit,
		"U12 (retour)":    "U12",
		"  U12  ":         "U12",
		"":                "",
		"U7 (Return)":     "U7",
		"none (retour)":   entities.NoUnit,
		"NoneSuchVehicle": "NoneSuchVehicle",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeChoice(in), in)
	}
}

func TestProvenance(t *testing.T) {
	records := th.Fleet(
		[]entities.Reservation{th.Reservation("R1", "A", "cdmr", th.Hours(10))},
		[]entities.AvailableUnit{th.Available("U1", "cdmr"), th.Available("U2", "idar")},
		[]entities.DueInUnit{
			th.DueIn("U7", "cdmr", th.Hours(3)),
			th.DueIn("U7", "cdmr", th.Hours(6)),
			th.DueIn("U8", "cdmr", th.Hours(9.5)),
		},
	)
	e := newTestEngine()

	t.Run("none is manual", func(t *testing.T) {
		md := e.Provenance(records, "R1", entities.NoUnit)
		assert.Equal(t, entities.Metadata{Source: entities.SourceManual, Pinned: true}, md)
	})

	t.Run("available unit", func(t *testing.T) {
		md := e.Provenance(records, "R1", "U1")
		assert.Equal(t, entities.SourceAvailable, md.Source)
		assert.Nil(t, md.ReturnDate)
		assert.False(t, md.Upgrade)
		assert.True(t, md.Pinned)
	})

	t.Run("upgrade", func(t *testing.T) {
		assert.True(t, e.Provenance(records, "R1", "U2").Upgrade)
	})

	t.Run("latest eligible return", func(t *testing.T) {
		md := e.Provenance(records, "R1", "U7")
		assert.Equal(t, entities.SourceReturn, md.Source)
		require.NotNil(t, md.ReturnDate)
		assert.True(t, md.ReturnDate.Equal(th.Hours(6)))
	})

	t.Run("return inside the margin falls back to available", func(t *testing.T) {
		md := e.Provenance(records, "R1", "U8")
		assert.Equal(t, entities.SourceAvailable, md.Source)
		assert.Nil(t, md.ReturnDate)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		md := e.Provenance(records, "NOPE", "U2")
		assert.Equal(t, entities.Metadata{Source: entities.SourceAvailable, Pinned: true}, md)
	})
}

func TestOverrideAndRelease(t *testing.T) {
	records := th.BuildWeekScenario()
	e := newTestEngine()
	current := run(e, records, dto.AssignmentResult{})
	before := current.Clone()

	next := e.Override(current, records, "R103", "U3")

	assert.Equal(t, before, current, "input must not change")
	assert.Equal(t, "U3", next.Assignments["R103"])
	assert.True(t, next.Metadata["R103"].Pinned)
	assert.Equal(t, []string{"R103"}, next.Changes(current))

	released := Release(next, "R103")
	assert.NotContains(t, released.Assignments, "R103")
	assert.NotContains(t, released.Metadata, "R103")
	assert.Contains(t, next.Assignments, "R103")
}

func TestOverride_SurvivesRecompute(t *testing.T) {
	records := th.BuildWeekScenario()
	e := newTestEngine()

	pinned := e.Override(dto.AssignmentResult{}, records, "R100", "U3")
	pa, pm := entities.Pinned(pinned.Assignments, pinned.Metadata)
	got := run(e, records, dto.AssignmentResult{Assignments: pa, Metadata: pm})

	assert.Equal(t, "U3", got.Assignments["R100"])
	for res, unit := range got.Assignments {
		if res != "R100" {
			assert.NotEqual(t, "U3", unit, res)
		}
	}
}

func TestOptions(t *testing.T) {
	records := th.Fleet(
		[]entities.Reservation{
			th.Reservation("R1", "A", "cdmr", th.Hours(10)),
			th.Reservation("R2", "B", "cdmr", th.Hours(11)),
		},
		[]entities.AvailableUnit{
			th.Available("U1", "cdmr"),
			th.Available("U2", "cdmr"),
			th.Available("U3", "idar"),
			th.Available("U4", "mdmr"),
		},
		[]entities.DueInUnit{th.DueIn("U7", "cdar", th.Hours(2))},
	)
	e := newTestEngine()
	current := dto.AssignmentResult{
		Assignments: entities.Assignments{"R1": "U1", "R2": "U2"},
		Metadata: entities.MetadataMap{
			"R1": {Source: entities.SourceAvailable},
			"R2": {Source: entities.SourceAvailable},
		},
	}
	res, _ := records.FindReservation("R1")

	opts := e.Options(records, current, res)

	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = o.UnitID
	}
	assert.Equal(t, []string{"U1", "U2", "U7", "U3"}, ids)

	assert.True(t, opts[0].Current)
	assert.False(t, opts[0].TakenElsewhere)
	assert.True(t, opts[1].TakenElsewhere)
	assert.Equal(t, "R2", opts[1].TakenBy)
	assert.Equal(t, entities.SourceReturn, opts[2].Source)
	assert.True(t, opts[2].Upgrade)
	assert.True(t, opts[3].Upgrade)
}

func TestOptions_CurrentAlwaysListed(t *testing.T) {
	records := th.Fleet(
		[]entities.Reservation{th.Reservation("R1", "A", "idar", th.Hours(10))},
		[]entities.AvailableUnit{th.Available("U4", "mdmr")},
		nil,
	)
	current := dto.AssignmentResult{
		Assignments: entities.Assignments{"R1": "U4"},
		Metadata:    entities.MetadataMap{"R1": {Source: entities.SourceAvailable, Pinned: true}},
	}
	res, _ := records.FindReservation("R1")

	opts := newTestEngine().Options(records, current, res)

	require.Len(t, opts, 1)
	assert.Equal(t, "U4", opts[0].UnitID)
	assert.True(t, opts[0].Current)
}
