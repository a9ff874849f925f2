package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/services/datenorm"
)

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, FoldHeader("kilometrage"), FoldHeader(" Kilométrage\u00a0"))
	assert.Equal(t, "unit #", FoldHeader("Unit   #"))
	assert.Equal(t, "curr loc", FoldHeader("\u00a0CURR\u00a0\u00a0LOC "))
}

func TestExtract(t *testing.T) {
	row := entities.Row{
		"Client":       "  ",
		"Customer":     "ACME",
		"KM(s)":        "12 000",
		"Pick Up Date": "01/02/2024",
	}

	v, ok := Extract(row, Fields("Name", "Client", "Customer"))
	require.True(t, ok)
	assert.Equal(t, "ACME", v, "blank values are skipped")

	v, ok = Extract(row, Fields("pickup date", "PICK UP DATE"))
	require.True(t, ok)
	assert.Equal(t, "01/02/2024", v)

	_, ok = Extract(row, Fields("Odometer"))
	assert.False(t, ok)

	v, ok = Extract(row, FieldSpec{Aliases: []string{"Odometer"}, Pattern: odometerPattern})
	require.True(t, ok)
	assert.Equal(t, "12 000", v)
}

func TestExtractor_AliasOrderWins(t *testing.T) {
	ext := NewExtractor([]string{"Rate", "Daily Rate"})
	row := entities.Row{"Rate": "100", "Daily Rate": "250"}

	v, ok := ext.Extract(row, DefaultSchema().Reservations.DailyRate)
	require.True(t, ok)
	assert.Equal(t, "250", v)
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultSchema())
	testCases := []struct {
		name    string
		headers []string
		want    entities.RecordKind
	}{
		{"reservations", []string{"Res #", "Name", "Class", "Pickup Date"}, entities.KindReservations},
		{"reservations alt pickup", []string{"RES #", "Pick Up Date"}, entities.KindReservations},
		{"available", []string{"Unit #", "Class", "Curr Loc", "Curr Fuel"}, entities.KindAvailable},
		{"available by plate", []string{"Plate", "Location"}, entities.KindAvailable},
		{"due in", []string{"Unit #", "Model", "Expected Return", "Current Location"}, entities.KindDueIn},
		{"due in by client", []string{"Client", "Due"}, entities.KindDueIn},
		// Both the due-in and the available rule match; the return column decides.
		{"due in with lot columns", []string{"Unit #", "Name", "Class", "Curr Loc", "Return Date", "Days Late"}, entities.KindDueIn},
		{"available without return column", []string{"Unit #", "Name", "Class", "Curr Loc", "Curr Fuel"}, entities.KindAvailable},
		{"tolerant headers", []string{" res\u00a0# ", "PICKUP  DATE"}, entities.KindReservations},
		{"unknown", []string{"Foo", "Bar"}, entities.KindUnknown},
		{"half a rule", []string{"Res #"}, entities.KindUnknown},
		{"empty", nil, entities.KindUnknown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.headers))
		})
	}
}

func TestClassifyTable_FileNameHint(t *testing.T) {
	c := NewClassifier(DefaultSchema())

	assert.Equal(t, entities.KindDueIn, c.ClassifyTable(entities.Table{
		Name:    "/tmp/exports/unitsDueIn_2024-05-01.xlsx",
		Headers: []string{"A", "B"},
	}))
	assert.Equal(t, entities.KindReservations, c.ClassifyTable(entities.Table{
		Name:    "UnitsAvailable.xlsx",
		Headers: []string{"Res #", "Pickup Date"},
	}), "headers take precedence over the name")
	assert.Equal(t, entities.KindUnknown, c.ClassifyTable(entities.Table{Name: "report.xlsx"}))
}

func TestParseDecimal(t *testing.T) {
	testCases := []struct {
		in    any
		want  string
		valid bool
	}{
		{"450", "450", true},
		{"450,50", "450.5", true},
		{"1 250,50 DH", "1250.5", true},
		{"$1,250.50", "1250.5", true},
		{"1.250,50 €", "1250.5", true},
		{"1,250", "1250", true},
		{"1.250.000", "1250000", true},
		{"1.250", "1250", true},
		{"-2.500 DH", "-2500", true},
		{"0.125", "0.125", true},
		{"12.50", "12.5", true},
		{"-12.5", "-12.5", true},
		{450.25, "450.25", true},
		{int64(300), "300", true},
		{"N/A", "", false},
		{"", "", false},
		{"1-2", "", false},
		{nil, "", false},
	}
	for _, tc := range testCases {
		got := ParseDecimal(tc.in)
		require.Equal(t, tc.valid, got.Valid, "%#v", tc.in)
		if tc.valid {
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got.Decimal), "%#v: got %s", tc.in, got.Decimal)
		}
	}
}

func TestParseOdometer(t *testing.T) {
	got := ParseOdometer("12 345 km")
	require.NotNil(t, got)
	assert.Equal(t, 12345.0, *got)

	got = ParseOdometer(9870.0)
	require.NotNil(t, got)
	assert.Equal(t, 9870.0, *got)

	assert.Nil(t, ParseOdometer("unknown"))
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 3, LeadingInt("3 days"))
	assert.Equal(t, 0, LeadingInt("late"))
	assert.Equal(t, 12, LeadingInt(12.9))
	assert.Equal(t, -2, LeadingInt(" -2"))
	assert.Equal(t, 0, LeadingInt(nil))
}

func TestText(t *testing.T) {
	assert.Equal(t, "123456", Text(123456.0))
	assert.Equal(t, "12.5", Text(12.5))
	assert.Equal(t, "R-1", Text("\u00a0R-1 "))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "true", Text(true))
}

var utc = datenorm.New(time.UTC)

func TestProject_Reservations(t *testing.T) {
	p := NewProjector(DefaultSchema(), utc)
	table := entities.Table{
		Name:    "ResManifest.xlsx",
		Headers: []string{"Res #", "Name", "Class", "Pickup Date", "Drop Off Date", "Daily Rate"},
		Rows: []entities.Row{
			{"Res #": "R1", "Name": "Alami", "Class": " CDMR ", "Pickup Date": "02/05/2024 10:00", "Drop Off Date": "05/05/2024 10:00", "Daily Rate": "350,00 DH"},
			{"Res #": 1002.0, "Name": "Bennani", "Class": "idar", "Pickup Date": 45414.5, "Daily Rate": "n/a"},
			{"Res #": "R3", "Name": "", "Pickup Date": "02/05/2024"},
			{"Res #": "", "Name": "Nobody", "Pickup Date": "02/05/2024"},
			{"Res #": "R4", "Name": "Chraibi", "Pickup Date": "31/02/2024"},
			{"Res #": "R1", "Name": "Dup", "Pickup Date": "03/05/2024"},
		},
	}

	proj, stats := p.Project(table)
	require.Equal(t, entities.KindReservations, proj.Kind)
	require.Len(t, proj.Reservations, 2)

	r1 := proj.Reservations[0]
	assert.Equal(t, "R1", r1.ResNumber)
	assert.Equal(t, entities.ClassCode("cdmr"), r1.Class)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), r1.Pickup)
	require.NotNil(t, r1.DropOff)
	assert.Equal(t, 5, r1.DropOff.Day())
	assert.True(t, r1.DailyRate.Valid)
	assert.Equal(t, "350", r1.DailyRate.Decimal.String())

	r2 := proj.Reservations[1]
	assert.Equal(t, "1002", r2.ResNumber)
	assert.Equal(t, 12, r2.Pickup.Hour())
	assert.Nil(t, r2.DropOff)
	assert.False(t, r2.DailyRate.Valid)

	assert.Equal(t, 6, stats.Read)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 4, stats.DroppedTotal())
	assert.Equal(t, map[DropReason]int{
		DropMissingName:        1,
		DropMissingResNumber:   1,
		DropMissingPickup:      1,
		DropDuplicateResNumber: 1,
	}, stats.Dropped)
}

func TestProject_Available(t *testing.T) {
	p := NewProjector(DefaultSchema(), utc)
	table := entities.Table{
		Headers: []string{"Unit #", "Class", "Curr Loc", "Curr Fuel", "Kms", "Matricule"},
		Rows: []entities.Row{
			{"Unit #": " U100 (retour)", "Class": "MDMR", "Curr Loc": "CMNO", "Curr Fuel": "3/4", "Kms": "12 345", "Matricule": "12345-A-6"},
			{"Unit #": 200.0, "Class": "cdar", "Curr Loc": "Casablanca City", "Curr Fuel": "F", "Kms": "?"},
			{"Unit #": "", "Class": "cdar"},
		},
	}

	proj, stats := p.Project(table)
	require.Equal(t, entities.KindAvailable, proj.Kind)
	require.Len(t, proj.Available, 2)

	u := proj.Available[0]
	assert.Equal(t, "U100", u.UnitID)
	assert.Equal(t, entities.ClassCode("mdmr"), u.Class)
	assert.Equal(t, "Casablanca - Airport", u.Location)
	assert.Equal(t, "3/4", u.Fuel.Raw)
	require.NotNil(t, u.Odometer)
	assert.Equal(t, 12345.0, *u.Odometer)
	assert.Equal(t, "12345-A-6", u.Plate)

	u = proj.Available[1]
	assert.Equal(t, "200", u.UnitID)
	assert.Equal(t, "Casablanca City", u.Location)
	assert.True(t, u.Fuel.IsFull(entities.DefaultFuelFullThreshold))
	assert.Nil(t, u.Odometer)

	assert.Equal(t, 1, stats.Dropped[DropMissingUnitID])
}

func TestProject_OdometerByPattern(t *testing.T) {
	p := NewProjector(DefaultSchema(), utc)
	proj, _ := p.ProjectAs(entities.KindAvailable, entities.Table{
		Headers: []string{"Unit", "KM(S)"},
		Rows:    []entities.Row{{"Unit": "U1", "KM(S)": "8.500"}},
	})
	require.Len(t, proj.Available, 1)
	require.NotNil(t, proj.Available[0].Odometer)
	assert.Equal(t, 8500.0, *proj.Available[0].Odometer)
}

func TestProject_DueIn(t *testing.T) {
	p := NewProjector(DefaultSchema(), utc)
	table := entities.Table{
		Headers: []string{"Unit #", "Model", "Class", "Name", "Days Late", "Current Location", "Expected Return"},
		Rows: []entities.Row{
			{"Unit #": "U1", "Model": "Clio", "Class": "EDMR", "Name": "ACME", "Days Late": "3 days", "Current Location": "CMNC", "Expected Return": "2024-05-02 08:00"},
			{"Unit #": "CMNO77", "Name": "", "Days Late": "n/a", "Expected Return": 45414.25},
			{"Unit #": "", "Name": "Walk-in", "Expected Return": "02/05/2024"},
			{"Unit #": "", "Name": "", "Expected Return": "02/05/2024"},
			{"Unit #": "U5", "Name": "ACME", "Expected Return": "soon"},
		},
	}

	proj, stats := p.Project(table)
	require.Equal(t, entities.KindDueIn, proj.Kind)
	require.Len(t, proj.DueIn, 3)

	d := proj.DueIn[0]
	assert.Equal(t, 3, d.DaysLate)
	assert.Equal(t, "Casablanca - City", d.Location)
	assert.Equal(t, entities.ClassCode("edmr"), d.Class)
	assert.True(t, d.Overdue())

	d = proj.DueIn[1]
	assert.Equal(t, 0, d.DaysLate)
	assert.Equal(t, "Casablanca - Airport", d.Location, "falls back to the unit id prefix")
	assert.Equal(t, 6, d.ExpectedReturn.Hour())

	d = proj.DueIn[2]
	assert.Equal(t, "", d.UnitID)
	assert.Equal(t, "Walk-in", d.Name)
	assert.Equal(t, "", d.Location)

	assert.Equal(t, 1, stats.Dropped[DropMissingUnitOrName])
	assert.Equal(t, 1, stats.Dropped[DropMissingExpectedReturn])
}

func TestProject_Unknown(t *testing.T) {
	p := NewProjector(DefaultSchema(), utc)
	proj, stats := p.Project(entities.Table{Headers: []string{"x"}, Rows: []entities.Row{{"x": 1.0}}})
	assert.Equal(t, entities.KindUnknown, proj.Kind)
	assert.Equal(t, entities.KindUnknown, stats.Kind)
	assert.Empty(t, proj.Reservations)
	assert.Equal(t, 0, stats.Kept)
}

func TestSchema_Compile(t *testing.T) {
	s := DefaultSchema()
	require.NoError(t, s.Compile())
	assert.NotNil(t, s.Available.Odometer.re)

	s.DueIn.Model.Pattern = "("
	assert.Error(t, s.Compile())

	s = DefaultSchema()
	s.Rules = append(s.Rules, Rule{Kind: entities.KindAvailable})
	assert.Error(t, s.Compile())
}
