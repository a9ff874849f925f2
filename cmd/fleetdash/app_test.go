package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/fleetdash/pkg/errors"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

type harness struct {
	dir   string
	state string
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	return &harness{dir: dir, state: filepath.Join(dir, "state", "fleet.db")}
}

// run executes one command line against the harness state and returns stdout.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(&out)
	app.envFiles = []string{}
	app.searchPaths = []string{h.dir}
	base := []string{"--state", h.state, "--timezone", "UTC", "--log-output", "discard"}
	err := app.Execute(context.Background(), append(base, args...))
	return out.String(), err
}

func (h *harness) write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func stamp(t time.Time) string {
	return t.UTC().Format("02/01/2006 15:04")
}

func (h *harness) exports(t *testing.T) []string {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Hour)
	return []string{
		h.write(t, "ResManifest.csv", strings.Join([]string{
			"Res #,Name,Class,Pickup Date,Drop Off Date,Daily Rate",
			"R1,ALAMI,cdmr," + stamp(now.Add(30*time.Hour)) + "," + stamp(now.Add(78*time.Hour)) + ",300",
			"R2,BENNANI,idar," + stamp(now.Add(50*time.Hour)) + ",,",
		}, "\n")),
		h.write(t, "UnitsAvailable.csv", "Unit #,Class,Curr Fuel,Curr Loc\nU1,cdmr,F,CMN\n"),
		h.write(t, "UnitsDueIn.csv", strings.Join([]string{
			"Unit #,Class,Name,Expected Return,Days Late",
			"U7,idar,SMITH," + stamp(now.Add(20*time.Hour)) + ",0",
		}, "\n")),
	}
}

func TestApp_ImportPersistsAcrossRuns(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, append([]string{"import"}, h.exports(t)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "R1")

	out, err = h.run(t, "assign", "--all", "-o", "json")
	require.NoError(t, err)
	var rows []output.AssignmentRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "U1", rows[0].Unit)
	assert.Equal(t, "U7", rows[1].Unit)
	assert.Equal(t, "return", string(rows[1].Source))

	_, err = h.run(t, "override", "R2", "none")
	require.NoError(t, err)
	_, err = h.run(t, "import", h.exports(t)[1])
	require.NoError(t, err)

	out, err = h.run(t, "assign", "--all", "-o", "json")
	require.NoError(t, err)
	rows = nil
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "none", rows[1].Unit)
	assert.True(t, rows[1].Pinned)
}

func TestApp_ReportAndReset(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, append([]string{"import"}, h.exports(t)...)...)
	require.NoError(t, err)

	out, err := h.run(t, "report", "kpis", "-o", "json")
	require.NoError(t, err)
	var payload struct {
		KPIs struct {
			Reservations    int    `json:"reservations"`
			UpcomingRevenue string `json:"upcomingRevenue"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, 2, payload.KPIs.Reservations)
	assert.Equal(t, "600", payload.KPIs.UpcomingRevenue)

	out, err = h.run(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Session cleared")

	out, err = h.run(t, "assign", "--all", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestApp_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "report", "gantt")
	assert.True(t, errors.IsValidationError(err))

	_, err = h.run(t, "assign", "-o", "html")
	assert.Error(t, err)

	_, err = h.run(t, "override", "R1")
	assert.Error(t, err, "a unit is required unless --release is given")

	_, err = h.run(t, "import", h.write(t, "notes.csv", "Foo,Bar\n1,2\n"))
	assert.Error(t, err)
}

func TestApp_ConfigFile(t *testing.T) {
	h := newHarness(t)
	h.write(t, ".fleetdash.yaml", "window_days: 1\n")
	_, err := h.run(t, append([]string{"import"}, h.exports(t)...)...)
	require.NoError(t, err)

	out, err := h.run(t, "assign", "-o", "json")
	require.NoError(t, err)
	var rows []output.AssignmentRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Empty(t, rows, "both pickups are beyond a one day window")
}
