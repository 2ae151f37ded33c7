package tui

import (
	"testing"
	"time"

	"github.com/mobil-koeln/station-cli/internal/models"
	"github.com/mobil-koeln/station-cli/internal/testutil"
)

func TestRenderFilterBar(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.width = 120

	out := m.renderFilterBar()
	for _, label := range []string{"[ICE]", "[IC]", "[Tram]", "[Departure]", " Arrival ", " Auto-refresh 30s "} {
		testutil.AssertContains(t, out, label)
	}
	testutil.AssertNotContains(t, out, "Last update")

	m.modeFilters[0] = false
	m.boardMode = boardArrival
	m.autoRefresh = true
	m.lastUpdate = time.Now()

	out = m.renderFilterBar()
	testutil.AssertContains(t, out, " ICE ")
	testutil.AssertContains(t, out, "[Arrival]")
	testutil.AssertContains(t, out, "[Auto-refresh 30s]")
	testutil.AssertContains(t, out, "Last update")
	testutil.AssertContains(t, out, "refresh in")
}

func TestFilterKeys_ToggleRefetchesBoard(t *testing.T) {
	m, _, backend := newTestModel(t)
	m.focus = focusFilters
	m.selectedStation = &models.Station{Code: 8000105}
	before := m.modeFilters

	m, _ = update(t, m, key("l"))
	testutil.AssertEqual(t, m.filterCursor, 1)

	m, cmd := update(t, m, key(" "))
	testutil.AssertFalse(t, m.modeFilters[1])
	testutil.AssertTrue(t, before[1]) // previous snapshot untouched
	testutil.AssertTrue(t, m.departuresLoading)

	runCmd(cmd)
	testutil.AssertLen(t, backend.boards, 1)
	testutil.AssertLen(t, backend.boards[0].ModesOfTransit, len(modeLabels)-1)
}

func TestFilterKeys_ToggleAll(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.focus = focusFilters

	m, _ = update(t, m, key("a"))
	testutil.AssertLen(t, m.selectedModes(), 0)

	m, _ = update(t, m, key("a"))
	testutil.AssertLen(t, m.selectedModes(), len(modeLabels))
}

func TestBoardKeys_SwitchToArrivals(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.focus = focusBoard

	m, cmd := update(t, m, key("l"))
	testutil.AssertTrue(t, cmd == nil)
	m, cmd = update(t, m, key("enter"))
	testutil.AssertEqual(t, m.boardMode, boardArrival)
	testutil.AssertTrue(t, cmd == nil) // no station selected yet

	m, _ = update(t, m, key("tab"))
	testutil.AssertEqual(t, m.focus, focusAutoRefresh)
}

func TestUpdateLine(t *testing.T) {
	m, _, _ := newTestModel(t)
	last := time.Date(2025, 3, 14, 9, 41, 0, 0, time.UTC)
	m.lastUpdate = last

	testutil.AssertEqual(t, m.updateLine(last.Add(10*time.Second)), "  Last update:\t09:41:00")

	m.autoRefresh = true
	testutil.AssertEqual(t, m.updateLine(last.Add(10*time.Second)), "  Last update:\t09:41:00\t(refresh in 20s)")
	testutil.AssertEqual(t, m.updateLine(last.Add(time.Minute)), "  Last update:\t09:41:00\t(refresh in 0s)")
}

func TestRenderChip(t *testing.T) {
	testutil.AssertContains(t, renderChip("ICE", true, false), "[ICE]")
	testutil.AssertContains(t, renderChip("ICE", false, true), " ICE ")
}
