package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var boardLabels = [...]string{boardDeparture: "Departure", boardArrival: "Arrival"}

// renderFilterBar renders three bordered boxes in one row: transport mode
// chips, the departure/arrival switch and the auto-refresh toggle. Once a
// board has loaded, the time of the last update sits above them.
func (m Model) renderFilterBar() string {
	modes := make([]string, len(modeLabels))
	for i, ml := range modeLabels {
		modes[i] = renderChip(ml.label, m.modeFilters[i], m.focus == focusFilters && m.filterCursor == i)
	}

	boards := make([]string, len(boardLabels))
	for i, label := range boardLabels {
		boards[i] = renderChip(label, m.boardMode == boardMode(i), m.focus == focusBoard && m.boardCursor == i)
	}

	refresh := renderChip("Auto-refresh 30s", m.autoRefresh, m.focus == focusAutoRefresh)

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		renderBox(m.focus == focusFilters, modes...),
		renderBox(m.focus == focusBoard, boards...),
		renderBox(m.focus == focusAutoRefresh, refresh),
	)

	if m.lastUpdate.IsZero() {
		return boxes
	}
	return styleMuted.Render(m.updateLine(time.Now())) + "\n" + boxes
}

// updateLine reports the last board update and, with auto-refresh on, the
// seconds until the next one.
func (m Model) updateLine(now time.Time) string {
	line := "  Last update:\t" + m.lastUpdate.Format("15:04:05")
	if m.autoRefresh {
		remaining := max(autoRefreshInterval-now.Sub(m.lastUpdate), 0)
		line += fmt.Sprintf("\t(refresh in %ds)", int(remaining.Seconds()))
	}
	return line
}

func renderBox(focused bool, chips ...string) string {
	border := stylePanelNormal
	if focused {
		border = stylePanelFocused
	}
	return border.Render(strings.Join(chips, " "))
}

// renderChip renders one chip. Active chips are bracketed; the chip under
// the cursor is highlighted.
func renderChip(label string, active, focused bool) string {
	text := " " + label + " "
	if active {
		text = "[" + label + "]"
	}
	switch {
	case focused:
		return styleChipCursor.Render(text)
	case active:
		return styleLine.Render(text)
	default:
		return styleMuted.Render(text)
	}
}

// handleFilterKeys handles keys while the transport modes box is focused.
func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.filterCursor = max(m.filterCursor-1, 0)
	case "l", "right":
		m.filterCursor = min(m.filterCursor+1, len(modeLabels)-1)
	case " ", "enter":
		filters := slices.Clone(m.modeFilters)
		filters[m.filterCursor] = !filters[m.filterCursor]
		m.modeFilters = filters
		return m.refetchBoard()
	case "a":
		return m.toggleAllModes()
	case "tab":
		m.focus = focusBoard
	default:
		return m.leaveBar(msg)
	}
	return m, nil
}

// handleBoardKeys handles keys while the departure/arrival box is focused.
func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.boardCursor = max(m.boardCursor-1, 0)
	case "l", "right":
		m.boardCursor = min(m.boardCursor+1, len(boardLabels)-1)
	case " ", "enter":
		m.boardMode = boardMode(m.boardCursor)
		return m.refetchBoard()
	case "tab":
		m.focus = focusAutoRefresh
	default:
		return m.leaveBar(msg)
	}
	return m, nil
}

// leaveBar handles the keys shared by all filter bar boxes.
func (m Model) leaveBar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "/":
		m.focus = focusSearch
		m.searchInput.Focus()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// toggleAllModes turns every mode on, or off when all are already on.
func (m Model) toggleAllModes() (tea.Model, tea.Cmd) {
	on := slices.Contains(m.modeFilters, false)
	filters := make([]bool, len(m.modeFilters))
	for i := range filters {
		filters[i] = on
	}
	m.modeFilters = filters
	return m.refetchBoard()
}

// refetchBoard reloads the board of the selected station, if any.
func (m Model) refetchBoard() (tea.Model, tea.Cmd) {
	if m.selectedStation == nil {
		return m, nil
	}
	m.departuresLoading = true
	m.departuresErr = nil
	m.departures = nil
	m.departureCursor = 0
	m.closeTrain()
	return m, fetchBoard(m.backend, *m.selectedStation, m.selectedModes(), m.boardMode)
}
