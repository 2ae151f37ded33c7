package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/models"
)

// View renders the entire TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := renderHeader()
	searchBar := m.renderSearchBar()
	filterBar := m.renderFilterBar()
	statusBar := m.renderStatusBar()

	panelHeight := m.height - lipgloss.Height(header) - lipgloss.Height(searchBar) -
		lipgloss.Height(filterBar) - lipgloss.Height(statusBar)
	if panelHeight < 3 {
		panelHeight = 3
	}

	// Panel widths: ~35% left, ~65% right
	leftWidth := max(m.width*35/100-2, 20)
	rightWidth := max(m.width-leftWidth-4, 20)

	leftBorder := stylePanelNormal
	if m.focus == focusStations {
		leftBorder = stylePanelFocused
	}
	leftPanel := leftBorder.
		Width(leftWidth).
		Height(panelHeight - 2).
		Render(m.renderStationList(leftWidth, panelHeight-2))

	rightBorder := stylePanelNormal
	if m.focus == focusDepartures || m.focus == focusTrain {
		rightBorder = stylePanelFocused
	}
	rightPanel := rightBorder.
		Width(rightWidth).
		Height(panelHeight - 2).
		Render(m.renderRightPanel(rightWidth, panelHeight-2))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, searchBar, filterBar, panels, statusBar)
}

// renderHeader renders the brand line.
func renderHeader() string {
	return styleLogo.Render(" ▚ station") + styleMuted.Render("  departures, arrivals and trains from bahn.de")
}

// renderSearchBar renders the search input at the top.
func (m Model) renderSearchBar() string {
	border := stylePanelNormal
	if m.focus == focusSearch {
		border = stylePanelFocused
	}
	return border.Width(m.width - 2).Render(styleHeader.Render("Search: ") + m.searchInput.View())
}

// renderStationList renders the left panel: search results, or the recent
// list while the search box is empty.
func (m Model) renderStationList(width, height int) string {
	recent := m.showingRecent()

	title := styleHeader.Render("STATIONS")
	if recent {
		title = styleHeader.Render("RECENT")
	}

	switch {
	case m.stationsLoading && !recent:
		return title + "\n" + styleLoading.Render(" Searching...")
	case m.stationsErr != nil && !recent:
		return title + "\n" + renderError(m.stationsErr)
	}

	listed := m.listedStations()
	if len(listed) == 0 {
		hint := " Type a station name and press Enter"
		if !recent {
			hint = " No stations found"
		}
		return title + "\n" + styleMuted.Render(hint)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	maxVisible := max(height-2, 1)
	start, end := visibleRange(m.stationCursor, len(listed), maxVisible)

	for i := start; i < end; i++ {
		name := truncate(listed[i].Name, width-6)
		marker := " "
		if recent {
			marker = styleRecent.Render("~")
			if i == 0 {
				marker = styleCurrentStation.Render("*")
			}
		}
		if i == m.stationCursor {
			b.WriteString(styleSelected.Render(" >") + marker + styleSelected.Render(name))
		} else {
			b.WriteString("  " + marker + name)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// trainVisible reports whether the train panel takes part of the right side.
func (m Model) trainVisible() bool {
	return m.selectedJourneyID != "" && (m.showTrain || m.trainLoading || m.trainErr != nil)
}

// renderRightPanel renders the board and, below it, the selected train.
func (m Model) renderRightPanel(width, height int) string {
	if !m.trainVisible() {
		return m.renderDepartureList(width, height)
	}

	depHeight := max(height*45/100, 4)
	trainHeight := max(height-depHeight-1, 4)

	depView := m.renderDepartureList(width, depHeight)
	separator := styleMuted.Render(strings.Repeat("─", width))
	trainView := lipgloss.NewStyle().
		Width(width).
		Height(trainHeight).
		Render(m.renderTrainDetail(width, trainHeight))

	return depView + "\n" + separator + "\n" + trainView
}

// renderDepartureList renders the departure table.
func (m Model) renderDepartureList(width, height int) string {
	title := "DEPARTURES"
	if m.boardMode == boardArrival {
		title = "ARRIVALS"
	}
	if m.selectedStation != nil {
		title += " for " + truncate(m.selectedStation.Name, width-18)
	}
	titleStr := styleHeader.Render(title)

	if m.departuresLoading {
		return titleStr + "\n" + styleLoading.Render(" Loading...")
	}
	if m.departuresErr != nil {
		return titleStr + "\n" + renderError(m.departuresErr)
	}
	if m.selectedStation == nil {
		return titleStr + "\n" + styleMuted.Render(" Select a station to view departures")
	}
	if len(m.departures) == 0 {
		return titleStr + "\n" + styleMuted.Render(" No departures found")
	}

	var b strings.Builder
	b.WriteString(titleStr)
	b.WriteString("\n")

	maxVisible := max(height-2, 1)
	start, end := visibleRange(m.departureCursor, len(m.departures), maxVisible)

	for i := start; i < end; i++ {
		b.WriteString(renderDepartureLine(m.departures[i], width, i == m.departureCursor && m.focus == focusDepartures))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderDepartureLine renders a single departure entry.
func renderDepartureLine(dep models.Departure, width int, selected bool) string {
	timeStr := "??:??"
	if dep.Time != nil {
		timeStr = dep.Time.Format("15:04")
	}

	line := dep.LineName()
	if len(line) > 10 {
		line = line[:10]
	}
	lineStr := fmt.Sprintf("%-10s", line)

	platform := dep.EffectivePlatform()
	platformStr := "       "
	if platform != "" {
		if len(platform) > 3 {
			platform = platform[:3]
		}
		platformStr = fmt.Sprintf("Pl.%-3s ", platform)
	}
	platformStyle := stylePlatform
	if dep.PlatformChanged() {
		platformStyle = styleDelayHigh
	}

	fixedWidth := 5 + 1 + 4 + 2 + 10 + 2 + 7 // time+sp+delay+sp+line+sp+platform
	dest := truncate(dep.Destination, width-fixedWidth-4)

	lineStyle := styleLine
	if dep.IsCancelled {
		lineStyle = styleCanceled
		dest = styleCanceled.Render(dest + " [X]")
	}

	entry := fmt.Sprintf("%s %s  %s  %s %s",
		styleTime.Render(timeStr),
		formatDelay(dep.Delay),
		lineStyle.Render(lineStr),
		platformStyle.Render(platformStr),
		dest,
	)

	if selected {
		return styleSelected.Render(">") + entry
	}
	return " " + entry
}

// renderStatusBar renders context-aware keyboard hints at the bottom.
func (m Model) renderStatusBar() string {
	var hints string
	switch m.focus {
	case focusSearch:
		hints = "Enter:search (empty: recent)  Tab:filters  Esc:clear  Ctrl+C:quit"
	case focusFilters:
		hints = "h/l:move  Space:toggle  a:all  Tab:dep/arr  Esc:search  q:quit"
	case focusBoard:
		hints = "h/l:move  Space:select  Tab:auto-refresh  Esc:search  q:quit"
	case focusAutoRefresh:
		hints = "Space:toggle  Tab:stations  Esc:search  q:quit"
	case focusStations:
		hints = "j/k:navigate  Enter:select  Tab:departures  Esc:search  q:quit"
	case focusDepartures:
		hints = "j/k:navigate  Enter:train  Tab:next  Esc:back  /:search  q:quit"
	case focusTrain:
		hints = "j/k:scroll  Tab:search  Esc:departures  q:quit"
	}
	if m.recentErr != nil {
		hints = "Could not save station: " + m.recentErr.Error() + "  |  " + hints
	}

	return styleStatusBar.Width(m.width).Render(" " + hints)
}

// renderError renders an error line, hinting at a retry for transient failures.
func renderError(err error) string {
	text := " Error: " + err.Error()
	if api.IsTemporary(err) {
		text += " (temporary, try again)"
	}
	return styleError.Render(text)
}

// visibleRange calculates the start and end indices for a scrollable list.
func visibleRange(cursor, total, maxVisible int) (int, int) {
	if total <= maxVisible {
		return 0, total
	}

	start := max(cursor-maxVisible/2, 0)
	end := start + maxVisible
	if end > total {
		end = total
		start = max(end-maxVisible, 0)
	}
	return start, end
}

// truncate truncates a string to the given width.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}
