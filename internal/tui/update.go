package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/station-cli/internal/models"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case recentMsg:
		m.recent = msg.codes
		m.names = withNames(m.names, msg.names)
		if m.showingRecent() {
			m.stationCursor = clamp(m.stationCursor, len(m.recent))
		}
		return m, waitForRecent(m.updates, m.directory)

	case recentClosedMsg:
		m.updates = nil
		return m, nil

	case stationRecordedMsg:
		m.recentErr = msg.err
		return m, nil

	case searchResultMsg:
		return m.handleSearchResult(msg)

	case boardResultMsg:
		return m.handleBoardResult(msg)

	case trainResultMsg:
		return m.handleTrainResult(msg)

	case autoRefreshTickMsg:
		return m.handleAutoRefreshTick()

	case countdownTickMsg:
		return m.handleCountdownTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Pass remaining messages to textinput when focused
	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	// Ignore stale results
	if msg.seq != m.searchSeq {
		return m, nil
	}
	m.stationsLoading = false
	m.stationsErr = msg.err
	if msg.err != nil {
		return m, nil
	}

	m.stations = msg.stations
	m.stationCursor = 0
	if len(m.stations) > 0 {
		m.focus = focusStations
		m.searchInput.Blur()
	}
	return m, nil
}

func (m Model) handleBoardResult(msg boardResultMsg) (tea.Model, tea.Cmd) {
	// Ignore if station or board changed
	if m.selectedStation == nil || msg.stationCode != m.selectedStation.Code || msg.mode != m.boardMode {
		return m, nil
	}
	m.departuresLoading = false
	m.departuresErr = msg.err
	if msg.err != nil {
		return m, nil
	}

	hadData := len(m.departures) > 0
	m.departures = msg.departures
	if hadData && m.selectedJourneyID != "" {
		// Re-locate the selected train in the refreshed list
		found := false
		for i, dep := range m.departures {
			if dep.JourneyID == m.selectedJourneyID {
				m.departureCursor = i
				found = true
				break
			}
		}
		if !found {
			m.closeTrain()
		}
	} else if !hadData {
		m.departureCursor = 0
	}
	m.departureCursor = clamp(m.departureCursor, len(m.departures))
	m.lastUpdate = time.Now()
	return m, nil
}

func (m Model) handleTrainResult(msg trainResultMsg) (tea.Model, tea.Cmd) {
	if msg.journeyID != m.selectedJourneyID {
		return m, nil
	}
	m.trainLoading = false
	m.trainErr = msg.err
	if msg.err != nil {
		return m, nil
	}

	wasShowing := m.showTrain && m.train != nil
	m.train = msg.train
	m.showTrain = true
	m.trainScroll = clamp(m.trainScroll, len(m.train.Stops))

	if !wasShowing || !m.trainManualScroll {
		m.trainManualScroll = false
		m.trainScroll = max(m.train.CurrentStopIndex(time.Now()), 0)
	}
	return m, nil
}

func (m *Model) closeTrain() {
	m.showTrain = false
	m.train = nil
	m.selectedJourneyID = ""
}

// selectStation opens the board of s and records it as the current station.
func (m Model) selectStation(s models.Station) (tea.Model, tea.Cmd) {
	m.selectedStation = &s
	if s.Name != "" && s.Name != placeholderName(s.Code) {
		m.names = withName(m.names, s.Code, s.Name)
	}
	m.departuresLoading = true
	m.departuresErr = nil
	m.departures = nil
	m.departureCursor = 0
	m.closeTrain()
	return m, tea.Batch(
		fetchBoard(m.backend, s, m.selectedModes(), m.boardMode),
		recordStation(m.recents, s.Code),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKeys(msg)
	case focusFilters:
		return m.handleFilterKeys(msg)
	case focusBoard:
		return m.handleBoardKeys(msg)
	case focusAutoRefresh:
		return m.handleAutoRefreshKeys(msg)
	case focusStations:
		return m.handleStationKeys(msg)
	case focusDepartures:
		return m.handleDepartureKeys(msg)
	case focusTrain:
		return m.handleTrainKeys(msg)
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			// Empty search box: jump to the recent list
			if len(m.recent) > 0 {
				m.focus = focusStations
				m.stationCursor = 0
				m.searchInput.Blur()
			}
			return m, nil
		}
		m.searchSeq++
		m.stationsLoading = true
		m.stationsErr = nil
		return m, searchStations(m.backend, m.directory, query, m.searchSeq)

	case "esc":
		m.searchInput.SetValue("")
		m.stationCursor = 0
		return m, nil

	case "tab":
		m.focus = focusFilters
		m.searchInput.Blur()
		return m, nil

	case "shift+tab":
		switch {
		case m.showTrain:
			m.focus = focusTrain
		case len(m.departures) > 0:
			m.focus = focusDepartures
		case len(m.listedStations()) > 0:
			m.focus = focusStations
		default:
			m.focus = focusAutoRefresh
		}
		m.searchInput.Blur()
		return m, nil
	}

	wasRecent := m.showingRecent()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if wasRecent != m.showingRecent() {
		m.stationCursor = 0
	}
	return m, cmd
}

func (m Model) handleStationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	listed := m.listedStations()
	m.stationCursor = clamp(m.stationCursor, len(listed))

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if len(m.departures) > 0 {
			m.focus = focusDepartures
			return m, nil
		}
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, nil

	case "shift+tab":
		m.focus = focusAutoRefresh
		return m, nil

	case "esc", "/":
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, nil

	case "enter":
		if len(listed) > 0 {
			return m.selectStation(listed[m.stationCursor])
		}
		return m, nil
	}

	m.stationCursor = m.moveCursor(msg.String(), m.stationCursor, len(listed), 1)
	return m, nil
}

func (m Model) handleDepartureKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.departureCursor = clamp(m.departureCursor, len(m.departures))

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if m.showTrain {
			m.focus = focusTrain
		} else {
			m.focus = focusSearch
			m.searchInput.Focus()
		}
		return m, nil

	case "shift+tab":
		m.focus = focusStations
		return m, nil

	case "esc":
		if m.showTrain {
			m.closeTrain()
			return m, nil
		}
		m.focus = focusStations
		return m, nil

	case "/":
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, nil

	case "enter":
		if len(m.departures) > 0 {
			dep := m.departures[m.departureCursor]
			if dep.JourneyID != "" {
				m.selectedJourneyID = dep.JourneyID
				m.trainLoading = true
				m.trainErr = nil
				m.train = nil
				return m, fetchTrain(m.backend, dep.JourneyID)
			}
		}
		return m, nil
	}

	m.departureCursor = m.moveCursor(msg.String(), m.departureCursor, len(m.departures), 1)
	return m, nil
}

func (m Model) handleAutoRefreshKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "enter":
		m.autoRefresh = !m.autoRefresh
		if !m.autoRefresh {
			return m, nil
		}
		cmds := []tea.Cmd{autoRefreshTick(), countdownTick()}
		cmds = append(cmds, m.refreshCmds()...)
		return m, tea.Batch(cmds...)

	case "tab":
		if len(m.listedStations()) > 0 {
			m.focus = focusStations
			return m, nil
		}
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, nil

	case "shift+tab":
		m.focus = focusBoard
		return m, nil

	case "esc", "/":
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, nil

	case "q":
		return m, tea.Quit
	}

	return m, nil
}

// refreshCmds re-fetches whatever is on screen, keeping it visible meanwhile.
func (m Model) refreshCmds() []tea.Cmd {
	var cmds []tea.Cmd
	if m.selectedStation != nil {
		cmds = append(cmds, fetchBoard(m.backend, *m.selectedStation, m.selectedModes(), m.boardMode))
	}
	if m.showTrain && m.selectedJourneyID != "" {
		cmds = append(cmds, fetchTrain(m.backend, m.selectedJourneyID))
	}
	return cmds
}

func (m Model) handleAutoRefreshTick() (tea.Model, tea.Cmd) {
	if !m.autoRefresh {
		return m, nil
	}
	return m, tea.Batch(append([]tea.Cmd{autoRefreshTick()}, m.refreshCmds()...)...)
}

func (m Model) handleCountdownTick() (tea.Model, tea.Cmd) {
	if !m.autoRefresh {
		return m, nil
	}
	return m, countdownTick()
}

func (m Model) handleTrainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	stops := 0
	if m.train != nil {
		stops = len(m.train.Stops)
	}
	m.trainScroll = clamp(m.trainScroll, stops)

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab", "/":
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, nil

	case "shift+tab", "esc":
		m.focus = focusDepartures
		return m, nil
	}

	scroll := m.moveCursor(msg.String(), m.trainScroll, stops, 3)
	if scroll != m.trainScroll || msg.String() == "home" || msg.String() == "end" {
		m.trainManualScroll = true
	}
	m.trainScroll = scroll
	return m, nil
}

// moveCursor applies a navigation key to a list cursor. linesPerItem scales
// the page size for lists whose rows span several lines.
func (m Model) moveCursor(key string, cursor, total, linesPerItem int) int {
	if total == 0 {
		return 0
	}
	pageSize := (m.height - 10) / linesPerItem
	if pageSize < 1 {
		pageSize = 5
	}

	switch key {
	case "j", "down":
		cursor++
	case "k", "up":
		cursor--
	case "pgdown":
		cursor += pageSize
	case "pgup":
		cursor -= pageSize
	case "home":
		cursor = 0
	case "end":
		cursor = total - 1
	}
	return clamp(cursor, total)
}

// clamp keeps a cursor inside [0, total)
func clamp(cursor, total int) int {
	if cursor >= total {
		cursor = total - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
