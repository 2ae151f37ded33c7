package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/models"
)

// Backend is the part of the API client the TUI uses.
type Backend interface {
	SearchStations(ctx context.Context, query string) ([]models.Station, error)
	GetDepartures(ctx context.Context, req api.StationBoardRequest) ([]models.Departure, error)
	GetArrivals(ctx context.Context, req api.StationBoardRequest) ([]models.Departure, error)
	GetTrain(ctx context.Context, journeyID string) (*models.Train, error)
}

// Recents records selected stations and streams the recent list.
type Recents interface {
	SetCurrentStation(ctx context.Context, id int) error
	RecentStations(ctx context.Context) <-chan []int
}

// Directory remembers station names so the recent list can show them.
type Directory interface {
	Remember(ctx context.Context, stations []models.Station) error
	Names(ctx context.Context, codes []int) (map[int]string, error)
}

type focusPanel int

const (
	focusSearch focusPanel = iota
	focusFilters
	focusBoard
	focusAutoRefresh
	focusStations
	focusDepartures
	focusTrain
)

type boardMode int

const (
	boardDeparture boardMode = iota
	boardArrival
)

var modeLabels = []struct {
	apiName string
	label   string
}{
	{"ICE", "ICE"},
	{"EC_IC", "IC"},
	{"IR", "IR"},
	{"REGIONAL", "RE"},
	{"SBAHN", "S"},
	{"BUS", "Bus"},
	{"SCHIFF", "Ship"},
	{"UBAHN", "U"},
	{"TRAM", "Tram"},
	{"ANRUFPFLICHTIG", "On-call"},
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	backend   Backend
	recents   Recents
	directory Directory
	updates   <-chan []int
	width   int
	height  int

	searchInput textinput.Model
	focus       focusPanel

	// Filter bar - transport modes
	modeFilters  []bool
	filterCursor int

	// Board mode - departure/arrival
	boardMode   boardMode
	boardCursor int

	// Auto-refresh
	autoRefresh bool
	lastUpdate  time.Time

	// Left panel - search results, or the recent list while the search box is empty
	stations        []models.Station
	stationCursor   int
	stationsLoading bool
	stationsErr     error
	searchSeq       int

	recent    []int
	recentErr error
	names     map[int]string // known station names, for the recent list

	// Right panel - board
	selectedStation   *models.Station
	departures        []models.Departure
	departureCursor   int
	departuresLoading bool
	departuresErr     error

	// Right panel - train detail
	selectedJourneyID string
	train             *models.Train
	trainLoading      bool
	trainErr          error
	showTrain         bool
	trainScroll       int
	trainManualScroll bool
}

// New creates a new TUI model. The recent list subscription lives until ctx
// is cancelled. directory may be nil, then only names selected in this
// session are shown.
func New(ctx context.Context, backend Backend, recents Recents, directory Directory) Model {
	ti := textinput.New()
	ti.Placeholder = "Search station..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	filters := make([]bool, len(modeLabels))
	for i := range filters {
		filters[i] = true
	}

	return Model{
		backend:     backend,
		recents:     recents,
		directory:   directory,
		updates:     recents.RecentStations(ctx),
		searchInput: ti,
		focus:       focusSearch,
		modeFilters: filters,
	}
}

// Init starts the cursor blink and waits for the first recent list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForRecent(m.updates, m.directory))
}

// selectedModes returns the API mode names for active filters.
func (m Model) selectedModes() []string {
	var modes []string
	for i, active := range m.modeFilters {
		if active {
			modes = append(modes, modeLabels[i].apiName)
		}
	}
	return modes
}

// showingRecent reports whether the station panel lists recent stations.
func (m Model) showingRecent() bool {
	return strings.TrimSpace(m.searchInput.Value()) == ""
}

// listedStations returns what the station panel currently shows.
func (m Model) listedStations() []models.Station {
	if !m.showingRecent() {
		return m.stations
	}
	out := make([]models.Station, len(m.recent))
	for i, code := range m.recent {
		out[i] = models.Station{Code: code, Name: m.stationName(code)}
	}
	return out
}

func (m Model) stationName(code int) string {
	if name, ok := m.names[code]; ok {
		return name
	}
	return placeholderName(code)
}

// placeholderName labels a recent station whose name is not known yet
func placeholderName(code int) string {
	return "Station " + strconv.Itoa(code)
}

// withNames returns a copy of names with more added
func withNames(names, more map[int]string) map[int]string {
	if len(more) == 0 {
		return names
	}
	out := make(map[int]string, len(names)+len(more))
	for k, v := range names {
		out[k] = v
	}
	for k, v := range more {
		out[k] = v
	}
	return out
}

// withName returns a copy of names with code added
func withName(names map[int]string, code int, name string) map[int]string {
	out := make(map[int]string, len(names)+1)
	for k, v := range names {
		out[k] = v
	}
	out[code] = name
	return out
}
