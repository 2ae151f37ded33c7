package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/models"
	"github.com/mobil-koeln/station-cli/internal/recent"
	"github.com/mobil-koeln/station-cli/internal/settings"
	"github.com/mobil-koeln/station-cli/internal/testutil"
)

// fakeBackend serves canned data and records board requests
type fakeBackend struct {
	mu       sync.Mutex
	stations []models.Station
	boards   []api.StationBoardRequest
	train    *models.Train
	err      error
}

func (f *fakeBackend) SearchStations(ctx context.Context, query string) ([]models.Station, error) {
	return f.stations, f.err
}

func (f *fakeBackend) GetDepartures(ctx context.Context, req api.StationBoardRequest) ([]models.Departure, error) {
	f.mu.Lock()
	f.boards = append(f.boards, req)
	f.mu.Unlock()
	return []models.Departure{{JourneyID: "j1", Line: "ICE 123", Destination: "München Hbf"}}, f.err
}

func (f *fakeBackend) GetArrivals(ctx context.Context, req api.StationBoardRequest) ([]models.Departure, error) {
	return f.GetDepartures(ctx, req)
}

func (f *fakeBackend) GetTrain(ctx context.Context, journeyID string) (*models.Train, error) {
	return f.train, f.err
}

// fakeDirectory keeps station names in a map
type fakeDirectory struct {
	mu    sync.Mutex
	names map[int]string
}

func (f *fakeDirectory) Remember(ctx context.Context, stations []models.Station) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.names == nil {
		f.names = make(map[int]string)
	}
	for _, s := range stations {
		f.names[s.Code] = s.Name
	}
	return nil
}

func (f *fakeDirectory) Names(ctx context.Context, codes []int) (map[int]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]string)
	for _, code := range codes {
		if name, ok := f.names[code]; ok {
			out[code] = name
		}
	}
	return out, nil
}

func newTestModel(t *testing.T) (Model, *recent.Tracker, *fakeBackend) {
	t.Helper()
	tracker := recent.New(settings.NewMemoryStore())
	backend := &fakeBackend{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return New(ctx, backend, tracker, nil), tracker, backend
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// runCmd executes cmd and flattens batches into their messages
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

// nextRecent waits for the next recent list delivered to the model
func nextRecent(t *testing.T, m Model) recentMsg {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- waitForRecent(m.updates, m.directory)() }()
	select {
	case msg := <-done:
		rm, ok := msg.(recentMsg)
		if !ok {
			t.Fatalf("got %T, want recentMsg", msg)
		}
		return rm
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for recent list")
		return recentMsg{}
	}
}

func TestNew(t *testing.T) {
	m, _, _ := newTestModel(t)

	testutil.AssertEqual(t, m.focus, focusSearch)
	testutil.AssertTrue(t, m.updates != nil)
	testutil.AssertLen(t, m.modeFilters, len(modeLabels))
	for i, filter := range m.modeFilters {
		if !filter {
			t.Errorf("mode filter %d should be enabled by default", i)
		}
	}
	testutil.AssertTrue(t, m.showingRecent())
	testutil.AssertTrue(t, m.Init() != nil)
}

func TestModel_SelectedModes(t *testing.T) {
	m, _, _ := newTestModel(t)
	testutil.AssertLen(t, m.selectedModes(), len(modeLabels))

	m.modeFilters[0] = false // ICE
	m.modeFilters[1] = false // EC_IC
	modes := m.selectedModes()
	testutil.AssertLen(t, modes, len(modeLabels)-2)
	testutil.AssertEqual(t, modes[0], "IR")
}

func TestRecentList_FromTracker(t *testing.T) {
	tracker := recent.New(settings.NewMemoryStore())
	ctx := context.Background()
	testutil.AssertNil(t, tracker.SetCurrentStation(ctx, 123))
	testutil.AssertNil(t, tracker.SetCurrentStation(ctx, 456))

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m := New(subCtx, &fakeBackend{}, tracker, nil)

	msg := nextRecent(t, m)
	m, cmd := update(t, m, msg)
	testutil.AssertDiff(t, m.recent, []int{456, 123})
	testutil.AssertTrue(t, cmd != nil) // waits for the next list

	listed := m.listedStations()
	testutil.AssertLen(t, listed, 2)
	testutil.AssertEqual(t, listed[0].Code, 456)
	testutil.AssertEqual(t, listed[0].Name, "Station 456")

	testutil.AssertNil(t, tracker.SetCurrentStation(ctx, 789))
	m, _ = update(t, m, nextRecent(t, m))
	testutil.AssertDiff(t, m.recent, []int{789, 456, 123})
}

func TestRecentClosed(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := update(t, m, recentClosedMsg{})
	testutil.AssertTrue(t, cmd == nil)
	testutil.AssertTrue(t, m.updates == nil)
	testutil.AssertTrue(t, waitForRecent(m.updates, nil) == nil)
}

func TestRecentMsg_ClampsCursor(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.stationCursor = 2
	m, _ = update(t, m, recentMsg{codes: []int{5}})
	testutil.AssertEqual(t, m.stationCursor, 0)
}

func TestSelectStation_RecordsCurrentStation(t *testing.T) {
	m, tracker, backend := newTestModel(t)
	m.searchInput.SetValue("Frankfurt")
	m.stations = []models.Station{
		{Code: 8000105, Name: "Frankfurt(Main)Hbf"},
		{Code: 8002041, Name: "Frankfurt(Main)Süd"},
	}
	m.focus = focusStations

	m, _ = update(t, m, key("j"))
	m, cmd := update(t, m, key("enter"))

	testutil.AssertEqual(t, m.selectedStation.Code, 8002041)
	testutil.AssertTrue(t, m.departuresLoading)
	testutil.AssertEqual(t, m.names[8002041], "Frankfurt(Main)Süd")

	var recorded, board bool
	for _, msg := range runCmd(cmd) {
		switch msg := msg.(type) {
		case stationRecordedMsg:
			recorded = true
			testutil.AssertNil(t, msg.err)
			testutil.AssertEqual(t, msg.code, 8002041)
		case boardResultMsg:
			board = true
			m, _ = update(t, m, msg)
		}
	}
	testutil.AssertTrue(t, recorded)
	testutil.AssertTrue(t, board)
	testutil.AssertFalse(t, m.departuresLoading)
	testutil.AssertLen(t, m.departures, 1)
	testutil.AssertEqual(t, backend.boards[0].Code, 8002041)

	list, err := tracker.Snapshot(context.Background())
	testutil.AssertNil(t, err)
	testutil.AssertDiff(t, list, []int{8002041})
}

func TestSelectRecentStation(t *testing.T) {
	m, tracker, _ := newTestModel(t)
	m, _ = update(t, m, recentMsg{codes: []int{456, 123}})
	m.names = map[int]string{123: "Köln Hbf"}

	// enter on an empty search box jumps to the recent list
	m, _ = update(t, m, key("enter"))
	testutil.AssertEqual(t, m.focus, focusStations)

	m, _ = update(t, m, key("j"))
	m, cmd := update(t, m, key("enter"))
	testutil.AssertEqual(t, m.selectedStation.Code, 123)
	testutil.AssertEqual(t, m.selectedStation.Name, "Köln Hbf")
	runCmd(cmd)

	list, err := tracker.Snapshot(context.Background())
	testutil.AssertNil(t, err)
	testutil.AssertDiff(t, list, []int{123})
}

func TestSelectStation_PlaceholderNameNotRemembered(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, _ := m.selectStation(models.Station{Code: 456, Name: placeholderName(456)})
	m = next.(Model)
	_, known := m.names[456]
	testutil.AssertFalse(t, known)
}

func TestStationRecordedMsg_Error(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, stationRecordedMsg{code: 1, err: errors.New("disk full")})
	testutil.AssertContains(t, m.renderStatusBar(), "disk full")

	m, _ = update(t, m, stationRecordedMsg{code: 1})
	testutil.AssertNil(t, m.recentErr)
}

func TestSearchStations_FiltersNonStations(t *testing.T) {
	backend := &fakeBackend{stations: []models.Station{
		{Code: 8000105, Name: "Frankfurt(Main)Hbf", Type: "ST"},
		{Name: "Frankfurt am Main - Innenstadt", Type: "ADR"},
	}}

	dir := &fakeDirectory{}

	msg := searchStations(backend, dir, "Frankfurt", 3)().(searchResultMsg)
	testutil.AssertEqual(t, msg.seq, 3)
	testutil.AssertLen(t, msg.stations, 1)
	testutil.AssertDiff(t, dir.names, map[int]string{8000105: "Frankfurt(Main)Hbf"})
}

func TestRecentList_NamesFromDirectory(t *testing.T) {
	ctx := context.Background()
	tracker := recent.New(settings.NewMemoryStore())
	testutil.AssertNil(t, tracker.SetCurrentStation(ctx, 8000261))
	testutil.AssertNil(t, tracker.SetCurrentStation(ctx, 8000105))
	dir := &fakeDirectory{names: map[int]string{
		8000105: "Frankfurt(Main)Hbf",
		8000261: "München Hbf",
	}}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m := New(subCtx, &fakeBackend{}, tracker, dir)
	m, _ = update(t, m, nextRecent(t, m))

	listed := m.listedStations()
	testutil.AssertLen(t, listed, 2)
	testutil.AssertEqual(t, listed[0].Name, "Frankfurt(Main)Hbf")
	testutil.AssertEqual(t, listed[1].Name, "München Hbf")
}

func TestRecentMsg_KeepsSessionNames(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.names = map[int]string{1: "Köln Hbf"}
	before := m.names

	m, _ = update(t, m, recentMsg{codes: []int{2, 1}, names: map[int]string{2: "Bonn Hbf"}})
	testutil.AssertDiff(t, m.names, map[int]string{1: "Köln Hbf", 2: "Bonn Hbf"})
	testutil.AssertEqual(t, len(before), 1)
}

func TestSearchResultMsg(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.searchInput.SetValue("Frankfurt")
	m.searchSeq = 2
	m.stationsLoading = true

	// stale
	m, _ = update(t, m, searchResultMsg{seq: 1, stations: []models.Station{{Code: 1}}})
	testutil.AssertTrue(t, m.stationsLoading)
	testutil.AssertLen(t, m.stations, 0)

	m, _ = update(t, m, searchResultMsg{seq: 2, stations: []models.Station{{Code: 8000105, Name: "Frankfurt(Main)Hbf"}}})
	testutil.AssertFalse(t, m.stationsLoading)
	testutil.AssertLen(t, m.stations, 1)
	testutil.AssertEqual(t, m.focus, focusStations)
	testutil.AssertTrue(t, m.selectedStation == nil)
}

func TestSearchResultMsg_Error(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.searchSeq = 1
	m.stationsLoading = true

	m, _ = update(t, m, searchResultMsg{seq: 1, err: api.ErrServerError})
	testutil.AssertFalse(t, m.stationsLoading)
	testutil.AssertTrue(t, errors.Is(m.stationsErr, api.ErrServerError))
	testutil.AssertEqual(t, m.focus, focusSearch)
}

func TestSearchKeys(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(t, m, key("K"))
	m, _ = update(t, m, key("ö"))
	testutil.AssertFalse(t, m.showingRecent())

	m, cmd := update(t, m, key("enter"))
	testutil.AssertTrue(t, cmd != nil)
	testutil.AssertTrue(t, m.stationsLoading)
	testutil.AssertEqual(t, m.searchSeq, 1)

	m, _ = update(t, m, key("esc"))
	testutil.AssertTrue(t, m.showingRecent())
}

func TestBoardResultMsg(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.selectedStation = &models.Station{Code: 8000105}
	m.departuresLoading = true

	deps := []models.Departure{{JourneyID: "j1"}, {JourneyID: "j2"}}

	m, _ = update(t, m, boardResultMsg{stationCode: 8000261, departures: deps})
	testutil.AssertTrue(t, m.departuresLoading)

	m, _ = update(t, m, boardResultMsg{stationCode: 8000105, mode: boardArrival, departures: deps})
	testutil.AssertTrue(t, m.departuresLoading)

	m, _ = update(t, m, boardResultMsg{stationCode: 8000105, departures: deps})
	testutil.AssertFalse(t, m.departuresLoading)
	testutil.AssertLen(t, m.departures, 2)
	testutil.AssertFalse(t, m.lastUpdate.IsZero())
}

func TestBoardResultMsg_RefreshKeepsSelectedTrain(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.selectedStation = &models.Station{Code: 8000105}
	m.departures = []models.Departure{{JourneyID: "j1"}, {JourneyID: "j2"}}
	m.departureCursor = 1
	m.selectedJourneyID = "j2"
	m.showTrain = true
	m.train = &models.Train{Name: "RE 1"}

	m, _ = update(t, m, boardResultMsg{stationCode: 8000105, departures: []models.Departure{{JourneyID: "j2"}, {JourneyID: "j3"}}})
	testutil.AssertEqual(t, m.departureCursor, 0)
	testutil.AssertTrue(t, m.showTrain)

	m, _ = update(t, m, boardResultMsg{stationCode: 8000105, departures: []models.Departure{{JourneyID: "j4"}}})
	testutil.AssertFalse(t, m.showTrain)
	testutil.AssertEqual(t, m.selectedJourneyID, "")
}

func stopsAt(n int, start time.Time) []models.Stop {
	stops := make([]models.Stop, n)
	for i := range stops {
		ts := start.Add(time.Duration(i) * 10 * time.Minute)
		stops[i] = models.Stop{Name: "Stop", SchedArr: &ts, Arr: &ts}
	}
	return stops
}

func TestTrainResultMsg_AutoScrollsToCurrentStop(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.selectedJourneyID = "j1"
	m.trainLoading = true

	train := &models.Train{Name: "ICE 123", Stops: stopsAt(10, time.Now().Add(-45*time.Minute))}
	m, _ = update(t, m, trainResultMsg{journeyID: "j1", train: train})

	testutil.AssertTrue(t, m.showTrain)
	testutil.AssertFalse(t, m.trainLoading)
	testutil.AssertEqual(t, m.trainScroll, 4)
}

func TestTrainResultMsg_StaleIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.selectedJourneyID = "j2"
	m.trainLoading = true

	m, _ = update(t, m, trainResultMsg{journeyID: "j1", train: &models.Train{}})
	testutil.AssertTrue(t, m.trainLoading)
	testutil.AssertFalse(t, m.showTrain)
}

func TestTrainResultMsg_RefreshPreservesManualScroll(t *testing.T) {
	m, _, _ := newTestModel(t)
	train := &models.Train{Name: "ICE 123", Stops: stopsAt(10, time.Now().Add(-45*time.Minute))}
	m.selectedJourneyID = "j1"
	m, _ = update(t, m, trainResultMsg{journeyID: "j1", train: train})

	m.focus = focusTrain
	m, _ = update(t, m, key("k"))
	testutil.AssertEqual(t, m.trainScroll, 3)
	testutil.AssertTrue(t, m.trainManualScroll)

	m, _ = update(t, m, trainResultMsg{journeyID: "j1", train: train})
	testutil.AssertEqual(t, m.trainScroll, 3)

	// fewer stops after refresh
	short := &models.Train{Name: "ICE 123", Stops: stopsAt(2, time.Now().Add(-45*time.Minute))}
	m, _ = update(t, m, trainResultMsg{journeyID: "j1", train: short})
	testutil.AssertEqual(t, m.trainScroll, 1)
}

func TestDepartureKeys_OpenTrain(t *testing.T) {
	m, _, backend := newTestModel(t)
	backend.train = &models.Train{Name: "ICE 123"}
	m.focus = focusDepartures
	m.departures = []models.Departure{{JourneyID: "j1"}, {}}

	m, cmd := update(t, m, key("enter"))
	testutil.AssertEqual(t, m.selectedJourneyID, "j1")
	testutil.AssertTrue(t, m.trainLoading)

	msgs := runCmd(cmd)
	testutil.AssertLen(t, msgs, 1)
	m, _ = update(t, m, msgs[0])
	testutil.AssertTrue(t, m.showTrain)

	m, _ = update(t, m, key("esc"))
	testutil.AssertFalse(t, m.showTrain)

	// no journey id, nothing to open
	m, _ = update(t, m, key("j"))
	_, cmd = update(t, m, key("enter"))
	testutil.AssertTrue(t, cmd == nil)
}

func TestAutoRefresh(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := update(t, m, autoRefreshTickMsg(time.Now()))
	testutil.AssertTrue(t, cmd == nil)

	m.focus = focusAutoRefresh
	m.selectedStation = &models.Station{Code: 8000105}
	m, cmd = update(t, m, key(" "))
	testutil.AssertTrue(t, m.autoRefresh)
	testutil.AssertTrue(t, cmd != nil)

	_, cmd = update(t, m, countdownTickMsg(time.Now()))
	testutil.AssertTrue(t, cmd != nil)
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	testutil.AssertTrue(t, cmd != nil)
	_, ok := cmd().(tea.QuitMsg)
	testutil.AssertTrue(t, ok)
}

func TestMoveCursor(t *testing.T) {
	m := Model{height: 20}
	tests := []struct {
		key    string
		cursor int
		want   int
	}{
		{"j", 0, 1},
		{"down", 9, 9},
		{"k", 0, 0},
		{"pgdown", 0, 9},
		{"pgup", 9, 0},
		{"home", 5, 0},
		{"end", 2, 9},
		{"x", 4, 4},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, m.moveCursor(tt.key, tt.cursor, 10, 1), tt.want)
	}
	testutil.AssertEqual(t, m.moveCursor("j", 3, 0, 1), 0)
}
