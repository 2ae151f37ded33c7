package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/models"
)

const (
	apiTimeout          = 5 * time.Second
	autoRefreshInterval = 30 * time.Second
)

// autoRefreshTick returns a tea.Cmd that sends a tick after the refresh interval.
func autoRefreshTick() tea.Cmd {
	return tea.Tick(autoRefreshInterval, func(t time.Time) tea.Msg {
		return autoRefreshTickMsg(t)
	})
}

// countdownTick returns a tea.Cmd that sends a tick every second for countdown display.
func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

// waitForRecent blocks for the next recent list snapshot and looks up its
// names. The model re-issues it after every recentMsg.
func waitForRecent(updates <-chan []int, directory Directory) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		codes, ok := <-updates
		if !ok {
			return recentClosedMsg{}
		}
		msg := recentMsg{codes: codes}
		if directory != nil {
			ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
			defer cancel()
			// unknown names fall back to placeholders
			msg.names, _ = directory.Names(ctx, codes)
		}
		return msg
	}
}

// recordStation makes code the current station.
func recordStation(recents Recents, code int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		return stationRecordedMsg{code: code, err: recents.SetCurrentStation(ctx, code)}
	}
}

// searchStations returns a tea.Cmd that searches for stations. Found
// stations are remembered in directory when it is set.
func searchStations(backend Backend, directory Directory, query string, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		found, err := backend.SearchStations(ctx, query)
		var stations []models.Station
		for _, s := range found {
			if s.Code != 0 && s.IsStation() {
				stations = append(stations, s)
			}
		}
		if err == nil && directory != nil {
			_ = directory.Remember(ctx, stations)
		}
		return searchResultMsg{
			seq:      seq,
			stations: stations,
			err:      err,
		}
	}
}

// fetchBoard returns a tea.Cmd that fetches departures or arrivals for a station.
func fetchBoard(backend Backend, station models.Station, modes []string, mode boardMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		req := api.StationBoardRequest{
			Code:           station.Code,
			StationID:      station.ID,
			ModesOfTransit: modes,
		}
		var departures []models.Departure
		var err error
		if mode == boardArrival {
			departures, err = backend.GetArrivals(ctx, req)
		} else {
			departures, err = backend.GetDepartures(ctx, req)
		}
		return boardResultMsg{
			stationCode: station.Code,
			mode:        mode,
			departures:  departures,
			err:         err,
		}
	}
}

// fetchTrain returns a tea.Cmd that fetches train details.
func fetchTrain(backend Backend, journeyID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		train, err := backend.GetTrain(ctx, journeyID)
		return trainResultMsg{
			journeyID: journeyID,
			train:     train,
			err:       err,
		}
	}
}
