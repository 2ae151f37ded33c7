package tui

import (
	"time"

	"github.com/mobil-koeln/station-cli/internal/models"
)

// autoRefreshTickMsg is sent every 30 seconds when auto-refresh is enabled.
type autoRefreshTickMsg time.Time

// countdownTickMsg is sent every second when auto-refresh is enabled to update countdown display.
type countdownTickMsg time.Time

// recentMsg carries a new recent list snapshot, most recent first, with
// the names the directory knows for it.
type recentMsg struct {
	codes []int
	names map[int]string
}

// recentClosedMsg means the recent list subscription ended.
type recentClosedMsg struct{}

// stationRecordedMsg reports the outcome of recording a selected station.
type stationRecordedMsg struct {
	code int
	err  error
}

// searchResultMsg carries station search results back to the model.
// seq is used for stale-result detection.
type searchResultMsg struct {
	seq      int
	stations []models.Station
	err      error
}

// boardResultMsg carries a board for a specific station.
type boardResultMsg struct {
	stationCode int
	mode        boardMode
	departures  []models.Departure
	err         error
}

// trainResultMsg carries train details.
type trainResultMsg struct {
	journeyID string
	train     *models.Train
	err       error
}
