package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/models"
)

// parseStationCode parses a station code argument (EVA number)
func parseStationCode(s string) (int, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, api.ErrInvalidFormat("station code", "a number like 8000105")
	}
	if code <= 0 {
		return 0, api.ErrInvalidValue("station code", code)
	}
	return code, nil
}

// parseCoordinates parses "LAT:LON" in decimal degrees
func parseCoordinates(s string) (api.NearbyRequest, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return api.NearbyRequest{}, api.ErrInvalidFormat("location", "LAT:LON (e.g., 50.107:8.663)")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return api.NearbyRequest{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return api.NearbyRequest{}, fmt.Errorf("invalid longitude: %w", err)
	}

	req := api.NearbyRequest{Latitude: lat, Longitude: lon}
	if err := req.Validate(); err != nil {
		return api.NearbyRequest{}, err
	}
	return req, nil
}

// parseDateTime combines --date and --time with now. Missing parts keep the
// value from now.
func parseDateTime(dateStr, timeStr string, now time.Time) (time.Time, error) {
	loc := now.Location()
	year, month, day := now.Date()
	hour, minute := now.Hour(), now.Minute()

	switch {
	case dateStr == "":
	case strings.Contains(dateStr, "."):
		parts := strings.Split(dateStr, ".")
		if len(parts) < 2 || len(parts) > 3 {
			return time.Time{}, api.ErrInvalidFormat("date", "DD.MM.YYYY")
		}
		d, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return time.Time{}, api.ErrInvalidFormat("date", "DD.MM.YYYY")
		}
		day, month = d, time.Month(m)
		if len(parts) == 3 && parts[2] != "" {
			y, err := strconv.Atoi(parts[2])
			if err != nil {
				return time.Time{}, api.ErrInvalidFormat("date", "DD.MM.YYYY")
			}
			if y < 100 {
				y += 2000
			}
			year = y
		}
	default:
		t, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			return time.Time{}, api.ErrInvalidFormat("date", "YYYY-MM-DD")
		}
		year, month, day = t.Date()
	}

	if timeStr != "" {
		t, err := time.ParseInLocation("15:04", timeStr, loc)
		if err != nil {
			return time.Time{}, api.ErrInvalidFormat("time", "HH:MM")
		}
		hour, minute = t.Hour(), t.Minute()
	}

	return time.Date(year, month, day, hour, minute, 0, 0, loc), nil
}

// filterDepartures filters departures by line and/or direction
func filterDepartures(deps []models.Departure, line, direction string) []models.Departure {
	if line == "" && direction == "" {
		return deps
	}

	filtered := make([]models.Departure, 0, len(deps))
	for _, d := range deps {
		if line != "" && !strings.EqualFold(d.Line, line) && !strings.EqualFold(d.LineName(), line) {
			continue
		}
		if direction != "" && !strings.Contains(strings.ToLower(d.Destination), strings.ToLower(direction)) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// formatError renders a command error for stderr
func formatError(err error) string {
	msg := "Error: " + err.Error()
	if api.IsTemporary(err) {
		msg += "\nThis looks temporary, try again in a moment."
	}
	return msg
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPrettyJSON(w io.Writer, data []byte) error {
	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		_, _ = fmt.Fprintln(w, string(data))
		return err
	}
	return printJSON(w, pretty)
}
