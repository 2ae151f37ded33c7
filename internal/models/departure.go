package models

import (
	"strconv"
	"time"
)

// BoardKind distinguishes departure and arrival timetables
type BoardKind string

const (
	BoardDepartures BoardKind = "departures"
	BoardArrivals   BoardKind = "arrivals"
)

// cancelledMessageType marks a cancelled stop in API messages
const cancelledMessageType = "HALT_AUSFALL"

// Departure is one row of a station timetable. For arrival boards,
// Destination holds the origin and Time the arrival time.
type Departure struct {
	Kind        BoardKind  `json:"kind"`
	JourneyID   string     `json:"journeyId"`
	StationCode int        `json:"stationCode"`
	Category    string     `json:"category"`
	Line        string     `json:"line"`
	Train       string     `json:"train"`
	TrainLong   string     `json:"trainLong,omitempty"`
	Destination string     `json:"destination"`
	Platform    string     `json:"platform"`
	RTPlatform  string     `json:"rtPlatform,omitempty"`
	Via         []string   `json:"via,omitempty"`
	SchedTime   *time.Time `json:"schedTime,omitempty"`
	RTTime      *time.Time `json:"rtTime,omitempty"`
	Time        *time.Time `json:"time,omitempty"`
	Delay       int        `json:"delay"`
	IsCancelled bool       `json:"isCancelled"`
	Messages    []Message  `json:"messages,omitempty"`
}

// Message is an alert attached to a departure or train
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DepartureResponse is the raw JSON for one board entry
type DepartureResponse struct {
	JourneyID     string   `json:"journeyId"`
	BahnhofsID    string   `json:"bahnhofsId"`
	Terminus      string   `json:"terminus"`
	Gleis         string   `json:"gleis"`
	EZGleis       string   `json:"ezGleis"`
	Zeit          string   `json:"zeit"`
	EZZeit        string   `json:"ezZeit"`
	Ueber         []string `json:"ueber"`
	Verkehrmittel struct {
		KurzText   string `json:"kurzText"`
		MittelText string `json:"mittelText"`
		LangText   string `json:"langText"`
		Name       string `json:"name"`
	} `json:"verkehrmittel"`
	Meldungen []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"meldungen"`
}

// DeparturesResponse is the full board response
type DeparturesResponse struct {
	Entries []DepartureResponse `json:"entries"`
}

// ToDepartures converts all board entries
func (r *DeparturesResponse) ToDepartures(kind BoardKind, loc *time.Location) []Departure {
	out := make([]Departure, 0, len(r.Entries))
	for i := range r.Entries {
		out = append(out, r.Entries[i].ToDeparture(kind, loc))
	}
	return out
}

// ToDeparture converts the raw entry to a Departure
func (r *DepartureResponse) ToDeparture(kind BoardKind, loc *time.Location) Departure {
	times := parseTimePair(r.Zeit, r.EZZeit, loc)

	d := Departure{
		Kind:        kind,
		JourneyID:   r.JourneyID,
		Category:    r.Verkehrmittel.KurzText,
		Line:        r.Verkehrmittel.MittelText,
		Train:       r.Verkehrmittel.Name,
		TrainLong:   r.Verkehrmittel.LangText,
		Destination: r.Terminus,
		Platform:    r.Gleis,
		RTPlatform:  r.EZGleis,
		SchedTime:   times.sched,
		RTTime:      times.rt,
		Time:        times.effective(),
		Delay:       times.delay(),
	}
	if code, err := strconv.Atoi(r.BahnhofsID); err == nil {
		d.StationCode = code
	}

	// The first via entry is the board station itself.
	if len(r.Ueber) > 1 {
		d.Via = r.Ueber[1:]
	}

	for _, msg := range r.Meldungen {
		d.Messages = append(d.Messages, Message{Type: msg.Type, Text: msg.Text})
		if msg.Type == cancelledMessageType {
			d.IsCancelled = true
		}
	}

	return d
}

// EffectivePlatform returns the real-time platform if available, otherwise scheduled
func (d Departure) EffectivePlatform() string {
	if d.RTPlatform != "" {
		return d.RTPlatform
	}
	return d.Platform
}

// PlatformChanged reports whether the train uses a different platform than planned
func (d Departure) PlatformChanged() bool {
	return d.RTPlatform != "" && d.Platform != "" && d.RTPlatform != d.Platform
}

// LineName returns the best short label for the train
func (d Departure) LineName() string {
	if d.Line != "" {
		return d.Line
	}
	if d.Train != "" {
		return d.Train
	}
	return d.Category
}
