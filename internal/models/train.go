package models

import (
	"strconv"
	"strings"
	"time"
)

// Train holds the details of one journey with all of its stops
type Train struct {
	JourneyID   string     `json:"journeyId"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Number      string     `json:"number,omitempty"`
	Day         *time.Time `json:"day,omitempty"`
	IsCancelled bool       `json:"isCancelled"`
	Stops       []Stop     `json:"stops"`
	Messages    []Message  `json:"messages,omitempty"`
}

// Stop is one station along a train's route
type Stop struct {
	StationCode  int        `json:"stationCode"`
	Name         string     `json:"name"`
	Lat          float64    `json:"lat,omitempty"`
	Lon          float64    `json:"lon,omitempty"`
	Platform     string     `json:"platform,omitempty"`
	RTPlatform   string     `json:"rtPlatform,omitempty"`
	SchedArr     *time.Time `json:"schedArr,omitempty"`
	Arr          *time.Time `json:"arr,omitempty"`
	SchedDep     *time.Time `json:"schedDep,omitempty"`
	Dep          *time.Time `json:"dep,omitempty"`
	ArrDelay     int        `json:"arrDelay,omitempty"`
	DepDelay     int        `json:"depDelay,omitempty"`
	IsCancelled  bool       `json:"isCancelled"`
	IsAdditional bool       `json:"isAdditional"`
}

type haltResponse struct {
	Name                  string `json:"name"`
	ExtID                 string `json:"extId"`
	EVANumber             int    `json:"evaNumber"`
	ID                    string `json:"id"`
	Gleis                 string `json:"gleis"`
	EZGleis               string `json:"ezGleis"`
	AbfahrtsZeitpunkt     string `json:"abfahrtsZeitpunkt"`
	EZAbfahrtsZeitpunkt   string `json:"ezAbfahrtsZeitpunkt"`
	AnkunftsZeitpunkt     string `json:"ankunftsZeitpunkt"`
	EZAnkunftsZeitpunkt   string `json:"ezAnkunftsZeitpunkt"`
	Nummer                string `json:"nummer"`
	Kategorie             string `json:"kategorie"`
	Canceled              bool   `json:"canceled"`
	Additional            bool   `json:"additional"`
	PriorisierteMeldungen []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"priorisierteMeldungen"`
}

// TrainResponse is the raw journey detail response
type TrainResponse struct {
	Reisetag     string         `json:"reisetag"`
	ZugName      string         `json:"zugName"`
	Cancelled    bool           `json:"cancelled"`
	Halte        []haltResponse `json:"halte"`
	HimMeldungen []struct {
		Prioritaet   string `json:"prioritaet"`
		Ueberschrift string `json:"ueberschrift"`
		Text         string `json:"text"`
	} `json:"himMeldungen"`
}

// ToTrain converts the raw response to a Train
func (r *TrainResponse) ToTrain(journeyID string, loc *time.Location) *Train {
	t := &Train{
		JourneyID:   journeyID,
		Name:        r.ZugName,
		IsCancelled: r.Cancelled,
		Stops:       make([]Stop, 0, len(r.Halte)),
	}

	if r.Reisetag != "" {
		if day, err := time.ParseInLocation("2006-01-02", r.Reisetag, loc); err == nil {
			t.Day = &day
		}
	}

	// "ICE 623" -> category ICE, number 623
	if fields := strings.Fields(r.ZugName); len(fields) > 0 {
		t.Category = fields[0]
		if len(fields) > 1 {
			t.Number = fields[len(fields)-1]
		}
	}

	for i := range r.Halte {
		h := &r.Halte[i]
		t.Stops = append(t.Stops, h.toStop(loc))
		if t.Category == "" {
			t.Category = h.Kategorie
		}
		if t.Number == "" {
			t.Number = h.Nummer
		}
	}

	for _, msg := range r.HimMeldungen {
		t.Messages = append(t.Messages, Message{
			Type: msg.Prioritaet,
			Text: msg.Ueberschrift + ": " + msg.Text,
		})
	}

	return t
}

func (h *haltResponse) toStop(loc *time.Location) Stop {
	arr := parseTimePair(h.AnkunftsZeitpunkt, h.EZAnkunftsZeitpunkt, loc)
	dep := parseTimePair(h.AbfahrtsZeitpunkt, h.EZAbfahrtsZeitpunkt, loc)

	s := Stop{
		StationCode:  h.EVANumber,
		Name:         h.Name,
		Platform:     h.Gleis,
		RTPlatform:   h.EZGleis,
		SchedArr:     arr.sched,
		Arr:          arr.effective(),
		SchedDep:     dep.sched,
		Dep:          dep.effective(),
		ArrDelay:     arr.delay(),
		DepDelay:     dep.delay(),
		IsCancelled:  h.Canceled,
		IsAdditional: h.Additional,
	}
	if s.StationCode == 0 {
		if code, err := strconv.Atoi(h.ExtID); err == nil {
			s.StationCode = code
		} else {
			s.StationCode = codeFromHafasID(h.ID)
		}
	}
	s.Lat, s.Lon = coordinatesFromHafasID(h.ID)

	for _, msg := range h.PriorisierteMeldungen {
		if msg.Type == cancelledMessageType {
			s.IsCancelled = true
		}
	}
	return s
}

// Delay returns the arrival delay, or the departure delay at the first stop
func (s Stop) Delay() int {
	if s.ArrDelay != 0 {
		return s.ArrDelay
	}
	return s.DepDelay
}

// EffectivePlatform returns the real-time platform if available, otherwise scheduled
func (s Stop) EffectivePlatform() string {
	if s.RTPlatform != "" {
		return s.RTPlatform
	}
	return s.Platform
}

// CurrentStopIndex returns the index of the last stop the train has reached
// at now, using scheduled times shifted by the most recent known delay.
// It returns -1 for a train without stops.
func (t *Train) CurrentStopIndex(now time.Time) int {
	if len(t.Stops) == 0 {
		return -1
	}

	reached := func(at time.Time) int {
		for i := len(t.Stops) - 1; i >= 0; i-- {
			s := t.Stops[i]
			ref := s.SchedArr
			if ref == nil {
				ref = s.SchedDep
			}
			if ref != nil && !at.Before(*ref) {
				return i
			}
		}
		return 0
	}

	delay := t.Stops[reached(now)].Delay()
	return reached(now.Add(-time.Duration(delay) * time.Minute))
}
