package models

import (
	"math"
	"regexp"
	"sort"
	"strconv"
)

// Station is a train station from search results or nearby lookups.
// Code is the EVA number, the integer key used for recent stations.
type Station struct {
	Code     int      `json:"code"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Type     string   `json:"type"`
	Products []string `json:"products,omitempty"`
	Distance float64  `json:"distance,omitempty"` // meters from the query point
}

// StationResponse is the raw JSON for one station in a location search
type StationResponse struct {
	ExtID     string   `json:"extId"` // API returns as string
	EVANumber int      `json:"evaNumber"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Type      string   `json:"type"`
	Products  []string `json:"products"`
}

// ToStation converts the raw response to a Station
func (r *StationResponse) ToStation() Station {
	code := r.EVANumber
	if r.ExtID != "" {
		if parsed, err := strconv.Atoi(r.ExtID); err == nil {
			code = parsed
		}
	}
	if code == 0 {
		code = codeFromHafasID(r.ID)
	}

	s := Station{
		Code:     code,
		ID:       r.ID,
		Name:     r.Name,
		Lat:      r.Lat,
		Lon:      r.Lon,
		Type:     r.Type,
		Products: r.Products,
	}
	if s.Lat == 0 && s.Lon == 0 {
		s.Lat, s.Lon = coordinatesFromHafasID(r.ID)
	}
	return s
}

// IsStation reports whether the location is a stop rather than an address or POI
func (s Station) IsStation() bool {
	return s.Type == "" || s.Type == "ST" || s.Type == "STATION"
}

// Hafas IDs embed coordinates and the EVA number:
// A=1@O=Frankfurt(Main)Hbf@X=8663003@Y=50107145@U=80@L=8000105@
var (
	hafasCoordRegex = regexp.MustCompile(`@X=(-?\d+)@Y=(-?\d+)`)
	hafasCodeRegex  = regexp.MustCompile(`@L=(\d+)@`)
)

func coordinatesFromHafasID(id string) (lat, lon float64) {
	m := hafasCoordRegex.FindStringSubmatch(id)
	if len(m) != 3 {
		return 0, 0
	}
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return 0, 0
	}
	return y / 1e6, x / 1e6
}

func codeFromHafasID(id string) int {
	m := hafasCodeRegex.FindStringSubmatch(id)
	if len(m) != 2 {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// SortByDistance sets Distance relative to (lat, lon) on every station and
// sorts nearest first. Stations with equal distance keep their order.
func SortByDistance(stations []Station, lat, lon float64) {
	for i := range stations {
		stations[i].Distance = DistanceMeters(lat, lon, stations[i].Lat, stations[i].Lon)
	}
	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Distance < stations[j].Distance
	})
}
