package api

// BaseURL is the bahn.de web API root
const BaseURL = "https://www.bahn.de/web/api"

// Endpoint paths below BaseURL
const (
	// Board endpoints take datum, zeit, ortExtId, ortId, mitVias, maxVias
	// and one verkehrsmittel[] per mode.
	EndpointDepartures = "/reiseloesung/abfahrten"
	EndpointArrivals   = "/reiseloesung/ankuenfte"

	// suchbegriff, typ, limit
	EndpointStations = "/reiseloesung/orte"

	// lat, long, radius, maxNo
	EndpointNearby = "/reiseloesung/orte/nearby"

	// journeyId, poly
	EndpointTrain = "/reiseloesung/fahrt"
)

// ModesOfTransit lists the verkehrsmittel values sent when a board request
// names no modes.
var ModesOfTransit = []string{
	"ICE",
	"EC_IC",
	"IR",
	"REGIONAL",
	"SBAHN",
	"BUS",
	"SCHIFF",
	"UBAHN",
	"TRAM",
	"ANRUFPFLICHTIG",
}
