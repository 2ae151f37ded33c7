package testutil

// Sample JSON responses for API testing

// SampleStationsResponse is a location search for "Frankfurt"
const SampleStationsResponse = `[
	{
		"extId": "8000105",
		"id": "A=1@O=Frankfurt(Main)Hbf@X=8663785@Y=50107145@U=80@L=8000105@",
		"name": "Frankfurt(Main)Hbf",
		"lat": 50.107145,
		"lon": 8.663785,
		"type": "ST",
		"products": ["ICE", "EC_IC", "REGIONAL", "SBAHN"]
	},
	{
		"extId": "8002041",
		"id": "A=1@O=Frankfurt(Main)Süd@X=8686456@Y=50099365@U=80@L=8002041@",
		"name": "Frankfurt(Main)Süd",
		"lat": 50.099365,
		"lon": 8.686456,
		"type": "ST",
		"products": ["ICE", "SBAHN", "TRAM"]
	},
	{
		"id": "A=2@O=Frankfurt am Main - Innenstadt@X=8682127@Y=50110922@",
		"name": "Frankfurt am Main - Innenstadt",
		"type": "ADR"
	}
]`

// SampleNearbyResponse is a nearby search around Frankfurt(Main)Hbf,
// deliberately not ordered by distance
const SampleNearbyResponse = `[
	{
		"extId": "8002041",
		"name": "Frankfurt(Main)Süd",
		"lat": 50.099365,
		"lon": 8.686456,
		"type": "ST"
	},
	{
		"extId": "8000105",
		"name": "Frankfurt(Main)Hbf",
		"lat": 50.107145,
		"lon": 8.663785,
		"type": "ST"
	},
	{
		"extId": "8098105",
		"name": "Frankfurt(Main)Hbf tief",
		"lat": 50.107,
		"lon": 8.6635,
		"type": "ST"
	}
]`

// SampleDepartureResponse is a minimal valid departure board response
const SampleDepartureResponse = `{
	"entries": [
		{
			"journeyId": "1|123456|0|80|1012024",
			"bahnhofsId": "8000105",
			"terminus": "München Hbf",
			"gleis": "7",
			"ezGleis": "8",
			"zeit": "2024-01-01T14:30:00",
			"ezZeit": "2024-01-01T14:32:00",
			"ueber": ["Frankfurt(Main)Hbf", "Mannheim", "Stuttgart"],
			"verkehrmittel": {
				"kurzText": "ICE",
				"mittelText": "ICE 123",
				"langText": "ICE 123 nach München",
				"name": "ICE 123"
			}
		},
		{
			"journeyId": "1|777777|0|80|1012024",
			"bahnhofsId": "8000105",
			"terminus": "Wiesbaden Hbf",
			"gleis": "103",
			"zeit": "2024-01-01T14:40:00",
			"verkehrmittel": {"kurzText": "S", "mittelText": "S 8", "name": "S 8"},
			"meldungen": [{"type": "HALT_AUSFALL", "text": "Halt entfällt"}]
		}
	]
}`

// SampleArrivalResponse is a minimal valid arrival board response
const SampleArrivalResponse = `{
	"entries": [
		{
			"journeyId": "1|654321|0|80|1012024",
			"bahnhofsId": "8000105",
			"terminus": "Hamburg-Altona",
			"gleis": "12",
			"zeit": "2024-01-01T14:30:00",
			"ueber": ["Kassel-Wilhelmshöhe", "Göttingen"],
			"verkehrmittel": {
				"kurzText": "ICE",
				"mittelText": "ICE 456",
				"name": "ICE 456"
			}
		}
	]
}`

// SampleTrainResponse is a minimal valid journey detail response
const SampleTrainResponse = `{
	"reisetag": "2024-01-01",
	"zugName": "ICE 123",
	"halte": [
		{
			"name": "Frankfurt(Main)Hbf",
			"extId": "8000105",
			"id": "A=1@O=Frankfurt(Main)Hbf@X=8663785@Y=50107145@U=80@L=8000105@",
			"gleis": "7",
			"ezGleis": "8",
			"abfahrtsZeitpunkt": "2024-01-01T14:30:00",
			"ezAbfahrtsZeitpunkt": "2024-01-01T14:32:00"
		},
		{
			"name": "Mannheim Hbf",
			"extId": "8000244",
			"id": "A=1@O=Mannheim Hbf@X=8469343@Y=49479557@U=80@L=8000244@",
			"gleis": "5",
			"ankunftsZeitpunkt": "2024-01-01T15:15:00",
			"abfahrtsZeitpunkt": "2024-01-01T15:17:00"
		},
		{
			"name": "München Hbf",
			"extId": "8000261",
			"id": "A=1@O=München Hbf@X=11558339@Y=48140229@U=80@L=8000261@",
			"gleis": "18",
			"ankunftsZeitpunkt": "2024-01-01T17:45:00",
			"ezAnkunftsZeitpunkt": "2024-01-01T17:50:00"
		}
	]
}`

// SampleEmptyBoardResponse is a board without entries
const SampleEmptyBoardResponse = `{"entries": []}`

// SampleErrorResponse is a sample error response
const SampleErrorResponse = `{
	"error": {
		"code": "STATION_NOT_FOUND",
		"message": "Station not found"
	}
}`
