package booking

import "sort"

// Built-in catalog of verified hotels and flight routes used by the
// non-AI generator. Keyed by destination country.

type catalogHotel struct {
	Name      string
	Address   string
	Phone     string
	Stars     int
	RoomTypes []string
	PriceMin  int
	PriceMax  int
	Currency  string
}

type catalogRoute struct {
	From              string
	To                string
	FlightNumbers     []string
	Duration          string
	DepartureTerminal string
	ArrivalTerminal   string
}

type catalogAirline struct {
	Airline string
	Baggage string
	Routes  []catalogRoute
}

var hotelsByDestination = map[string]map[string][]catalogHotel{
	"Australia": {
		"Sydney": {
			{
				Name:      "Shangri-La Sydney",
				Address:   "176 Cumberland Street, The Rocks, Sydney NSW, Australia, 2000",
				Phone:     "+61 2 9250 6000",
				Stars:     5,
				RoomTypes: []string{"Deluxe King", "Premier Suite"},
				PriceMin:  280, PriceMax: 420, Currency: "AUD",
			},
			{
				Name:      "The Fullerton Hotel Sydney",
				Address:   "1 Martin Place, Sydney NSW, Australia, 2000",
				Phone:     "+61 2 8223 1111",
				Stars:     5,
				RoomTypes: []string{"Superior King", "Deluxe Twin"},
				PriceMin:  250, PriceMax: 380, Currency: "AUD",
			},
		},
		"Melbourne": {
			{
				Name:      "The Langham Melbourne",
				Address:   "1 Southgate Avenue, Southbank, Melbourne CBD, Melbourne, Australia, 3006",
				Phone:     "+61 3 8696 8888",
				Stars:     5,
				RoomTypes: []string{"Superior King", "Grand Suite"},
				PriceMin:  260, PriceMax: 395, Currency: "AUD",
			},
		},
	},
	"Canada": {
		"Toronto": {
			{
				Name:      "Fairmont Royal York",
				Address:   "100 Front Street West, Toronto, Ontario, Canada, M5J 1E3",
				Phone:     "+1 416 368 2511",
				Stars:     4,
				RoomTypes: []string{"Fairmont Room", "Deluxe King"},
				PriceMin:  230, PriceMax: 360, Currency: "CAD",
			},
		},
		"Vancouver": {
			{
				Name:      "Pan Pacific Vancouver",
				Address:   "999 Canada Place, Vancouver, British Columbia, Canada, V6C 3B5",
				Phone:     "+1 604 662 8111",
				Stars:     5,
				RoomTypes: []string{"Deluxe Harbour", "Premier King"},
				PriceMin:  270, PriceMax: 410, Currency: "CAD",
			},
		},
	},
	"Japan": {
		"Tokyo": {
			{
				Name:      "Keio Plaza Hotel Tokyo",
				Address:   "2-2-1 Nishi-Shinjuku, Shinjuku-ku, Tokyo, Japan, 160-8330",
				Phone:     "+81 3 3344 0111",
				Stars:     4,
				RoomTypes: []string{"Superior Twin", "Deluxe King"},
				PriceMin:  22000, PriceMax: 38000, Currency: "JPY",
			},
		},
	},
}

var flightsByRoute = map[string]catalogAirline{
	"Vietnam_Australia": {
		Airline: "Vietnam Airlines",
		Baggage: "Free baggage: 1 piece 23KG",
		Routes: []catalogRoute{
			{From: "HAN", To: "SYD", FlightNumbers: []string{"VN 787"}, Duration: "9h 25m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 1"},
			{From: "SYD", To: "HAN", FlightNumbers: []string{"VN 788"}, Duration: "9h 45m", DepartureTerminal: "Terminal 1", ArrivalTerminal: "Terminal 2"},
			{From: "SGN", To: "SYD", FlightNumbers: []string{"VN 773"}, Duration: "8h 40m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 1"},
			{From: "SYD", To: "SGN", FlightNumbers: []string{"VN 774"}, Duration: "8h 55m", DepartureTerminal: "Terminal 1", ArrivalTerminal: "Terminal 2"},
			{From: "SGN", To: "MEL", FlightNumbers: []string{"VN 781"}, Duration: "8h 20m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 2"},
			{From: "MEL", To: "SGN", FlightNumbers: []string{"VN 782"}, Duration: "8h 35m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 2"},
			{From: "MEL", To: "HAN", FlightNumbers: []string{"VN 778"}, Duration: "9h 10m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 2"},
		},
	},
	"Vietnam_Japan": {
		Airline: "Vietnam Airlines",
		Baggage: "Free baggage: 1 piece 23KG",
		Routes: []catalogRoute{
			{From: "HAN", To: "NRT", FlightNumbers: []string{"VN 311"}, Duration: "5h 45m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 1"},
			{From: "NRT", To: "HAN", FlightNumbers: []string{"VN 312"}, Duration: "6h 10m", DepartureTerminal: "Terminal 1", ArrivalTerminal: "Terminal 2"},
		},
	},
	"Vietnam_South Korea": {
		Airline: "Vietnam Airlines",
		Baggage: "Free baggage: 1 piece 23KG",
		Routes: []catalogRoute{
			{From: "HAN", To: "ICN", FlightNumbers: []string{"VN 416"}, Duration: "4h 20m", DepartureTerminal: "Terminal 2", ArrivalTerminal: "Terminal 1"},
			{From: "ICN", To: "HAN", FlightNumbers: []string{"VN 417"}, Duration: "4h 40m", DepartureTerminal: "Terminal 1", ArrivalTerminal: "Terminal 2"},
		},
	},
}

// Destinations lists the countries the built-in generator can book.
func Destinations() []string {
	out := make([]string, 0, len(hotelsByDestination))
	for dest := range hotelsByDestination {
		out = append(out, dest)
	}
	sort.Strings(out)
	return out
}
