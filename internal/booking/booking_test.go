package booking

import (
	"strings"
	"testing"
	"time"

	"dossierflow/internal/trip"
)

func TestGenerator_HotelsChainDates(t *testing.T) {
	g := NewGenerator(42)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	hotels := g.Hotels("Australia", 10, start, "NGUYEN VAN A")

	if len(hotels) == 0 {
		t.Fatalf("expected hotels for Australia")
	}
	total := 0
	for i, h := range hotels {
		total += h.NumNights
		if h.GuestName != "NGUYEN VAN A" {
			t.Fatalf("guest name: got %q", h.GuestName)
		}
		if h.Country != "Australia" {
			t.Fatalf("country: got %q", h.Country)
		}
		if i > 0 && h.CheckInDateShort != hotels[i-1].CheckOutDateShort {
			t.Fatalf("hotel %d check-in %s must equal previous check-out %s",
				i, h.CheckInDateShort, hotels[i-1].CheckOutDateShort)
		}
	}
	if total != 10 {
		t.Fatalf("nights must sum to trip length, got %d", total)
	}
}

func TestGenerator_UnknownDestination(t *testing.T) {
	g := NewGenerator(1)
	if hotels := g.Hotels("Atlantis", 5, time.Now(), "X"); hotels != nil {
		t.Fatalf("unknown destination must yield no hotels, got %v", hotels)
	}
}

func TestGenerator_FlightRoundTrip(t *testing.T) {
	g := NewGenerator(7)
	dep := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	ret := dep.AddDate(0, 0, 10)
	f := g.Flight("HAN", "Australia", dep, ret, []string{"Nguyen Van A"})

	if f.Outbound.DepartureAirport != "HAN" {
		t.Fatalf("outbound departure: got %q", f.Outbound.DepartureAirport)
	}
	if f.Return.ArrivalAirport != "HAN" {
		t.Fatalf("return arrival: got %q", f.Return.ArrivalAirport)
	}
	if len(f.BookingReference) != 6 {
		t.Fatalf("PNR must be 6 chars, got %q", f.BookingReference)
	}
	if f.Passengers[0].Name != "NGUYEN VAN A" {
		t.Fatalf("passenger name: got %q", f.Passengers[0].Name)
	}
	if f.Outbound.ArrivalTime == "" || f.Outbound.ArrivalDate == "" {
		t.Fatalf("arrival must be derived from departure plus duration")
	}
}

func TestCleanAirportCode(t *testing.T) {
	cases := map[string]string{
		"HAN":                             "HAN",
		"HAN (Noi Bai International)":     "HAN",
		"Noi Bai International (HAN)":     "HAN",
		"somewhere near SYD most likely":  "SYD",
		"syd":                             "SYD",
	}
	for in, want := range cases {
		if got := CleanAirportCode(in); got != want {
			t.Fatalf("CleanAirportCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanFlightNumber(t *testing.T) {
	if got := CleanFlightNumber("SQ179 / SQ221"); got != "SQ179" {
		t.Fatalf("got %q", got)
	}
	if got := CleanFlightNumber("VN 787 connecting via SGN"); got != "VN 787" {
		t.Fatalf("got %q", got)
	}
}

func TestEnforceLegTimes(t *testing.T) {
	leg := Leg{
		DepartureDate: "07/07/2026",
		DepartureTime: "10:00",
		Duration:      "16h 15m",
		ArrivalDate:   "07/07/2026",
		ArrivalTime:   "11:00",
	}
	EnforceLegTimes(&leg)
	if leg.ArrivalDate != "08/07/2026" || leg.ArrivalTime != "02:15" {
		t.Fatalf("got %s %s", leg.ArrivalDate, leg.ArrivalTime)
	}
}

func TestApplyTripInfo_EnforcesRouteAndPassengers(t *testing.T) {
	g := NewGenerator(3)
	data := Data{
		Hotels: []Hotel{{HotelName: "Somewhere", CheckInDateShort: "01/07/2026"}},
		Flight: Flight{
			Airline: "Vietnam Airlines (national carrier)",
			Outbound: Leg{
				FlightNumber:  "VN 787 / VN 123",
				DepartureDate: "01/07/2026",
				DepartureTime: "23:30",
				Duration:      "9h 25m",
			},
			Return: Leg{DepartureDate: "11/07/2026", DepartureTime: "10:00", Duration: "9h 45m"},
		},
	}
	info := trip.Info{
		GuestNames:         []string{"Đỗ Thị Thanh Hiền"},
		DestinationCountry: "Australia",
		CitiesToVisit:      []string{"Sydney", "Melbourne"},
		TravelStartDate:    "2026-07-01",
		TravelEndDate:      "2026-07-11",
		OriginCity:         "Hanoi",
	}
	info.Normalize()
	ApplyTripInfo(g, &data, info)

	f := data.Flight
	if f.Airline != "Vietnam Airlines" {
		t.Fatalf("airline: got %q", f.Airline)
	}
	if f.Outbound.DepartureAirport != "HAN" || f.Outbound.ArrivalAirport != "SYD" {
		t.Fatalf("outbound route: %s -> %s", f.Outbound.DepartureAirport, f.Outbound.ArrivalAirport)
	}
	if f.Return.DepartureAirport != "MEL" || f.Return.ArrivalAirport != "HAN" {
		t.Fatalf("return route: %s -> %s", f.Return.DepartureAirport, f.Return.ArrivalAirport)
	}
	if f.Outbound.FlightNumber != "VN 787" {
		t.Fatalf("flight number: got %q", f.Outbound.FlightNumber)
	}
	if f.Passengers[0].Name != "DO THI THANH HIEN" {
		t.Fatalf("passenger: got %q", f.Passengers[0].Name)
	}
	if data.Hotels[0].BookingID == "" || data.Hotels[0].CancellationPolicy == "" {
		t.Fatalf("hotel must get generated id and cancellation policy: %+v", data.Hotels[0])
	}
}

func TestApplyTripInfo_CityStaysDriveHotels(t *testing.T) {
	g := NewGenerator(9)
	data := Data{Hotels: []Hotel{{HotelName: "One Hotel"}}}
	info := trip.Info{
		DestinationCountry: "Canada",
		CityStays:          []trip.CityStay{{City: "Toronto", Nights: 4}, {City: "Vancouver", Nights: 6}},
		TravelStartDate:    "2026-07-01",
	}
	ApplyTripInfo(g, &data, info)

	if len(data.Hotels) != 2 {
		t.Fatalf("expected one hotel per city stay, got %d", len(data.Hotels))
	}
	if data.Hotels[0].City != "Toronto" || data.Hotels[0].NumNights != 4 {
		t.Fatalf("first stay: %+v", data.Hotels[0])
	}
	if data.Hotels[0].CheckInDateShort != "01/07/2026" || data.Hotels[0].CheckOutDateShort != "05/07/2026" {
		t.Fatalf("first stay dates: %+v", data.Hotels[0])
	}
	if data.Hotels[1].CheckInDateShort != "05/07/2026" {
		t.Fatalf("second stay must start where the first ends: %+v", data.Hotels[1])
	}
}

func TestRenderHotel(t *testing.T) {
	h := Hotel{
		BookingID: "1234567890",
		HotelName: "The Langham Melbourne",
		GuestName: "NGUYEN VAN A",
		Currency:  "AUD",
	}
	html, err := RenderHotel(h)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"1234567890", "The Langham Melbourne", "NGUYEN VAN A"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered hotel missing %q", want)
		}
	}
}

func TestRenderFlight(t *testing.T) {
	f := Flight{
		Airline:          "Vietnam Airlines",
		BookingReference: "AB12CD",
		Passengers:       []Passenger{{Name: "NGUYEN VAN A", Type: "Adult"}},
		Outbound:         Leg{FlightNumber: "VN 787", DepartureAirport: "HAN", ArrivalAirport: "SYD"},
		Return:           Leg{FlightNumber: "VN 788", DepartureAirport: "SYD", ArrivalAirport: "HAN"},
	}
	html, err := RenderFlight(f)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"AB12CD", "VN 787", "VN 788", "Passenger information"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered flight missing %q", want)
		}
	}
}

func TestDestinationsSorted(t *testing.T) {
	dests := Destinations()
	if len(dests) == 0 {
		t.Fatalf("catalog must list destinations")
	}
	for i := 1; i < len(dests); i++ {
		if dests[i-1] > dests[i] {
			t.Fatalf("destinations must be sorted: %v", dests)
		}
	}
}
