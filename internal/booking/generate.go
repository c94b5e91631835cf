package booking

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"
)

const pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces booking confirmations from the built-in catalog
// without calling a model. Randomness is injected so tests stay
// deterministic.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) bookingID() string {
	return fmt.Sprintf("%d", 1000000000+g.rng.Int63n(9000000000))
}

func (g *Generator) pnr() string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(pnrAlphabet[g.rng.Intn(len(pnrAlphabet))])
	}
	return b.String()
}

type citySplit struct {
	City   string
	Nights int
}

// splitStay decides how many hotels a trip needs and distributes the
// nights across catalog cities. Short trips keep a single hotel, longer
// trips rotate through more cities.
func (g *Generator) splitStay(destination string, numNights int) []citySplit {
	byCity, ok := hotelsByDestination[destination]
	if !ok || len(byCity) == 0 {
		return nil
	}
	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	numHotels := 1
	switch {
	case numNights <= 4:
		numHotels = 1
	case numNights <= 7:
		numHotels = 2
	case numNights <= 10:
		numHotels = 2 + g.rng.Intn(2)
	default:
		numHotels = 3 + g.rng.Intn(2)
	}
	if numHotels > len(cities) {
		numHotels = len(cities)
	}

	g.rng.Shuffle(len(cities), func(i, j int) { cities[i], cities[j] = cities[j], cities[i] })
	selected := cities[:numHotels]

	base, rem := numNights/numHotels, numNights%numHotels
	splits := make([]citySplit, 0, numHotels)
	for i, city := range selected {
		nights := base
		if i < rem {
			nights++
		}
		splits = append(splits, citySplit{City: city, Nights: nights})
	}
	return splits
}

// Hotels builds one confirmation per city stay, chaining check-in dates.
func (g *Generator) Hotels(destination string, numNights int, startDate time.Time, guestName string) []Hotel {
	splits := g.splitStay(destination, numNights)
	if len(splits) == 0 {
		return nil
	}
	byCity := hotelsByDestination[destination]

	var out []Hotel
	cursor := startDate
	for _, split := range splits {
		candidates := byCity[split.City]
		if len(candidates) == 0 {
			continue
		}
		hotel := candidates[g.rng.Intn(len(candidates))]
		checkIn := cursor
		checkOut := cursor.AddDate(0, 0, split.Nights)
		pricePerNight := hotel.PriceMin + g.rng.Intn(hotel.PriceMax-hotel.PriceMin+1)

		out = append(out, Hotel{
			BookingID:          g.bookingID(),
			BookingReference:   g.bookingID(),
			HotelName:          hotel.Name,
			HotelAddress:       hotel.Address,
			HotelPhone:         hotel.Phone,
			StarRating:         hotel.Stars,
			City:               split.City,
			Country:            destination,
			CheckInDate:        formatLong(checkIn),
			CheckOutDate:       formatLong(checkOut),
			CheckInDateShort:   checkIn.Format("02/01/2006"),
			CheckOutDateShort:  checkOut.Format("02/01/2006"),
			NumNights:          split.Nights,
			RoomType:           hotel.RoomTypes[g.rng.Intn(len(hotel.RoomTypes))],
			NumRooms:           1,
			NumAdults:          1,
			NumChildren:        0,
			PricePerNight:      fmt.Sprintf("%d.00", pricePerNight),
			TotalPrice:         fmt.Sprintf("%d.00", pricePerNight*split.Nights),
			Currency:           hotel.Currency,
			GuestName:          guestName,
			Benefits:           "Breakfast included, Free WiFi, Non-smoking room",
			CancellationPolicy: "Free cancellation before " + formatLong(checkIn.AddDate(0, 0, -3)),
		})
		cursor = checkOut
	}
	return out
}

var outboundDepTimes = []string{"07:30", "09:45", "14:20", "18:30", "22:15", "23:30"}
var returnDepTimes = []string{"00:50", "06:30", "10:15", "14:00", "18:45"}

// Flight builds a round-trip confirmation on a catalog route.
func (g *Generator) Flight(originAirport, destination string, departureDate, returnDate time.Time, passengers []string) Flight {
	airline, ok := flightsByRoute["Vietnam_"+destination]
	if !ok {
		airline = flightsByRoute["Vietnam_Australia"]
	}

	var outboundRoute *catalogRoute
	for i := range airline.Routes {
		if airline.Routes[i].From == originAirport {
			outboundRoute = &airline.Routes[i]
			break
		}
	}
	if outboundRoute == nil {
		outboundRoute = &airline.Routes[0]
	}

	var returnRoute *catalogRoute
	for i := range airline.Routes {
		if airline.Routes[i].From == outboundRoute.To && airline.Routes[i].To == originAirport {
			returnRoute = &airline.Routes[i]
			break
		}
	}
	if returnRoute == nil {
		for i := range airline.Routes {
			if airline.Routes[i].To == originAirport {
				returnRoute = &airline.Routes[i]
				break
			}
		}
	}
	if returnRoute == nil {
		returnRoute = outboundRoute
	}

	pax := make([]Passenger, 0, len(passengers))
	for _, name := range passengers {
		pax = append(pax, Passenger{Name: strings.ToUpper(name), Type: "Adult"})
	}

	outbound := Leg{
		FlightNumber:      outboundRoute.FlightNumbers[g.rng.Intn(len(outboundRoute.FlightNumbers))],
		DepartureDate:     departureDate.Format("02/01/2006"),
		DepartureTime:     outboundDepTimes[g.rng.Intn(len(outboundDepTimes))],
		DepartureAirport:  outboundRoute.From,
		DepartureTerminal: outboundRoute.DepartureTerminal,
		ArrivalAirport:    outboundRoute.To,
		ArrivalTerminal:   outboundRoute.ArrivalTerminal,
		Duration:          outboundRoute.Duration,
	}
	inbound := Leg{
		FlightNumber:      returnRoute.FlightNumbers[g.rng.Intn(len(returnRoute.FlightNumbers))],
		DepartureDate:     returnDate.Format("02/01/2006"),
		DepartureTime:     returnDepTimes[g.rng.Intn(len(returnDepTimes))],
		DepartureAirport:  returnRoute.From,
		DepartureTerminal: returnRoute.DepartureTerminal,
		ArrivalAirport:    returnRoute.To,
		ArrivalTerminal:   returnRoute.ArrivalTerminal,
		Duration:          returnRoute.Duration,
	}
	EnforceLegTimes(&outbound)
	EnforceLegTimes(&inbound)

	return Flight{
		Airline:          airline.Airline,
		BookingReference: g.pnr(),
		Passengers:       pax,
		Outbound:         outbound,
		Return:           inbound,
		Baggage:          airline.Baggage,
	}
}

// Generate produces the full booking bundle for one trip.
func (g *Generator) Generate(destination string, numNights int, guestName, originAirport string, startDate time.Time) Data {
	hotels := g.Hotels(destination, numNights, startDate, guestName)
	flight := g.Flight(originAirport, destination, startDate, startDate.AddDate(0, 0, numNights), []string{guestName})
	return Data{Hotels: hotels, Flight: flight}
}

var leadingZeroDay = regexp.MustCompile(` 0(\d)`)

// formatLong renders "March 4, 2026" without a leading zero on the day.
func formatLong(t time.Time) string {
	return leadingZeroDay.ReplaceAllString(t.Format("January 02, 2006"), " $1")
}
