package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dossierflow/internal/trip"
)

var (
	iataAtStart  = regexp.MustCompile(`^([A-Z]{3})\s`)
	iataInParens = regexp.MustCompile(`\(([A-Z]{3})\)`)
	iataAnywhere = regexp.MustCompile(`\b([A-Z]{3})\b`)
	durationHM   = regexp.MustCompile(`(\d+)h\s*(\d+)`)
	durationH    = regexp.MustCompile(`(\d+)\s*h`)
	clockHHMM    = regexp.MustCompile(`(\d{2}:\d{2})`)
)

// CleanAirportCode reduces model output like "Noi Bai (HAN)" or
// "HAN (Noi Bai International)" to the bare IATA code.
func CleanAirportCode(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return ""
	}
	if len(val) <= 3 {
		return strings.ToUpper(val)
	}
	if m := iataAtStart.FindStringSubmatch(val); m != nil {
		return m[1]
	}
	if m := iataInParens.FindStringSubmatch(val); m != nil {
		return m[1]
	}
	if m := iataAnywhere.FindStringSubmatch(val); m != nil {
		return m[1]
	}
	return strings.ToUpper(val)[:3]
}

// CleanDuration normalizes a flight duration to "Xh YYm".
func CleanDuration(val string) string {
	val = strings.TrimSpace(val)
	if val == "" || (len(val) <= 10 && !strings.Contains(val, "(")) {
		return val
	}
	if m := durationHM.FindStringSubmatch(val); m != nil {
		return m[1] + "h " + m[2] + "m"
	}
	return val
}

// CleanFlightNumber keeps only the first number of compound values like
// "SQ179 / SQ221".
func CleanFlightNumber(val string) string {
	if i := strings.Index(val, "/"); i >= 0 {
		val = val[:i]
	}
	if i := strings.Index(strings.ToLower(val), "connecting"); i >= 0 {
		val = val[:i]
	}
	return strings.TrimSpace(val)
}

// ParseDurationMinutes reads "9h 45m" or "9h" into minutes. Returns
// false when no duration is recognizable.
func ParseDurationMinutes(val string) (int, bool) {
	lower := strings.ToLower(val)
	if m := durationHM.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return h*60 + min, true
	}
	if m := durationH.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h * 60, true
	}
	return 0, false
}

// EnforceLegTimes recomputes the arrival date and time from the
// departure plus the leg duration so the confirmation stays internally
// consistent.
func EnforceLegTimes(leg *Leg) {
	if leg.DepartureDate == "" || leg.DepartureTime == "" || leg.Duration == "" {
		return
	}
	minutes, ok := ParseDurationMinutes(leg.Duration)
	if !ok {
		return
	}
	dep, err := time.Parse("02/01/2006 15:04", leg.DepartureDate+" "+leg.DepartureTime)
	if err != nil {
		return
	}
	arr := dep.Add(time.Duration(minutes) * time.Minute)
	leg.ArrivalDate = arr.Format("02/01/2006")
	leg.ArrivalTime = arr.Format("15:04")
}

func sanitizeLeg(leg *Leg) {
	leg.DepartureAirport = CleanAirportCode(leg.DepartureAirport)
	leg.ArrivalAirport = CleanAirportCode(leg.ArrivalAirport)
	leg.Duration = CleanDuration(leg.Duration)
	leg.FlightNumber = CleanFlightNumber(leg.FlightNumber)
	if i := strings.Index(leg.DepartureTerminal, "("); i >= 0 {
		leg.DepartureTerminal = strings.TrimSpace(leg.DepartureTerminal[:i])
	}
	if i := strings.Index(leg.ArrivalTerminal, "("); i >= 0 {
		leg.ArrivalTerminal = strings.TrimSpace(leg.ArrivalTerminal[:i])
	}
	if m := clockHHMM.FindStringSubmatch(leg.DepartureTime); m != nil {
		leg.DepartureTime = m[1]
	}
	if m := clockHHMM.FindStringSubmatch(leg.ArrivalTime); m != nil {
		leg.ArrivalTime = m[1]
	}
	EnforceLegTimes(leg)
}

// ApplyTripInfo reconciles a model-selected booking bundle with the
// extracted trip record: routes and dates come from the documents,
// passenger names are forced to passport form, hotels follow the
// per-city stay plan, and missing references get generated.
func ApplyTripInfo(g *Generator, data *Data, info trip.Info) {
	for i := range data.Hotels {
		h := &data.Hotels[i]
		if h.BookingID == "" {
			h.BookingID = g.bookingID()
		}
		if h.BookingReference == "" {
			h.BookingReference = g.bookingID()
		}
		if h.CancellationPolicy == "" {
			if checkIn, err := time.Parse("02/01/2006", h.CheckInDateShort); err == nil {
				h.CancellationPolicy = "Free cancellation before " + formatLong(checkIn.AddDate(0, 0, -3))
			} else {
				h.CancellationPolicy = "Free cancellation up to 3 days before check-in"
			}
		}
	}

	if len(info.CityStays) > 0 && len(data.Hotels) > 0 {
		var cursor *time.Time
		if start, err := time.Parse("2006-01-02", info.TravelStartDate); err == nil {
			cursor = &start
		}
		adjusted := make([]Hotel, 0, len(info.CityStays))
		for i, stay := range info.CityStays {
			h := data.Hotels[i%len(data.Hotels)]
			if stay.City != "" {
				h.City = stay.City
			}
			if info.DestinationCountry != "" {
				h.Country = info.DestinationCountry
			}
			if stay.Nights > 0 {
				h.NumNights = stay.Nights
				if cursor != nil {
					checkOut := cursor.AddDate(0, 0, stay.Nights)
					h.CheckInDate = formatLong(*cursor)
					h.CheckInDateShort = cursor.Format("02/01/2006")
					h.CheckOutDate = formatLong(checkOut)
					h.CheckOutDateShort = checkOut.Format("02/01/2006")
					cursor = &checkOut
				}
			}
			adjusted = append(adjusted, h)
		}
		data.Hotels = adjusted
	}

	flight := &data.Flight
	if flight.BookingReference == "" {
		flight.BookingReference = g.pnr()
	}
	if i := strings.Index(flight.Airline, "("); i >= 0 {
		flight.Airline = strings.TrimSpace(flight.Airline[:i])
	}
	if len(info.GuestNames) > 0 {
		pax := make([]Passenger, 0, len(info.GuestNames))
		for _, name := range info.GuestNames {
			if strings.TrimSpace(name) == "" {
				continue
			}
			pax = append(pax, Passenger{Name: trip.PassportName(name), Type: "Adult"})
		}
		if len(pax) > 0 {
			flight.Passengers = pax
		}
	}

	firstCity, lastCity := "", ""
	if len(info.CitiesToVisit) > 0 {
		firstCity = info.CitiesToVisit[0]
		lastCity = info.CitiesToVisit[len(info.CitiesToVisit)-1]
	}

	origin := strings.ToUpper(strings.TrimSpace(info.OriginAirport))
	destination := firstNonEmpty(
		strings.ToUpper(strings.TrimSpace(info.DestinationAirport)),
		trip.InferAirport(firstCity, ""),
		trip.InferAirport(info.DestinationCountry, ""),
	)
	returnDeparture := firstNonEmpty(trip.InferAirport(lastCity, ""), destination)
	returnArrival := firstNonEmpty(
		strings.ToUpper(strings.TrimSpace(info.ReturnAirport)),
		trip.InferAirport(info.ReturnPoint, ""),
		origin,
	)

	if origin != "" {
		flight.Outbound.DepartureAirport = origin
	}
	if destination != "" {
		flight.Outbound.ArrivalAirport = destination
	}
	if returnDeparture != "" {
		flight.Return.DepartureAirport = returnDeparture
	}
	if returnArrival != "" {
		flight.Return.ArrivalAirport = returnArrival
	}

	flight.Outbound.DepartureCity = firstNonEmpty(strings.TrimSpace(info.OriginCity), trip.AirportCity(flight.Outbound.DepartureAirport))
	flight.Outbound.ArrivalCity = firstNonEmpty(trip.CleanCityName(firstCity), info.DestinationCountry, trip.AirportCity(flight.Outbound.ArrivalAirport))
	flight.Return.DepartureCity = firstNonEmpty(trip.CleanCityName(lastCity), info.DestinationCountry, trip.AirportCity(flight.Return.DepartureAirport))
	flight.Return.ArrivalCity = firstNonEmpty(strings.TrimSpace(info.ReturnPoint), strings.TrimSpace(info.OriginCity), trip.AirportCity(flight.Return.ArrivalAirport))

	if d := trip.FormatDMY(info.TravelStartDate); d != "" {
		flight.Outbound.DepartureDate = d
	}
	if d := trip.FormatDMY(info.TravelEndDate); d != "" {
		flight.Return.DepartureDate = d
	}

	sanitizeLeg(&flight.Outbound)
	sanitizeLeg(&flight.Return)

	if len(flight.Baggage) > 60 {
		flight.Baggage = "Free baggage: 1 piece 23KG"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
