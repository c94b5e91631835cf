package booking

import (
	"fmt"
	"html/template"
	"strings"
)

const hotelTemplateHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Booking Confirmation {{.BookingID}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; color: #222; margin: 40px; }
h1 { font-size: 20px; }
h2 { font-size: 15px; margin-top: 24px; }
table { border-collapse: collapse; width: 100%; }
td { padding: 4px 8px; vertical-align: top; }
td.label { width: 220px; color: #555; }
.total { font-weight: bold; font-size: 16px; }
</style>
</head>
<body>
<h1>Booking Confirmation &mdash; ID {{.BookingID}}</h1>
<p>Booking reference: {{.BookingReference}}</p>
<h2>{{.HotelName}} {{if .StarRating}}({{.StarRating}}-star){{end}}</h2>
<p>{{.HotelAddress}}<br>{{.HotelPhone}}</p>
<table>
<tr><td class="label">Guest name</td><td>{{.GuestName}}</td></tr>
<tr><td class="label">Check-in</td><td>{{.CheckInDate}}</td></tr>
<tr><td class="label">Check-out</td><td>{{.CheckOutDate}}</td></tr>
<tr><td class="label">Length of stay</td><td>{{.NumNights}} night(s)</td></tr>
<tr><td class="label">Room</td><td>{{.NumRooms}} x {{.RoomType}}</td></tr>
<tr><td class="label">Guests</td><td>{{.NumAdults}} adult(s){{if .NumChildren}}, {{.NumChildren}} child(ren){{end}}</td></tr>
<tr><td class="label">Benefits</td><td>{{.Benefits}}</td></tr>
<tr><td class="label">Price per night</td><td>{{.Currency}} {{.PricePerNight}}</td></tr>
<tr><td class="label">Total price</td><td class="total">{{.Currency}} {{.TotalPrice}}</td></tr>
<tr><td class="label">Cancellation</td><td>{{.CancellationPolicy}}</td></tr>
</table>
</body>
</html>
`

const flightTemplateHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Flight Itinerary {{.BookingReference}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; color: #222; margin: 40px; }
h1 { font-size: 20px; }
h2 { font-size: 15px; margin-top: 24px; border-bottom: 1px solid #ccc; padding-bottom: 4px; }
table { border-collapse: collapse; width: 100%; }
td { padding: 4px 8px; vertical-align: top; }
td.label { width: 220px; color: #555; }
</style>
</head>
<body>
<h1>{{.Airline}} &mdash; Booking reference {{.BookingReference}}</h1>
<h2>Route 1</h2>
<table>
<tr><td class="label">Flight</td><td>{{.Outbound.FlightNumber}}</td></tr>
<tr><td class="label">Departure</td><td>{{.Outbound.DepartureCity}} ({{.Outbound.DepartureAirport}}) {{.Outbound.DepartureDate}} {{.Outbound.DepartureTime}}{{if .Outbound.DepartureTerminal}}, {{.Outbound.DepartureTerminal}}{{end}}</td></tr>
<tr><td class="label">Arrival</td><td>{{.Outbound.ArrivalCity}} ({{.Outbound.ArrivalAirport}}) {{.Outbound.ArrivalDate}} {{.Outbound.ArrivalTime}}{{if .Outbound.ArrivalTerminal}}, {{.Outbound.ArrivalTerminal}}{{end}}</td></tr>
<tr><td class="label">Duration</td><td>{{.Outbound.Duration}}</td></tr>
</table>
<h2>Route 2</h2>
<table>
<tr><td class="label">Flight</td><td>{{.Return.FlightNumber}}</td></tr>
<tr><td class="label">Departure</td><td>{{.Return.DepartureCity}} ({{.Return.DepartureAirport}}) {{.Return.DepartureDate}} {{.Return.DepartureTime}}{{if .Return.DepartureTerminal}}, {{.Return.DepartureTerminal}}{{end}}</td></tr>
<tr><td class="label">Arrival</td><td>{{.Return.ArrivalCity}} ({{.Return.ArrivalAirport}}) {{.Return.ArrivalDate}} {{.Return.ArrivalTime}}{{if .Return.ArrivalTerminal}}, {{.Return.ArrivalTerminal}}{{end}}</td></tr>
<tr><td class="label">Duration</td><td>{{.Return.Duration}}</td></tr>
</table>
<h2>Passenger information</h2>
<table>
{{range .Passengers}}<tr><td class="label">{{.Type}}</td><td>{{.Name}}</td></tr>
{{end}}</table>
<p>{{.Baggage}}</p>
</body>
</html>
`

var (
	hotelTemplate  = template.Must(template.New("hotel").Parse(hotelTemplateHTML))
	flightTemplate = template.Must(template.New("flight").Parse(flightTemplateHTML))
)

// RenderHotel renders one hotel confirmation document.
func RenderHotel(h Hotel) (string, error) {
	var b strings.Builder
	if err := hotelTemplate.Execute(&b, h); err != nil {
		return "", fmt.Errorf("render hotel confirmation: %w", err)
	}
	return b.String(), nil
}

// RenderFlight renders the round-trip flight confirmation document.
func RenderFlight(f Flight) (string, error) {
	var b strings.Builder
	if err := flightTemplate.Execute(&b, f); err != nil {
		return "", fmt.Errorf("render flight confirmation: %w", err)
	}
	return b.String(), nil
}
