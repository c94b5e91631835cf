package booking

// Hotel is one hotel confirmation record.
type Hotel struct {
	BookingID          string `json:"booking_id"`
	BookingReference   string `json:"booking_reference"`
	HotelName          string `json:"hotel_name"`
	HotelAddress       string `json:"hotel_address"`
	HotelPhone         string `json:"hotel_phone"`
	StarRating         int    `json:"star_rating"`
	City               string `json:"city"`
	Country            string `json:"country"`
	CheckInDate        string `json:"check_in_date"`
	CheckOutDate       string `json:"check_out_date"`
	CheckInDateShort   string `json:"check_in_date_short"`
	CheckOutDateShort  string `json:"check_out_date_short"`
	NumNights          int    `json:"num_nights"`
	RoomType           string `json:"room_type"`
	NumRooms           int    `json:"num_rooms"`
	NumAdults          int    `json:"num_adults"`
	NumChildren        int    `json:"num_children"`
	PricePerNight      string `json:"price_per_night"`
	TotalPrice         string `json:"total_price"`
	Currency           string `json:"currency"`
	GuestName          string `json:"guest_name"`
	Benefits           string `json:"benefits"`
	CancellationPolicy string `json:"cancellation_policy"`
}

// Passenger is one traveler on the flight confirmation.
type Passenger struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Leg is one direction of the round trip.
type Leg struct {
	FlightNumber      string `json:"flight_number"`
	DepartureDate     string `json:"departure_date"`
	DepartureTime     string `json:"departure_time"`
	DepartureAirport  string `json:"departure_airport"`
	DepartureCity     string `json:"departure_city"`
	DepartureTerminal string `json:"departure_terminal"`
	ArrivalDate       string `json:"arrival_date"`
	ArrivalTime       string `json:"arrival_time"`
	ArrivalAirport    string `json:"arrival_airport"`
	ArrivalCity       string `json:"arrival_city"`
	ArrivalTerminal   string `json:"arrival_terminal"`
	Duration          string `json:"duration"`
}

// Flight is the round-trip flight confirmation record.
type Flight struct {
	Airline          string      `json:"airline"`
	BookingReference string      `json:"booking_reference"`
	Passengers       []Passenger `json:"passengers"`
	Outbound         Leg         `json:"outbound"`
	Return           Leg         `json:"return"`
	Baggage          string      `json:"baggage"`
}

// Data bundles everything one booking run produces.
type Data struct {
	Hotels    []Hotel `json:"hotels"`
	Flight    Flight  `json:"flight"`
	Reasoning string  `json:"reasoning,omitempty"`
}
