package trip

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CityStay records how many nights the traveler spends in one city.
type CityStay struct {
	City   string `json:"city"`
	Nights int    `json:"nights"`
}

// Info is the structured trip record extracted from the trip-info
// documents. Zero values stand in for anything the documents omit.
type Info struct {
	GuestNames           []string   `json:"guest_names"`
	DestinationCountry   string     `json:"destination_country"`
	CitiesToVisit        []string   `json:"cities_to_visit"`
	CityStays            []CityStay `json:"city_stays"`
	TravelStartDate      string     `json:"travel_start_date"`
	TravelEndDate        string     `json:"travel_end_date"`
	NumNights            int        `json:"num_nights"`
	OriginCity           string     `json:"origin_city"`
	OriginAirport        string     `json:"origin_airport"`
	ReturnPoint          string     `json:"return_point"`
	DestinationAirport   string     `json:"destination_airport_hint"`
	ReturnAirport        string     `json:"return_airport_hint"`
	TravelPurpose        string     `json:"travel_purpose"`
	TravelerProfile      string     `json:"traveler_profile"`
}

var airportByCity = map[string]string{
	"hanoi":         "HAN",
	"ho chi minh":   "SGN",
	"da nang":       "DAD",
	"sydney":        "SYD",
	"melbourne":     "MEL",
	"brisbane":      "BNE",
	"perth":         "PER",
	"toronto":       "YYZ",
	"niagara":       "YYZ",
	"vancouver":     "YVR",
	"montreal":      "YUL",
	"calgary":       "YYC",
	"new york":      "JFK",
	"los angeles":   "LAX",
	"san francisco": "SFO",
	"london":        "LHR",
	"paris":         "CDG",
	"singapore":     "SIN",
	"bangkok":       "BKK",
	"tokyo":         "NRT",
	"osaka":         "KIX",
	"seoul":         "ICN",
	"auckland":      "AKL",
}

var airportByCountry = map[string]string{
	"vietnam":        "HAN",
	"australia":      "SYD",
	"canada":         "YYZ",
	"united states":  "JFK",
	"usa":            "JFK",
	"united kingdom": "LHR",
	"uk":             "LHR",
	"france":         "CDG",
	"singapore":      "SIN",
	"thailand":       "BKK",
	"japan":          "NRT",
	"south korea":    "ICN",
	"new zealand":    "AKL",
}

var cityByAirport = map[string]string{
	"HAN": "Hanoi",
	"SGN": "Ho Chi Minh City",
	"DAD": "Da Nang",
	"SYD": "Sydney",
	"MEL": "Melbourne",
	"BNE": "Brisbane",
	"PER": "Perth",
	"YYZ": "Toronto",
	"YVR": "Vancouver",
	"YUL": "Montreal",
	"JFK": "New York",
	"LAX": "Los Angeles",
	"LHR": "London",
	"CDG": "Paris",
	"SIN": "Singapore",
	"BKK": "Bangkok",
	"NRT": "Tokyo",
	"KIX": "Osaka",
	"ICN": "Seoul",
	"AKL": "Auckland",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey lowercases, strips diacritics and collapses everything
// except letters and digits into single spaces.
func NormalizeKey(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(stripped), " "))
}

// PassportName converts a traveler name to the uppercase unaccented form
// printed in passports.
func PassportName(name string) string {
	return strings.ToUpper(NormalizeKey(name))
}

var trailingParen = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// CleanCityName drops a trailing parenthesized annotation, e.g.
// "Toronto (4)" -> "Toronto".
func CleanCityName(city string) string {
	return strings.TrimSpace(trailingParen.ReplaceAllString(city, ""))
}

var cityNights = regexp.MustCompile(`^(.*?)\s*\((\d+)\)\s*$`)

// ParseCityStays reads entries like "Toronto (4)" into city/nights pairs.
// Entries without a night count keep nights at zero.
func ParseCityStays(values []string) []CityStay {
	var stays []CityStay
	for _, raw := range values {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}
		if m := cityNights.FindStringSubmatch(part); m != nil {
			city := CleanCityName(m[1])
			nights := atoi(m[2])
			if city != "" && nights > 0 {
				stays = append(stays, CityStay{City: city, Nights: nights})
			}
			continue
		}
		if city := CleanCityName(part); city != "" {
			stays = append(stays, CityStay{City: city})
		}
	}
	return stays
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// InferAirport maps a free-form city or country to an IATA code, or
// returns fallback when nothing matches.
func InferAirport(location, fallback string) string {
	key := NormalizeKey(location)
	if key == "" {
		return fallback
	}
	for city, code := range airportByCity {
		if strings.Contains(key, city) || strings.Contains(city, key) {
			return code
		}
	}
	for country, code := range airportByCountry {
		if strings.Contains(key, country) || strings.Contains(country, key) {
			return code
		}
	}
	return fallback
}

// AirportCity resolves an IATA code back to its city label.
func AirportCity(code string) string {
	return cityByAirport[strings.ToUpper(strings.TrimSpace(code))]
}

// FormatDMY converts YYYY-MM-DD to DD/MM/YYYY, or "" on parse failure.
func FormatDMY(dateYMD string) string {
	dt, err := time.Parse("2006-01-02", dateYMD)
	if err != nil {
		return ""
	}
	return dt.Format("02/01/2006")
}

// Normalize fills derivable fields: airport codes inferred from the
// itinerary, total nights from the date range, and per-city nights
// distributed from the total when the documents give none.
func (t *Info) Normalize() {
	cleaned := make([]string, 0, len(t.CitiesToVisit))
	for _, c := range t.CitiesToVisit {
		if city := CleanCityName(c); city != "" {
			cleaned = append(cleaned, city)
		}
	}
	stays := make([]CityStay, 0, len(t.CityStays))
	for _, s := range t.CityStays {
		city := CleanCityName(s.City)
		if city == "" {
			continue
		}
		nights := s.Nights
		if nights < 0 {
			nights = 0
		}
		stays = append(stays, CityStay{City: city, Nights: nights})
	}
	if len(stays) == 0 {
		stays = ParseCityStays(cleaned)
	}
	if len(stays) > 0 {
		cleaned = cleaned[:0]
		for _, s := range stays {
			cleaned = append(cleaned, s.City)
		}
	}
	t.CitiesToVisit = cleaned
	t.CityStays = stays

	firstCity, lastCity := "", ""
	if len(cleaned) > 0 {
		firstCity = cleaned[0]
		lastCity = cleaned[len(cleaned)-1]
	}

	t.OriginAirport = firstNonEmpty(
		strings.ToUpper(strings.TrimSpace(t.OriginAirport)),
		InferAirport(t.OriginCity, ""),
		InferAirport(t.ReturnPoint, ""),
	)
	t.DestinationAirport = firstNonEmpty(
		strings.ToUpper(strings.TrimSpace(t.DestinationAirport)),
		InferAirport(firstCity, ""),
		InferAirport(t.DestinationCountry, ""),
	)
	t.ReturnAirport = firstNonEmpty(
		strings.ToUpper(strings.TrimSpace(t.ReturnAirport)),
		InferAirport(lastCity, ""),
		InferAirport(t.ReturnPoint, ""),
		t.OriginAirport,
	)

	if t.NumNights == 0 && t.TravelStartDate != "" && t.TravelEndDate != "" {
		start, errS := time.Parse("2006-01-02", t.TravelStartDate)
		end, errE := time.Parse("2006-01-02", t.TravelEndDate)
		if errS == nil && errE == nil && end.After(start) {
			t.NumNights = int(end.Sub(start).Hours() / 24)
		}
	}

	if len(t.CityStays) > 0 && t.NumNights > 0 {
		known := 0
		for _, s := range t.CityStays {
			known += s.Nights
		}
		if known == 0 {
			n := len(t.CityStays)
			base, rem := t.NumNights/n, t.NumNights%n
			for i := range t.CityStays {
				t.CityStays[i].Nights = base
				if i < rem {
					t.CityStays[i].Nights++
				}
			}
		}
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
