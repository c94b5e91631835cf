package trip

import (
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hà Nội", "ha noi"},
		{"THÔNG TIN", "thong tin"},
		{"New-York / USA", "new york usa"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPassportName(t *testing.T) {
	if got := PassportName("Đỗ Thị Thanh Hiền"); got != "DO THI THANH HIEN" {
		t.Fatalf("got %q", got)
	}
}

func TestParseCityStays(t *testing.T) {
	stays := ParseCityStays([]string{"Toronto (4)", "Niagara (2)", "Vancouver"})
	want := []CityStay{{City: "Toronto", Nights: 4}, {City: "Niagara", Nights: 2}, {City: "Vancouver"}}
	if len(stays) != len(want) {
		t.Fatalf("got %v want %v", stays, want)
	}
	for i := range want {
		if stays[i] != want[i] {
			t.Fatalf("stay %d: got %v want %v", i, stays[i], want[i])
		}
	}
}

func TestInferAirport(t *testing.T) {
	if got := InferAirport("Sydney", ""); got != "SYD" {
		t.Fatalf("city: got %q", got)
	}
	if got := InferAirport("Việt Nam", ""); got != "HAN" {
		t.Fatalf("country with diacritics: got %q", got)
	}
	if got := InferAirport("Atlantis", "HAN"); got != "HAN" {
		t.Fatalf("fallback: got %q", got)
	}
}

func TestInfoNormalize_AirportsAndNights(t *testing.T) {
	info := Info{
		DestinationCountry: "Canada",
		CitiesToVisit:      []string{"Toronto (4)", "Vancouver (4)"},
		TravelStartDate:    "2026-07-01",
		TravelEndDate:      "2026-07-11",
		OriginCity:         "Hanoi",
	}
	info.Normalize()

	if info.OriginAirport != "HAN" {
		t.Fatalf("origin airport: got %q", info.OriginAirport)
	}
	if info.DestinationAirport != "YYZ" {
		t.Fatalf("destination airport: got %q", info.DestinationAirport)
	}
	if info.ReturnAirport != "YVR" {
		t.Fatalf("return airport: got %q", info.ReturnAirport)
	}
	if info.NumNights != 10 {
		t.Fatalf("num nights: got %d", info.NumNights)
	}
	if len(info.CityStays) != 2 || info.CityStays[0] != (CityStay{City: "Toronto", Nights: 4}) {
		t.Fatalf("city stays: got %v", info.CityStays)
	}
	if info.CitiesToVisit[0] != "Toronto" || info.CitiesToVisit[1] != "Vancouver" {
		t.Fatalf("cities: got %v", info.CitiesToVisit)
	}
}

func TestInfoNormalize_DistributesNights(t *testing.T) {
	info := Info{
		CityStays: []CityStay{{City: "Sydney"}, {City: "Melbourne"}, {City: "Brisbane"}},
		NumNights: 10,
	}
	info.Normalize()

	total := 0
	for _, s := range info.CityStays {
		total += s.Nights
	}
	if total != 10 {
		t.Fatalf("distributed nights must sum to total: %v", info.CityStays)
	}
	if info.CityStays[0].Nights != 4 || info.CityStays[1].Nights != 3 || info.CityStays[2].Nights != 3 {
		t.Fatalf("remainder goes to leading cities: %v", info.CityStays)
	}
}

func TestInfoNormalize_KeepsExplicitNights(t *testing.T) {
	info := Info{
		CityStays: []CityStay{{City: "Sydney", Nights: 7}, {City: "Melbourne", Nights: 3}},
		NumNights: 12,
	}
	info.Normalize()
	if info.CityStays[0].Nights != 7 || info.CityStays[1].Nights != 3 {
		t.Fatalf("explicit nights must be preserved: %v", info.CityStays)
	}
}

func TestFormatDMY(t *testing.T) {
	if got := FormatDMY("2026-03-11"); got != "11/03/2026" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDMY("garbage"); got != "" {
		t.Fatalf("got %q", got)
	}
}
