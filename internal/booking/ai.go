package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"dossierflow/internal/llm"
	"dossierflow/internal/scan"
	"dossierflow/internal/trip"
)

const tripExtractorPrompt = `You process visa dossiers. Read the trip information documents below and extract the trip facts EXACTLY as written.

Rules:
- Only use information PRESENT in the documents, never guess
- Traveler names in passport form: UPPERCASE, no diacritics
- Dates as YYYY-MM-DD
- Leave a field empty when the documents do not state it

Fields: guest_names (main applicant first), destination_country (English), cities_to_visit, city_stays (city + nights when stated, e.g. "Toronto (4)" -> {"city":"Toronto","nights":4}), travel_start_date, travel_end_date, num_nights, origin_city, origin_airport (IATA), return_point, destination_airport_hint, return_airport_hint, travel_purpose, traveler_profile (short: occupation, finances).

Return ONLY a JSON object with exactly those fields.`

const bookingExpertPrompt = `You are a senior travel booking expert with deep knowledge of international hotels and airlines.

Select REAL, VERIFIABLE hotels and flights for the trip described in the input.

Hotel rules:
- Real hotels with their real addresses and phone numbers
- Different cities get different hotels with different addresses
- 4-5 star, matched to the traveler profile
- Realistic market prices per night
- Short room type names (at most 3 words)
- First check-in is the arrival date, last check-out is the return date

Flight rules:
- Never invent flight numbers; use real ones for the route
- Outbound: origin airport to the FIRST city visited; return: LAST city visited back to the origin (or the stated return point)
- One flight number per leg, IATA codes only, duration as "Xh YYm", times as "HH:MM", dates as "DD/MM/YYYY"
- arrival = departure + duration

Return ONLY a JSON object: {"hotels": [...], "flight": {"airline","booking_reference","passengers","outbound","return","baggage"}, "reasoning": "..."} using the hotel and leg field names from the input schema.`

// TextExtractor turns one document into plain text. The dossier backend
// wires this to the extraction service; tests supply a plain file
// reader.
type TextExtractor func(ctx context.Context, path string) (string, error)

// ReadTextFile is the fallback extractor for already-plain documents.
func ReadTextFile(ctx context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExtractTripInfo reads only the trip-info documents under inputDir and
// asks the model for a structured trip record. Returns a zero record
// when no trip-info document exists.
func ExtractTripInfo(ctx context.Context, client llm.Client, extract TextExtractor, inputDir string) (trip.Info, error) {
	var info trip.Info
	files, err := scan.List(inputDir)
	if err != nil {
		return info, fmt.Errorf("scan input dir: %w", err)
	}
	if extract == nil {
		extract = ReadTextFile
	}

	var sections []string
	for _, f := range files {
		if !scan.IsTripInfoFile(f.Name) {
			continue
		}
		text, err := extract(ctx, f.Path)
		if err != nil {
			return info, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- FILE: %s ---\n%s", f.Name, text))
	}
	if len(sections) == 0 {
		return info, nil
	}

	raw, err := client.GenerateJSON(ctx, tripExtractorPrompt, strings.Join(sections, "\n\n"))
	if err != nil {
		return info, fmt.Errorf("extract trip info: %w", err)
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return trip.Info{}, fmt.Errorf("parse trip info: %w", err)
	}
	info.Normalize()
	return info, nil
}

// SelectBookings asks the model to pick hotels and flights for the trip
// and reconciles the answer against the trip record.
func SelectBookings(ctx context.Context, client llm.Client, g *Generator, info trip.Info) (Data, error) {
	var data Data
	raw, err := client.GenerateJSON(ctx, bookingExpertPrompt, info)
	if err != nil {
		return data, fmt.Errorf("select bookings: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("parse booking data: %w", err)
	}
	ApplyTripInfo(g, &data, info)
	return data, nil
}
