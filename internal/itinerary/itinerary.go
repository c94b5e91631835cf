// Package itinerary drafts the day-by-day travel itinerary artifact
// from the saved trip context.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dossierflow/internal/llm"
	"dossierflow/internal/trip"
)

const outputFile = "itinerary.html"

// ErrNoContext is returned when a run is requested before any trip
// context has been saved.
var ErrNoContext = errors.New("no trip context saved")

// ErrNotGenerated is returned by Latest before the first run.
var ErrNotGenerated = errors.New("no itinerary generated yet")

const itineraryPrompt = `You are a travel planner preparing a visa
application itinerary. From the trip details below, draft a realistic
day-by-day itinerary table: date, city, morning/afternoon activity and
accommodation. Keep activities plausible for the stated purpose of
travel. Output a complete standalone HTML document.`

// Service generates and caches the itinerary HTML.
type Service struct {
	client   llm.Client
	contexts *trip.ContextStore
	cacheDir string
}

func NewService(client llm.Client, contexts *trip.ContextStore, cacheDir string) *Service {
	return &Service{client: client, contexts: contexts, cacheDir: cacheDir}
}

// RunInput carries the optional material folded into the drafting
// prompt alongside the saved trip context.
type RunInput struct {
	Extra          string
	SummaryProfile string
	FlightHTML     string
	HotelHTMLs     []string
}

// Run drafts a fresh itinerary from the saved context plus whatever
// supporting material is available, caches it, and returns the HTML.
func (s *Service) Run(ctx context.Context, in RunInput) (string, error) {
	text, _, err := s.contexts.Latest()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContext
	}
	var sb strings.Builder
	sb.WriteString(text)
	if strings.TrimSpace(in.SummaryProfile) != "" {
		sb.WriteString("\n\nApplicant summary:\n")
		sb.WriteString(strings.TrimSpace(in.SummaryProfile))
	}
	if strings.TrimSpace(in.FlightHTML) != "" {
		sb.WriteString("\n\nBooked flight (HTML):\n")
		sb.WriteString(in.FlightHTML)
	}
	for i, hotel := range in.HotelHTMLs {
		if strings.TrimSpace(hotel) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n\nBooked hotel %d (HTML):\n%s", i+1, hotel)
	}
	if strings.TrimSpace(in.Extra) != "" {
		sb.WriteString("\n\nAdditional notes:\n")
		sb.WriteString(strings.TrimSpace(in.Extra))
	}
	html, err := s.client.GenerateText(ctx, itineraryPrompt, sb.String())
	if err != nil {
		return "", fmt.Errorf("draft itinerary: %w", err)
	}
	html = strings.TrimSpace(llm.StripFences(html))
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.cacheDir, outputFile), []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("cache itinerary: %w", err)
	}
	return html, nil
}

// Latest returns the most recently generated itinerary HTML.
func (s *Service) Latest() (string, error) {
	b, err := os.ReadFile(filepath.Join(s.cacheDir, outputFile))
	if os.IsNotExist(err) {
		return "", ErrNotGenerated
	}
	if err != nil {
		return "", fmt.Errorf("read itinerary: %w", err)
	}
	return string(b), nil
}
