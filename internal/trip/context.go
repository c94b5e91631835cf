package trip

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContextForm holds the editable itinerary inputs the UI collects before
// the writer stage runs.
type ContextForm struct {
	Participants    string `json:"participants"`
	TravelPurpose   string `json:"travel_purpose"`
	TravelStartDate string `json:"travel_start_date"`
	TravelEndDate   string `json:"travel_end_date"`
}

func (f ContextForm) empty() bool {
	return strings.TrimSpace(f.Participants) == "" &&
		strings.TrimSpace(f.TravelPurpose) == "" &&
		strings.TrimSpace(f.TravelStartDate) == "" &&
		strings.TrimSpace(f.TravelEndDate) == ""
}

// BuildContextText projects the form into the canonical text block fed to
// the writer prompt. The projection is pure: equal forms produce equal
// text, and an all-empty form produces "".
func BuildContextText(form ContextForm) string {
	if form.empty() {
		return ""
	}
	participants := strings.TrimSpace(form.Participants)
	purpose := strings.TrimSpace(form.TravelPurpose)
	start := strings.TrimSpace(form.TravelStartDate)
	end := strings.TrimSpace(form.TravelEndDate)

	lines := []string{"Core itinerary inputs:"}
	if participants != "" {
		lines = append(lines, "- Participant(s): "+participants)
	}
	switch {
	case start != "" && end != "":
		lines = append(lines, fmt.Sprintf("- Travel period: From %s to %s", start, end))
	case start != "":
		lines = append(lines, "- travel_start_date: "+start)
	case end != "":
		lines = append(lines, "- travel_end_date: "+end)
	}
	if purpose != "" {
		lines = append(lines, "- Purpose of travel: "+purpose)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

const (
	contextTextFile = "itinerary_summary.txt"
	contextMetaFile = "itinerary_summary_meta.json"
)

// ErrMissingContext is returned when a save is attempted with an
// all-empty form.
var ErrMissingContext = fmt.Errorf("itinerary context form has no values")

// ContextStore persists the canonical context text next to the run's
// other derived artifacts so the writer stage can pick it up later.
type ContextStore struct {
	dir string
}

func NewContextStore(cacheDir string) *ContextStore {
	return &ContextStore{dir: cacheDir}
}

type contextMeta struct {
	FormData ContextForm `json:"form_data"`
}

// Save projects and writes the context. Returns the canonical text.
func (s *ContextStore) Save(form ContextForm) (string, error) {
	text := BuildContextText(form)
	if text == "" {
		return "", ErrMissingContext
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create context dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, contextTextFile), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write context text: %w", err)
	}
	meta, err := json.MarshalIndent(contextMeta{FormData: form}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal context meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, contextMetaFile), meta, 0o644); err != nil {
		return "", fmt.Errorf("write context meta: %w", err)
	}
	return text, nil
}

// Latest returns the saved canonical text and the form it came from.
// Missing files degrade to zero values, not errors.
func (s *ContextStore) Latest() (string, ContextForm, error) {
	var form ContextForm
	text := ""
	if b, err := os.ReadFile(filepath.Join(s.dir, contextTextFile)); err == nil {
		text = string(b)
	} else if !os.IsNotExist(err) {
		return "", form, fmt.Errorf("read context text: %w", err)
	}
	if b, err := os.ReadFile(filepath.Join(s.dir, contextMetaFile)); err == nil {
		var meta contextMeta
		if err := json.Unmarshal(b, &meta); err != nil {
			return "", form, fmt.Errorf("parse context meta: %w", err)
		}
		form = meta.FormData
	} else if !os.IsNotExist(err) {
		return "", form, fmt.Errorf("read context meta: %w", err)
	}
	return text, form, nil
}
