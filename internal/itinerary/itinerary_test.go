package itinerary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dossierflow/internal/llm"
	"dossierflow/internal/trip"
)

func TestRun_RequiresSavedContext(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(llm.NewFakeClient(), trip.NewContextStore(dir), dir)

	if _, err := svc.Run(context.Background(), RunInput{}); !errors.Is(err, ErrNoContext) {
		t.Fatalf("err = %v, want ErrNoContext", err)
	}
}

func TestRun_GeneratesAndCaches(t *testing.T) {
	dir := t.TempDir()
	fake := llm.NewFakeClient()
	fake.Responses = map[string]string{"travel planner": "<html><body>Day 1: Sydney</body></html>"}
	store := trip.NewContextStore(dir)
	if _, err := store.Save(trip.ContextForm{
		Participants:    "NGUYEN VAN A",
		TravelPurpose:   "tourism",
		TravelStartDate: "2026-07-01",
		TravelEndDate:   "2026-07-11",
	}); err != nil {
		t.Fatalf("save context: %v", err)
	}
	svc := NewService(fake, store, dir)

	html, err := svc.Run(context.Background(), RunInput{Extra: "prefers museums"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(html, "Day 1: Sydney") {
		t.Fatalf("html = %q", html)
	}
	if !strings.Contains(fake.Calls[0].Input, "Core itinerary inputs:") {
		t.Fatalf("input missing canonical context: %q", fake.Calls[0].Input)
	}
	if !strings.Contains(fake.Calls[0].Input, "prefers museums") {
		t.Fatalf("input missing extra notes: %q", fake.Calls[0].Input)
	}

	latest, err := svc.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != html {
		t.Fatalf("latest = %q, want %q", latest, html)
	}
}

func TestRun_StripsMarkdownFences(t *testing.T) {
	dir := t.TempDir()
	fake := llm.NewFakeClient()
	fake.Default = "```html\n<html><body>ok</body></html>\n```"
	store := trip.NewContextStore(dir)
	if _, err := store.Save(trip.ContextForm{Participants: "A"}); err != nil {
		t.Fatalf("save context: %v", err)
	}
	svc := NewService(fake, store, dir)

	html, err := svc.Run(context.Background(), RunInput{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if html != "<html><body>ok</body></html>" {
		t.Fatalf("html = %q", html)
	}
}

func TestLatest_BeforeFirstRun(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(llm.NewFakeClient(), trip.NewContextStore(dir), dir)
	if _, err := svc.Latest(); !errors.Is(err, ErrNotGenerated) {
		t.Fatalf("err = %v, want ErrNotGenerated", err)
	}
}
