package statestore

import (
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	s := New(path)

	s.Put(State{
		Dossier:        "output/letter.txt",
		InputDir:       "input",
		SummaryProfile: "profile",
		StepsDone:      map[string]bool{"ingest": true},
	})

	// A fresh store must read the persisted file.
	reloaded := New(path)
	got, ok := reloaded.Get("output/letter.txt")
	if !ok {
		t.Fatalf("state not found after reload")
	}
	if got.SummaryProfile != "profile" || !got.StepsDone["ingest"] {
		t.Fatalf("got %+v", got)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "states.json"))
	if _, ok := s.Get("nope"); ok {
		t.Fatalf("missing dossier must not be found")
	}
	if _, ok := s.Get(""); ok {
		t.Fatalf("empty key must not be found")
	}
}

func TestFileStore_Update(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "states.json"))

	state := s.Update("d", func(st *State) {
		st.Letter = "Dear officer"
		st.StepsDone["writer"] = true
	})
	if state.Letter != "Dear officer" {
		t.Fatalf("got %+v", state)
	}

	got, ok := s.Get("d")
	if !ok || !got.StepsDone["writer"] {
		t.Fatalf("update must persist: %+v", got)
	}
}

func TestNormalizeState_InitializesMaps(t *testing.T) {
	n := normalizeState(State{Dossier: " d "})
	if n.Dossier != "d" {
		t.Fatalf("dossier must be trimmed, got %q", n.Dossier)
	}
	if n.Grouped == nil || n.StepsDone == nil {
		t.Fatalf("maps must be initialized")
	}
}
