package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []State
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			key := strings.TrimSpace(row.Dossier)
			if key == "" {
				continue
			}
			s.byKey[key] = normalizeState(row)
		}
	})
}

func (s *Store) saveFile() {
	s.mu.RLock()
	rows := make([]State, 0, len(s.byKey))
	for _, state := range s.byKey {
		rows = append(rows, normalizeState(state))
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) getFile(dossier string) (State, bool) {
	s.ensureLoadedFile()
	key := strings.TrimSpace(dossier)
	if key == "" {
		return State{}, false
	}
	s.mu.RLock()
	state, ok := s.byKey[key]
	s.mu.RUnlock()
	if !ok {
		return State{}, false
	}
	return normalizeState(state), true
}

func (s *Store) putFile(state State) {
	s.ensureLoadedFile()
	normalized := normalizeState(state)
	if normalized.Dossier == "" {
		return
	}
	s.mu.Lock()
	s.byKey[normalized.Dossier] = normalized
	s.mu.Unlock()
	s.saveFile()
}
