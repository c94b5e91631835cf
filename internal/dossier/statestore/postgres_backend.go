package statestore

import (
	"encoding/json"
	"strings"
)

func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS dossier_states (
  dossier TEXT PRIMARY KEY,
  state JSONB NOT NULL DEFAULT '{}'::jsonb,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *Store) getDB(dossier string) (State, bool) {
	if err := s.ensureSchema(); err != nil {
		return State{}, false
	}
	key := strings.TrimSpace(dossier)
	if key == "" {
		return State{}, false
	}
	if cached, ok := s.readCache.Get(key); ok {
		return cached, true
	}

	var raw []byte
	row := s.db.QueryRow(`SELECT state FROM dossier_states WHERE dossier = $1`, key)
	if err := row.Scan(&raw); err != nil {
		return State{}, false
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, false
	}
	state.Dossier = key
	state = normalizeState(state)
	s.readCache.Add(key, state)
	return state, true
}

func (s *Store) putDB(state State) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	n := normalizeState(state)
	if n.Dossier == "" {
		return
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	_, err = s.db.Exec(`
INSERT INTO dossier_states (dossier, state, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (dossier)
DO UPDATE SET state=EXCLUDED.state, updated_at=NOW()`, n.Dossier, raw)
	if err != nil {
		return
	}
	s.readCache.Add(n.Dossier, n)
}
