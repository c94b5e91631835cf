package step

import (
	"sync"
)

// LogSentinel is the initial log content of a stage that has not run.
const LogSentinel = "Not run yet."

// State holds the per-stage UI-facing state.
type State struct {
	Stage      Stage    `json:"stage"`
	Done       bool     `json:"done"`
	Log        []string `json:"log"`
	LogVisible bool     `json:"log_visible"`
}

// Store keeps one State per stage for the lifetime of the process.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	states map[Stage]*State
}

func NewStore() *Store {
	s := &Store{states: make(map[Stage]*State, len(Order))}
	for _, st := range Order {
		s.states[st] = &State{Stage: st, Log: []string{LogSentinel}}
	}
	return s
}

// Reset clears the stage's log back to the sentinel without touching Done.
func (s *Store) Reset(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[stage]; ok {
		st.Log = []string{LogSentinel}
	}
}

// Append adds a log line. The first real line replaces the sentinel.
func (s *Store) Append(stage Stage, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[stage]
	if !ok {
		return
	}
	if len(st.Log) == 1 && st.Log[0] == LogSentinel {
		st.Log = []string{line}
		return
	}
	st.Log = append(st.Log, line)
}

// SetDone flips the completion flag.
func (s *Store) SetDone(stage Stage, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[stage]; ok {
		st.Done = done
	}
}

// InvalidateDownstream resets every stage strictly after the given one:
// log back to the sentinel, done back to false.
func (s *Store) InvalidateDownstream(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, later := range After(stage) {
		if st, ok := s.states[later]; ok {
			st.Log = []string{LogSentinel}
			st.Done = false
		}
	}
}

// SetVisible makes exactly one stage's log visible.
func (s *Store) SetVisible(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.states {
		st.LogVisible = st.Stage == stage
	}
}

// Get returns a copy of one stage's state.
func (s *Store) Get(stage Stage) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[stage]
	if !ok {
		return State{}, false
	}
	return copyState(st), true
}

// Snapshot returns the done flags for every stage, for gating checks.
func (s *Store) Snapshot() map[Stage]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Stage]bool, len(s.states))
	for stage, st := range s.states {
		out[stage] = st.Done
	}
	return out
}

// All returns copies of every stage state in registry order.
func (s *Store) All() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]State, 0, len(Order))
	for _, stage := range Order {
		if st, ok := s.states[stage]; ok {
			out = append(out, copyState(st))
		}
	}
	return out
}

// SyncDone resynchronizes local done flags from the external
// list-completed-steps query. Unknown names are ignored.
func (s *Store) SyncDone(statuses []Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, status := range statuses {
		stage, err := Parse(status.Name)
		if err != nil {
			continue
		}
		if st, ok := s.states[stage]; ok {
			st.Done = status.Done
		}
	}
}

func copyState(st *State) State {
	out := *st
	out.Log = append([]string(nil), st.Log...)
	return out
}
