// Package statestore persists per-dossier pipeline state: extracted
// file texts, grouped domains, derived summary/risk/letter text, and
// the step completion markers. State lives either in a JSON file next
// to the dossier output or in Postgres when a DSN is configured.
package statestore

import (
	"database/sql"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// FileRecord is one ingested document with its extracted text.
type FileRecord struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Text   string `json:"text"`
}

// State is everything the pipeline knows about one dossier.
type State struct {
	Dossier        string              `json:"dossier"`
	InputDir       string              `json:"input_dir"`
	Files          []FileRecord        `json:"files"`
	Grouped        map[string][]string `json:"grouped"`
	SummaryProfile string              `json:"summary_profile"`
	RiskReport     string              `json:"risk_report"`
	WriterContext  string              `json:"writer_context"`
	Letter         string              `json:"letter"`
	StepsDone      map[string]bool     `json:"steps_done"`
}

func normalizeState(s State) State {
	s.Dossier = strings.TrimSpace(s.Dossier)
	if s.Grouped == nil {
		s.Grouped = map[string][]string{}
	}
	if s.StepsDone == nil {
		s.StepsDone = map[string]bool{}
	}
	return s
}

// Store holds dossier states. With a db it reads and writes Postgres
// rows through an LRU read cache; without one it keeps an in-memory map
// persisted to a JSON file.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byKey    map[string]State

	schemaOnce sync.Once
	schemaErr  error

	readCache *lru.Cache[string, State]
}

// New returns a file-backed store persisted at path.
func New(path string) *Store {
	return &Store{
		path:  path,
		byKey: make(map[string]State),
	}
}

// NewPostgres returns a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, State](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, readCache: cache}, nil
}

// NewFromEnv prefers Postgres when DOSSIER_STORE_PG_DSN is set and falls
// back to the file store at path.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("DOSSIER_STORE_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the state for one dossier key.
func (s *Store) Get(dossier string) (State, bool) {
	if s.db != nil {
		return s.getDB(dossier)
	}
	return s.getFile(dossier)
}

// Put stores the state under its dossier key.
func (s *Store) Put(state State) {
	if s.db != nil {
		s.putDB(state)
		return
	}
	s.putFile(state)
}

// Update applies fn to the current state (zero state if absent) and
// stores the result.
func (s *Store) Update(dossier string, fn func(*State)) State {
	cur, ok := s.Get(dossier)
	if !ok {
		cur = normalizeState(State{Dossier: dossier})
	}
	fn(&cur)
	cur.Dossier = strings.TrimSpace(dossier)
	s.Put(cur)
	return cur
}
