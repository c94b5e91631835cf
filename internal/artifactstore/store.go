// Package artifactstore persists generated dossier artifacts (letters,
// itineraries, booking confirmations, combined exports) keyed by
// dossier and artifact name.
package artifactstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("artifact not found")

// Store defines operations for persisting dossier artifacts.
type Store interface {
	Put(ctx context.Context, dossier, name string, content []byte) error
	Get(ctx context.Context, dossier, name string) ([]byte, error)
	List(ctx context.Context, dossier string) ([]string, error)
}

// URLProvider is implemented by stores that can mint a short-lived
// download link without proxying the content themselves.
type URLProvider interface {
	GetURL(ctx context.Context, dossier, name string) (string, error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func artifactKey(dossier, name string) (string, error) {
	dossier = strings.TrimSpace(dossier)
	name = strings.TrimSpace(name)
	if dossier == "" {
		return "", fmt.Errorf("dossier is required")
	}
	if name == "" {
		return "", fmt.Errorf("artifact name is required")
	}
	return dossier + "/" + strings.TrimLeft(name, "/"), nil
}

func (s *MemoryStore) Put(_ context.Context, dossier, name string, content []byte) error {
	key, err := artifactKey(dossier, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, dossier, name string) ([]byte, error) {
	key, err := artifactKey(dossier, name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, dossier string) ([]string, error) {
	dossier = strings.TrimSpace(dossier)
	if dossier == "" {
		return nil, fmt.Errorf("dossier is required")
	}
	prefix := dossier + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 16)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			out = append(out, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}
