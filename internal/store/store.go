// Package store persists the saved prompt library.
//
// The whole library lives under a single key as a JSON array, most recent
// first. Every mutation reads the entire list, modifies it and writes it
// back; there are no partial updates and no size bound.
package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

// Key is the storage key holding the library.
const Key = "savedPrompts"

// Repository is the saved prompt library.
type Repository interface {
	// LoadAll returns every record, most recent first.
	// Unreadable stored data yields an empty list, not an error.
	LoadAll(ctx context.Context) ([]prompt.Record, error)

	// SaveAll replaces the stored list.
	SaveAll(ctx context.Context, records []prompt.Record) error

	// Prepend stores r in front of the existing records.
	Prepend(ctx context.Context, r prompt.Record) error

	// Delete removes the record with the given id, keeping the order of the rest.
	// Unknown ids leave the list unchanged.
	Delete(ctx context.Context, id string) error
}

// KV is the backing medium of a Store.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store implements Repository on top of a KV backend.
type Store struct {
	kv     KV
	key    string
	logger *log.Logger

	// mu serializes read-modify-write cycles within this process
	mu sync.Mutex
}

// New creates a Store over kv. A nil logger uses log.Default().
func New(kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{kv: kv, key: Key, logger: logger}
}

// LoadAll implements Repository.
func (s *Store) LoadAll(ctx context.Context) ([]prompt.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// SaveAll implements Repository.
func (s *Store) SaveAll(ctx context.Context, records []prompt.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, records)
}

// Prepend implements Repository.
func (s *Store) Prepend(ctx context.Context, r prompt.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append([]prompt.Record{r}, existing...))
}

// Delete implements Repository.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]prompt.Record, 0, len(existing))
	for _, r := range existing {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return s.save(ctx, kept)
}

func (s *Store) load(ctx context.Context) ([]prompt.Record, error) {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !found || len(data) == 0 {
		return []prompt.Record{}, nil
	}

	var records []prompt.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Printf("Failed to load saved prompts: %v", err)
		return []prompt.Record{}, nil
	}
	if records == nil {
		records = []prompt.Record{}
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, records []prompt.Record) error {
	if records == nil {
		records = []prompt.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, s.key, data)
}

// Find returns the record with the given id.
func Find(ctx context.Context, repo Repository, id string) (prompt.Record, bool, error) {
	records, err := repo.LoadAll(ctx)
	if err != nil {
		return prompt.Record{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return prompt.Record{}, false, nil
}
