package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store owns the in-memory collections and their persisted form: one JSON
// document mapping collection name to its record sequence. Reads return deep
// copies; writes are serialized by the store's mutex.
type Store struct {
	mu          sync.RWMutex
	path        string
	autosave    bool
	collections map[string][]Record
}

// New creates a store backed by the given database file. An empty path keeps
// the store purely in-memory. With autosave set, every successful mutation
// flushes the database file before releasing the write lock.
func New(path string, autosave bool) *Store {
	return &Store{
		path:        path,
		autosave:    autosave && path != "",
		collections: make(map[string][]Record),
	}
}

// Load reads the database file into memory. A missing file is not an error;
// the store starts empty.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read database %s: %w", s.path, err)
	}

	collections := make(map[string][]Record)
	if err := json.Unmarshal(data, &collections); err != nil {
		return fmt.Errorf("decode database %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = collections
	return nil
}

// Flush persists the current state to the database file. Flushes take the
// write lock so they serialize with mutations and with each other; two
// concurrent flushes must never interleave writes to the same temp file.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the database file atomically. Callers must hold the write lock.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.collections, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

// ensureCollection returns the named collection, lazily creating an empty one
// on first reference. This is the single instantiation point for the
// permissive auto-create policy: absent collections are never an error.
// Callers must hold the write lock.
func (s *Store) ensureCollection(name string) []Record {
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = []Record{}
	}
	return s.collections[name]
}

// GetCollection returns a deep copy of the named collection's records,
// creating the collection if it does not exist yet.
func (s *Store) GetCollection(name string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.ensureCollection(name)
	out := CopyRecords(records)
	if out == nil {
		out = []Record{}
	}
	return out
}

// GetRecord returns a deep copy of the record whose primary-key field equals
// id, or found=false if the collection has no such record.
func (s *Store) GetRecord(collection, primaryKey string, id any) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.ensureCollection(collection) {
		if KeysEqual(rec[primaryKey], id) {
			return CopyRecord(rec), true
		}
	}
	return nil, false
}

// CollectionNames returns the names of all collections currently held.
func (s *Store) CollectionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	return names
}

// Count returns the number of records in a collection without copying them.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Mutate runs fn with exclusive access to the named collection and replaces
// the collection with fn's result. fn receives the canonical records; it must
// deep-copy anything it retains or inserts from caller-supplied data. When
// autosave is on, the database file is flushed before the lock is released so
// two writers can never interleave a partial write.
func (s *Store) Mutate(collection string, fn func(records []Record) ([]Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.ensureCollection(collection)
	updated, err := fn(records)
	if err != nil {
		return err
	}
	if updated == nil {
		updated = []Record{}
	}
	s.collections[collection] = updated

	if s.autosave {
		return s.save()
	}
	return nil
}

// Replace swaps in a whole new database state. Used by the admin reset path.
func (s *Store) Replace(collections map[string][]Record) {
	if collections == nil {
		collections = make(map[string][]Record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = collections
}

// KeysEqual compares two primary-key values. JSON decoding yields float64 for
// numbers while generated integer IDs may arrive as int, so numeric values are
// compared numerically; everything else by string form.
func KeysEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
