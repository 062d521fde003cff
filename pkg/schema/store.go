package schema

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// SchemaError reports a schema that could not be read, parsed or validated.
// It is fatal for the whole invocation: there is no meaningful per-record
// fallback when the schema itself is broken.
type SchemaError struct {
	Process string
	Err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for process %q: %v", e.Process, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Store resolves process names to schemas. A schema file lives at
// <dir>/<process>.json. Loaded schemas are cached process-wide and treated
// as immutable; Invalidate is the explicit, observable reload trigger.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*Schema
}

func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]*Schema),
	}
}

// Load returns the schema for a process, reading and validating it on first
// use. Safe for concurrent invocations.
func (s *Store) Load(process string) (*Schema, error) {
	s.mu.RLock()
	cached, ok := s.cache[process]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another invocation may have loaded it while we waited for the lock.
	if cached, ok := s.cache[process]; ok {
		return cached, nil
	}

	path := filepath.Join(s.dir, process+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaError{Process: process, Err: err}
	}

	sch, err := Parse(data)
	if err != nil {
		return nil, &SchemaError{Process: process, Err: err}
	}

	s.cache[process] = sch
	log.Printf("[Schema] Loaded schema for process %s (defaults: %d, required: %d, renames: %d, deletes: %d, casts: %d)",
		process, len(sch.Defaults), len(sch.Required), len(sch.Renames), len(sch.Deletes), len(sch.Casts))
	return sch, nil
}

// Invalidate drops the cached schema for a process so the next Load re-reads
// the file.
func (s *Store) Invalidate(process string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, process)
}
