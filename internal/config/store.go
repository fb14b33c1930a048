package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Store owns the live RendererConfig of one source and keeps it in step with
// its persisted Prefs.
type Store struct {
	prefs Prefs

	mu  sync.Mutex // serialises writers
	cur atomic.Pointer[RendererConfig]
}

// LoadStore reads every field from prefs, falling back to defaults for absent
// or unparseable values.
func LoadStore(prefs Prefs) (*Store, error) {
	cfg := DefaultRendererConfig()

	for _, f := range Fields {
		raw, ok, err := prefs.Lookup(f.Key())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Key(), err)
		}
		if !ok {
			continue
		}

		next, err := cfg.With(f, raw)
		if err != nil {
			continue
		}
		cfg = next
	}

	s := &Store{prefs: prefs}
	cfg = cfg.Normalized()
	s.cur.Store(&cfg)

	return s, nil
}

func (s *Store) Snapshot() RendererConfig {
	return *s.cur.Load()
}

// Update sets one field. The value is committed to prefs first and only then
// published, so readers never see a value that failed to persist.
func (s *Store) Update(f Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.cur.Load().With(f, value)
	if err != nil {
		return err
	}

	if err := s.prefs.Commit(map[string]string{f.Key(): next.Value(f)}); err != nil {
		return fmt.Errorf("persist %s: %w", f.Key(), err)
	}

	s.cur.Store(&next)
	return nil
}

// Reset restores every field to its default in memory and in prefs as one
// commit. The returned flag reports whether the live config changed, in which
// case holders of an older snapshot should re-read it.
func (s *Store) Reset() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := DefaultRendererConfig()
	if err := s.prefs.Commit(def.values()); err != nil {
		return false, fmt.Errorf("reset renderer prefs: %w", err)
	}

	changed := *s.cur.Load() != def
	s.cur.Store(&def)

	return changed, nil
}
