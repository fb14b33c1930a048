package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Prefs is the flat key/value storage behind a Store. Commit must apply all
// given values or none of them.
type Prefs interface {
	Lookup(key string) (string, bool, error)
	Commit(values map[string]string) error
}

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenPrefs opens the per-source prefs for the given backend under SourcesDir.
func OpenPrefs(backend, source string) (Prefs, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = "default"
	}

	switch strings.ToLower(backend) {
	case "", BackendYAML:
		if err := ensureDirs(); err != nil {
			return nil, err
		}
		return NewYAMLPrefs(filepath.Join(SourcesDir(), source+".yaml")), nil
	case BackendSQLite:
		if err := ensureDirs(); err != nil {
			return nil, err
		}
		return OpenSQLitePrefs(filepath.Join(SourcesDir(), source+".db"))
	case BackendMemory:
		return NewMemoryPrefs(nil), nil
	default:
		return nil, fmt.Errorf("unknown prefs backend %q", backend)
	}
}

type MemoryPrefs struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryPrefs(initial map[string]string) *MemoryPrefs {
	m := make(map[string]string, len(initial))
	for k, v := range initial {
		m[k] = v
	}

	return &MemoryPrefs{m: m}
}

func (p *MemoryPrefs) Lookup(key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.m[key]
	return v, ok, nil
}

func (p *MemoryPrefs) Commit(values map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, v := range values {
		p.m[k] = v
	}

	return nil
}

// YAMLPrefs keeps one source's prefs in a flat YAML mapping. Each commit
// rewrites the file through a temp file and a rename.
type YAMLPrefs struct {
	path string
	mu   sync.Mutex
}

func NewYAMLPrefs(path string) *YAMLPrefs {
	return &YAMLPrefs{path: path}
}

func (p *YAMLPrefs) Path() string { return p.path }

func (p *YAMLPrefs) read() (map[string]string, error) {
	b, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	m := map[string]string{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.path, err)
	}

	return m, nil
}

func (p *YAMLPrefs) Lookup(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, err := p.read()
	if err != nil {
		return "", false, err
	}

	v, ok := m[key]
	return v, ok, nil
}

func (p *YAMLPrefs) Commit(values map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, err := p.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		m[k] = v
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), p.path)
}
