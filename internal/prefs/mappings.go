// Package prefs remembers column mappings the user confirmed, keyed by
// normalized header text.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const mappingsFile = "mappings.json"

// MappingStore is a JSON file of header -> field choices.
type MappingStore struct {
	Path    string
	Normalize func(string) string

	mu sync.Mutex
}

// DefaultPath is mappings.json under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "contactimport", mappingsFile), nil
}

// Load returns the remembered choices. A missing file is empty.
func (s *MappingStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *MappingStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	out := map[string]string{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remember merges header[i] -> mapping[i] into the file. Blank headers are
// ignored.
func (s *MappingStore) Remember(header, mapping []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	known, err := s.load()
	if err != nil {
		return err
	}
	for i, h := range header {
		if i >= len(mapping) {
			break
		}
		key := h
		if s.Normalize != nil {
			key = s.Normalize(h)
		}
		if key == "" {
			continue
		}
		known[key] = mapping[i]
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(known, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}
