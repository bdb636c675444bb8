// Package templates loads notification templates from a JSON document keyed
// by category or event type. Templates are read once at boot and immutable
// for the process lifetime.
package templates

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Store holds the parsed templates.
type Store struct {
	templates map[string]models.Template
}

// Load reads and parses the templates file. A missing or malformed file is
// an error; the caller treats it as fatal at boot, before any event is
// accepted.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	var parsed map[string]models.Template
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}
	for key, tmpl := range parsed {
		if tmpl.Title == "" && tmpl.Message == "" {
			return nil, fmt.Errorf("template %q has neither title nor message", key)
		}
	}
	return &Store{templates: parsed}, nil
}

// Get returns the template for a category or event type.
func (s *Store) Get(key string) (models.Template, bool) {
	tmpl, ok := s.templates[key]
	return tmpl, ok
}

// Len returns the number of loaded templates.
func (s *Store) Len() int {
	return len(s.templates)
}
