package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptySlot is returned by Load when nothing was saved yet.
var ErrEmptySlot = errors.New("save slot is empty")

// Slot is a single named save file.
type Slot struct {
	path string
}

func NewSlot(path string) *Slot {
	return &Slot{path: path}
}

func (s *Slot) Path() string { return s.path }

// Save replaces the slot's content with snap.
func (s *Slot) Save(snap *Snapshot) error {
	b, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save slot %s: %w", s.path, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("save slot %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save slot %s: %w", s.path, err)
	}
	return nil
}

// Load reads the slot.
func (s *Slot) Load() (*Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrEmptySlot
		}
		return nil, fmt.Errorf("load slot %s: %w", s.path, err)
	}
	return Unmarshal(b)
}
