package data

import (
	"fmt"
	"math/rand"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PieceEntry is one architecture piece that can be spawned.
type PieceEntry struct {
	Name      string `yaml:"name"`
	Colliders int    `yaml:"colliders"` // number of collider variants, collider1..colliderN
	Weight    int    `yaml:"weight"`
}

// PieceLibrary picks random pieces for spawning.
type PieceLibrary struct {
	entries []PieceEntry
	total   int
}

// LoadPieceLibrary loads pieces.yaml.
func LoadPieceLibrary(path string) (*PieceLibrary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read piece library: %w", err)
	}
	var entries []PieceEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse piece library: %w", err)
	}
	return NewPieceLibrary(entries)
}

// NewPieceLibrary validates entries. A zero weight counts as 1.
func NewPieceLibrary(entries []PieceEntry) (*PieceLibrary, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("piece library is empty")
	}
	l := &PieceLibrary{entries: make([]PieceEntry, len(entries))}
	copy(l.entries, entries)
	for i := range l.entries {
		e := &l.entries[i]
		if e.Name == "" || e.Colliders < 1 {
			return nil, fmt.Errorf("piece %d: name and at least one collider required", i)
		}
		if e.Weight <= 0 {
			e.Weight = 1
		}
		l.total += e.Weight
	}
	sort.SliceStable(l.entries, func(i, j int) bool { return l.entries[i].Name < l.entries[j].Name })
	return l, nil
}

// Pick returns a random mesh name and one of its collider names.
func (l *PieceLibrary) Pick(rng *rand.Rand) (meshName, colliderName string) {
	n := rng.Intn(l.total)
	for _, e := range l.entries {
		if n < e.Weight {
			return e.Name, ColliderName(rng.Intn(e.Colliders) + 1)
		}
		n -= e.Weight
	}
	e := l.entries[len(l.entries)-1]
	return e.Name, ColliderName(1)
}

// ColliderName formats the n-th collider variant name.
func ColliderName(n int) string {
	return fmt.Sprintf("collider%d", n)
}

// Count returns the number of pieces loaded.
func (l *PieceLibrary) Count() int {
	return len(l.entries)
}
