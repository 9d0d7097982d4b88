package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnPoint is a launch point relative to the current level's height.
type SpawnPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SpawnTable is the fixed constellation pieces are launched from.
type SpawnTable struct {
	Points []SpawnPoint
}

// LoadSpawnTable loads spawn_points.yaml.
func LoadSpawnTable(path string) (*SpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn points: %w", err)
	}
	var pts []SpawnPoint
	if err := yaml.Unmarshal(raw, &pts); err != nil {
		return nil, fmt.Errorf("parse spawn points: %w", err)
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("spawn points: none defined")
	}
	return &SpawnTable{Points: pts}, nil
}

// DefaultSpawnTable is the five-point arc.
func DefaultSpawnTable() *SpawnTable {
	return &SpawnTable{Points: []SpawnPoint{
		{X: -1.55, Y: -0.35},
		{X: -0.95, Y: 0.65},
		{X: 0, Y: 1},
		{X: 0.95, Y: 0.65},
		{X: 1.55, Y: -0.35},
	}}
}

// Count returns the number of points in a wave.
func (t *SpawnTable) Count() int { return len(t.Points) }

// At returns the points raised by level.
func (t *SpawnTable) At(level int) []SpawnPoint {
	out := make([]SpawnPoint, len(t.Points))
	for i, p := range t.Points {
		out[i] = SpawnPoint{X: p.X, Y: p.Y + float64(level)}
	}
	return out
}
