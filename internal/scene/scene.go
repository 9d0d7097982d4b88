package scene

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/core/ecs"
	"github.com/Timmith/ld49/internal/physics"
)

// Node is one drawable in a frame.
type Node struct {
	ID    ecs.EntityID `json:"id"`
	Name  string       `json:"name"`
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	Angle float64      `json:"angle"`
}

// Scene holds the meshes currently visible. It listens to mesh bindings.
type Scene struct {
	meshes  map[ecs.EntityID]*Mesh
	added   []ecs.EntityID
	removed []ecs.EntityID
	log     *zap.Logger
}

func New(log *zap.Logger) *Scene {
	return &Scene{
		meshes: make(map[ecs.EntityID]*Mesh),
		log:    log,
	}
}

func (s *Scene) OnBind(id physics.BodyID, t physics.Transformable) {
	m, ok := t.(*Mesh)
	if !ok {
		return
	}
	s.meshes[id] = m
	s.added = append(s.added, id)
	s.log.Debug("mesh added", zap.Uint64("body", uint64(id)), zap.String("mesh", m.Name))
}

func (s *Scene) OnUnbind(id physics.BodyID, _ physics.Transformable) {
	if _, ok := s.meshes[id]; !ok {
		return
	}
	delete(s.meshes, id)
	s.removed = append(s.removed, id)
	s.log.Debug("mesh removed", zap.Uint64("body", uint64(id)))
}

func (s *Scene) Len() int { return len(s.meshes) }

func (s *Scene) Has(id ecs.EntityID) bool {
	_, ok := s.meshes[id]
	return ok
}

// Nodes returns every mesh sorted by id.
func (s *Scene) Nodes() []Node {
	out := make([]Node, 0, len(s.meshes))
	for id, m := range s.meshes {
		out = append(out, Node{
			ID:    id,
			Name:  m.Name,
			X:     m.Position.X(),
			Y:     m.Position.Y(),
			Angle: m.Angle(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TakeChanges returns and resets the ids added and removed since the last call.
func (s *Scene) TakeChanges() (added, removed []ecs.EntityID) {
	added, removed = s.added, s.removed
	s.added, s.removed = nil, nil
	return added, removed
}
