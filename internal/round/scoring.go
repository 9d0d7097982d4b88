package round

import (
	"github.com/ByteArena/box2d"

	"github.com/Timmith/ld49/internal/physics"
)

// scoringListener charges health for architecture reaching the penalty line.
// It only reports; the machine decides what a hit costs and defers removal
// to the destruction queue.
type scoringListener struct {
	physics.BaseContactListener
	reg      *physics.Registry
	onHealth func(delta int, id physics.BodyID)
}

func (s *scoringListener) BeginContact(contact box2d.B2ContactInterface) {
	a, b := contact.GetFixtureA(), contact.GetFixtureB()
	s.check(a, b)
	s.check(b, a)
}

func (s *scoringListener) check(arch, line *box2d.B2Fixture) {
	if !physics.HasCategory(arch, physics.Architecture) || !physics.HasCategory(line, physics.Penalty) {
		return
	}
	id, ok := s.reg.IDOf(arch.GetBody())
	if !ok {
		return
	}
	s.onHealth(-1, id)
}
