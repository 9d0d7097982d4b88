package round

import (
	"github.com/ByteArena/box2d"

	"github.com/Timmith/ld49/internal/core/event"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
)

// Sensor lines sit at these heights on level 0 and rise one unit per level.
const (
	goalBaseY    = -0.25
	penaltyBaseY = -1.5
	cursorRadius = 0.05
)

type staticBox struct {
	x, y, w, h float64
}

var platform = []staticBox{
	{0, -1, 2, 0.1},
	{-1, -0.9, 0.2, 0.1},
	{1, -0.9, 0.2, 0.1},
}

// buildArena creates the floor, the two sensor lines and the cursor body.
func (m *Machine) buildArena() {
	for _, b := range platform {
		id := m.reg.CreateBody(physics.BodyDef(physics.StaticBody, b.x, b.y, 0), physics.Terrain{Name: "platform"})
		physics.AddBox(m.reg.Body(id), b.w*0.5, b.h*0.5,
			physics.Filter(physics.Environment, physics.Environment, physics.Architecture), false)
	}

	m.penalty = m.createSensor("penalty", penaltyBaseY,
		physics.Filter(physics.Penalty, physics.Architecture))
	m.goal = m.createSensor("goal", goalBaseY,
		physics.Filter(physics.Goal, physics.Architecture, physics.Environment))

	m.cursor = m.reg.CreateBody(physics.BodyDef(physics.KinematicBody, 0, 0, 0), physics.Terrain{Name: "cursor"})
	physics.AddCircle(m.reg.Body(m.cursor), cursorRadius, physics.FilterBits(0, 0), true)
}

func (m *Machine) createSensor(name string, y float64, filter box2d.B2Filter) physics.BodyID {
	id := m.reg.CreateBody(physics.BodyDef(physics.StaticBody, 0, y, 0), physics.Terrain{Name: name})
	physics.AddBox(m.reg.Body(id), 5, 0.05, filter, true)
	return id
}

// ChangeLevel moves the sensor lines to level and, when resetTimer is set,
// restarts the countdown with that level's duration. The countdown snapshot
// of the previous round is dropped.
func (m *Machine) ChangeLevel(level int, resetTimer bool) {
	m.player.CurrentLevel = level
	m.savedBeforeSettling = nil
	offset := float64(level)
	m.reg.Body(m.goal).SetTransform(box2d.MakeB2Vec2(0, goalBaseY+offset), 0)
	m.reg.Body(m.penalty).SetTransform(box2d.MakeB2Vec2(0, penaltyBaseY+offset), 0)

	if resetTimer {
		m.player.MaxTimer = m.formulas.LevelDuration(level)
		m.player.CurrentTimer = m.player.MaxTimer
	}
	event.Emit(m.bus, event.LevelChanged{Level: level})
}

// spawnWave launches one floating piece from every spawn point, raised to the
// current level. Pieces resolve independently.
func (m *Machine) spawnWave() {
	level := m.player.CurrentLevel
	for _, p := range m.spawns.At(level) {
		meshName, colliderName := m.library.Pick(m.rng)
		m.spawner.Create(piece.New(meshName, colliderName, p.X, p.Y, level), m.onPieceReady)
	}
}
