package round

import (
	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/core/event"
	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/physics"
)

// CursorStart handles a press at (x, y) in simulation space. A press while
// waiting starts the round; a press on a piece while interactive grabs it.
func (m *Machine) CursorStart(x, y float64) {
	event.Emit(m.bus, event.CursorStarted{X: x, Y: y})
	if m.state == game.WaitingForInput {
		if m.player.Dead() {
			m.setState(game.GameOver)
			return
		}
		event.Emit(m.bus, event.LevelChanged{Level: m.player.CurrentLevel})
		m.setState(game.Playing)
	}
	m.moveCursor(x, y)
	if !m.interactive {
		return
	}
	id, ok := m.pickPiece(x, y)
	if !ok {
		return
	}
	m.releaseDrag()
	body := m.reg.Body(id)
	m.drag = m.world.CreateMouseJoint(m.reg.Body(m.cursor), body, box2d.MakeB2Vec2(x, y),
		m.cfg.DragMaxForce*body.GetMass(), m.cfg.DragFrequency, m.cfg.DragDamping)
	if m.drag != nil {
		m.dragBody = id
		m.log.Debug("piece grabbed", zap.Uint64("body", uint64(id)))
	}
}

// CursorMove follows the pointer and drags the grabbed piece with it.
func (m *Machine) CursorMove(x, y float64) {
	m.moveCursor(x, y)
	if m.drag != nil {
		m.drag.SetTarget(x, y)
	}
}

// CursorStop lets go of the grabbed piece.
func (m *Machine) CursorStop() {
	m.releaseDrag()
}

// Dragging reports the body under the cursor joint, if any.
func (m *Machine) Dragging() (physics.BodyID, bool) {
	if m.drag == nil {
		return 0, false
	}
	return m.dragBody, true
}

// Skip ends the countdown early.
func (m *Machine) Skip() {
	if m.state == game.Playing {
		m.player.CurrentTimer = 0
	}
}

// Wheel nudges the camera by one step, at most once per throttle window and
// only while the player is looking rather than building.
func (m *Machine) Wheel(deltaY float64) {
	switch m.state {
	case game.WaitingForInput, game.Settling, game.Checking:
	default:
		return
	}
	if m.wheelCooldown > 0 {
		return
	}
	delta := 1
	if deltaY > 0 {
		delta = -1
	}
	m.wheelCooldown = m.cfg.WheelThrottle.Seconds()
	event.Emit(m.bus, event.CameraDelta{Delta: delta})
}

func (m *Machine) moveCursor(x, y float64) {
	m.reg.Body(m.cursor).SetTransform(box2d.MakeB2Vec2(x, y), 0)
}

func (m *Machine) releaseDrag() {
	if m.drag == nil {
		return
	}
	m.world.DestroyJoint(m.drag)
	m.drag = nil
}

// pickPiece finds an architecture piece whose shape contains (x, y).
func (m *Machine) pickPiece(x, y float64) (physics.BodyID, bool) {
	p := box2d.MakeB2Vec2(x, y)
	for _, id := range m.active {
		body := m.reg.Body(id)
		for f := body.GetFixtureList(); f != nil; f = f.GetNext() {
			if physics.HasCategory(f, physics.Architecture) && f.TestPoint(p) {
				return id, true
			}
		}
	}
	return 0, false
}
