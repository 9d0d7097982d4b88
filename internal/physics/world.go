package physics

import (
	"github.com/ByteArena/box2d"
)

// World owns the Box2D world for a session. Bodies are created and destroyed
// only through Registry; joints and the contact listener go through here.
type World struct {
	b2 *box2d.B2World
}

func NewWorld(gravityX, gravityY float64) *World {
	w := box2d.MakeB2World(box2d.MakeB2Vec2(gravityX, gravityY))
	return &World{b2: &w}
}

// SetContactListener installs the listener called during Step.
func (w *World) SetContactListener(l box2d.B2ContactListenerInterface) {
	w.b2.SetContactListener(l)
}

// Step advances the world once.
func (w *World) Step(dt float64, velocityIterations, positionIterations int) {
	w.b2.Step(dt, velocityIterations, positionIterations)
}

// Locked reports whether the world is inside Step.
func (w *World) Locked() bool {
	return w.b2.IsLocked()
}

// BodyCount returns the number of bodies in the Box2D world.
func (w *World) BodyCount() int {
	return w.b2.GetBodyCount()
}

// MouseJoint is a handle to a drag constraint.
type MouseJoint struct {
	joint *box2d.B2MouseJoint
}

// CreateMouseJoint attaches body to target, anchored on ground.
func (w *World) CreateMouseJoint(ground, body *box2d.B2Body, target box2d.B2Vec2, maxForce, frequencyHz, dampingRatio float64) *MouseJoint {
	def := box2d.MakeB2MouseJointDef()
	def.BodyA = ground
	def.BodyB = body
	def.Target = target
	def.MaxForce = maxForce
	def.FrequencyHz = frequencyHz
	def.DampingRatio = dampingRatio
	j, ok := w.b2.CreateJoint(&def).(*box2d.B2MouseJoint)
	if !ok {
		return nil
	}
	body.SetAwake(true)
	return &MouseJoint{joint: j}
}

func (j *MouseJoint) SetTarget(x, y float64) {
	j.joint.SetTarget(box2d.MakeB2Vec2(x, y))
}

// DestroyJoint removes j. Joints attached to a destroyed body are removed by
// Box2D itself, so callers drop their handle in OnBodyDestroyed instead.
func (w *World) DestroyJoint(j *MouseJoint) {
	if j == nil {
		return
	}
	w.b2.DestroyJoint(j.joint)
}

func (w *World) createBody(def *box2d.B2BodyDef) *box2d.B2Body {
	return w.b2.CreateBody(def)
}

func (w *World) destroyBody(b *box2d.B2Body) {
	w.b2.DestroyBody(b)
}
