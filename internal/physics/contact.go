package physics

import "github.com/ByteArena/box2d"

// ContactListener receives contact events from a ContactChain.
type ContactListener interface {
	BeginContact(contact box2d.B2ContactInterface)
	EndContact(contact box2d.B2ContactInterface)
	PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold)
	PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse)
}

// BaseContactListener implements every method as a no-op; embed it and
// override what you need.
type BaseContactListener struct{}

func (BaseContactListener) BeginContact(box2d.B2ContactInterface)                       {}
func (BaseContactListener) EndContact(box2d.B2ContactInterface)                         {}
func (BaseContactListener) PreSolve(box2d.B2ContactInterface, box2d.B2Manifold)         {}
func (BaseContactListener) PostSolve(box2d.B2ContactInterface, *box2d.B2ContactImpulse) {}

// ContactChain forwards every world contact event to its listeners in
// registration order. It is the only listener installed on the world.
type ContactChain struct {
	listeners []ContactListener
}

func NewContactChain() *ContactChain {
	return &ContactChain{}
}

func (c *ContactChain) Add(l ContactListener) {
	c.listeners = append(c.listeners, l)
}

func (c *ContactChain) BeginContact(contact box2d.B2ContactInterface) {
	for _, l := range c.listeners {
		l.BeginContact(contact)
	}
}

func (c *ContactChain) EndContact(contact box2d.B2ContactInterface) {
	for _, l := range c.listeners {
		l.EndContact(contact)
	}
}

func (c *ContactChain) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
	for _, l := range c.listeners {
		l.PreSolve(contact, oldManifold)
	}
}

func (c *ContactChain) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
	for _, l := range c.listeners {
		l.PostSolve(contact, impulse)
	}
}

// HasCategory reports whether f carries cat in its filter.
func HasCategory(f *box2d.B2Fixture, cat Category) bool {
	if f == nil {
		return false
	}
	return f.GetFilterData().CategoryBits&cat.Bit() != 0
}

// Touching reports whether any contact on body is currently touching.
func Touching(body *box2d.B2Body) bool {
	for edge := body.GetContactList(); edge != nil; edge = edge.Next {
		if edge.Contact != nil && edge.Contact.IsTouching() {
			return true
		}
	}
	return false
}
