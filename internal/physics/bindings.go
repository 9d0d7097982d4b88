package physics

import (
	"github.com/ByteArena/box2d"

	"github.com/Timmith/ld49/internal/core/ecs"
)

// Transformable is a visual that follows a body.
type Transformable interface {
	SetTransform(x, y, angle float64)
}

// BindingListener observes mesh binds and unbinds, typically a scene that
// adds and removes the mesh.
type BindingListener interface {
	OnBind(id BodyID, mesh Transformable)
	OnUnbind(id BodyID, mesh Transformable)
}

// Bindings pairs bodies with their visuals.
type Bindings struct {
	reg       *Registry
	meshes    *ecs.Store[Transformable]
	listeners []BindingListener
}

func NewBindings(reg *Registry) *Bindings {
	return &Bindings{
		reg:    reg,
		meshes: ecs.NewStore[Transformable](),
	}
}

func (b *Bindings) Subscribe(l BindingListener) {
	b.listeners = append(b.listeners, l)
}

// Bind records mesh for id and notifies listeners. A previous mesh for the
// same body is unbound first.
func (b *Bindings) Bind(id BodyID, mesh Transformable) {
	if _, ok := b.meshes.Get(id); ok {
		b.Unbind(id)
	}
	b.meshes.Set(id, mesh)
	if body := b.reg.Body(id); body != nil {
		syncOne(body, mesh)
	}
	for _, l := range b.listeners {
		l.OnBind(id, mesh)
	}
}

// Unbind notifies listeners, then forgets the mesh and returns it. Unbound
// ids return nil, false and notify nobody.
func (b *Bindings) Unbind(id BodyID) (Transformable, bool) {
	mesh, ok := b.meshes.Get(id)
	if !ok {
		return nil, false
	}
	for _, l := range b.listeners {
		l.OnUnbind(id, mesh)
	}
	b.meshes.Remove(id)
	return mesh, true
}

// Mesh returns the mesh bound to id.
func (b *Bindings) Mesh(id BodyID) (Transformable, bool) {
	return b.meshes.Get(id)
}

func (b *Bindings) Len() int { return b.meshes.Len() }

// SyncTransforms copies every bound body's position and angle into its mesh.
func (b *Bindings) SyncTransforms() {
	ecs.Each2(b.reg.bodies, b.meshes, func(_ BodyID, body *box2d.B2Body, mesh Transformable) {
		syncOne(body, mesh)
	})
}

func syncOne(body *box2d.B2Body, mesh Transformable) {
	p := body.GetPosition()
	mesh.SetTransform(p.X, p.Y, body.GetAngle())
}
