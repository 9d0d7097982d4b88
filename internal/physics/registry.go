package physics

import (
	"errors"

	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/core/ecs"
)

// ErrAlreadyInitialized is returned when a registry is bound to a second world.
var ErrAlreadyInitialized = errors.New("physics: registry already initialized")

// BodyID is a generational handle to a registered body.
type BodyID = ecs.EntityID

// LifecycleListener observes body creation and destruction. Listeners must
// not rely on their order relative to other listeners.
type LifecycleListener interface {
	OnBodyCreated(id BodyID, body *box2d.B2Body)
	OnBodyDestroyed(id BodyID, body *box2d.B2Body)
}

// LifecycleFuncs adapts plain functions to LifecycleListener. Nil fields are
// skipped.
type LifecycleFuncs struct {
	Created   func(BodyID, *box2d.B2Body)
	Destroyed func(BodyID, *box2d.B2Body)
}

func (f LifecycleFuncs) OnBodyCreated(id BodyID, b *box2d.B2Body) {
	if f.Created != nil {
		f.Created(id, b)
	}
}

func (f LifecycleFuncs) OnBodyDestroyed(id BodyID, b *box2d.B2Body) {
	if f.Destroyed != nil {
		f.Destroyed(id, b)
	}
}

// Registry mediates every body creation and destruction in a World so that
// subscribers can react. Game-loop goroutine only.
type Registry struct {
	world     *World
	arena     *ecs.World
	bodies    *ecs.Store[*box2d.B2Body]
	payloads  *ecs.Store[Payload]
	order     []BodyID
	listeners []LifecycleListener
	log       *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	r := &Registry{
		bodies:   ecs.NewStore[*box2d.B2Body](),
		payloads: ecs.NewStore[Payload](),
		log:      log,
	}
	r.arena = ecs.NewWorld(r.bodies, r.payloads)
	return r
}

// Init binds the registry to w. It may be called once.
func (r *Registry) Init(w *World) error {
	if r.world != nil {
		return ErrAlreadyInitialized
	}
	r.world = w
	r.log.Debug("body registry bound to world")
	return nil
}

// World returns the bound world, or nil before Init.
func (r *Registry) World() *World { return r.world }

// CreateBody creates a body from def, records p beside it and notifies every
// listener before returning.
func (r *Registry) CreateBody(def *box2d.B2BodyDef, p Payload) BodyID {
	if r.world == nil {
		panic("physics: CreateBody before Init")
	}
	id := r.arena.CreateEntity()
	def.UserData = id
	body := r.world.createBody(def)
	r.bodies.Set(id, body)
	if p != nil {
		r.payloads.Set(id, p)
	}
	r.order = append(r.order, id)
	for _, l := range r.listeners {
		l.OnBodyCreated(id, body)
	}
	return id
}

// DestroyBody notifies every listener, then removes the body from the world.
// A stale id is a no-op.
func (r *Registry) DestroyBody(id BodyID) {
	body, ok := r.bodies.Get(id)
	if !ok || !r.arena.Alive(id) {
		return
	}
	for _, l := range r.listeners {
		l.OnBodyDestroyed(id, body)
	}
	r.world.destroyBody(body)
	r.arena.Destroy(id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Subscribe registers l and replays every live body to it.
func (r *Registry) Subscribe(l LifecycleListener) {
	r.listeners = append(r.listeners, l)
	for _, id := range append([]BodyID(nil), r.order...) {
		if b, ok := r.bodies.Get(id); ok {
			l.OnBodyCreated(id, b)
		}
	}
}

func (r *Registry) Alive(id BodyID) bool { return r.arena.Alive(id) }

// Body returns the Box2D body for id, or nil when id is stale.
func (r *Registry) Body(id BodyID) *box2d.B2Body {
	b, _ := r.bodies.Get(id)
	return b
}

// Payload returns the payload recorded for id.
func (r *Registry) Payload(id BodyID) Payload {
	p, _ := r.payloads.Get(id)
	return p
}

// IDOf maps a Box2D body back to its handle.
func (r *Registry) IDOf(b *box2d.B2Body) (BodyID, bool) {
	if b == nil {
		return 0, false
	}
	id, ok := b.GetUserData().(BodyID)
	if !ok || !r.arena.Alive(id) {
		return 0, false
	}
	return id, true
}

// PayloadOf is IDOf followed by Payload.
func (r *Registry) PayloadOf(b *box2d.B2Body) (BodyID, Payload, bool) {
	id, ok := r.IDOf(b)
	if !ok {
		return 0, nil, false
	}
	return id, r.Payload(id), true
}

// Each visits live bodies in creation order. fn may destroy bodies.
func (r *Registry) Each(fn func(BodyID, *box2d.B2Body, Payload)) {
	for _, id := range append([]BodyID(nil), r.order...) {
		b, ok := r.bodies.Get(id)
		if !ok {
			continue
		}
		p, _ := r.payloads.Get(id)
		fn(id, b, p)
	}
}

func (r *Registry) Len() int { return len(r.order) }
