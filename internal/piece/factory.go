package piece

import (
	"context"
	"time"

	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/scene"
)

// Piece is a body with its bound mesh.
type Piece struct {
	Body    physics.BodyID
	Mesh    *scene.Mesh
	Payload *Architecture
}

type result struct {
	id       physics.BodyID
	resolved Resolved
	err      error
}

type pending struct {
	cancel  context.CancelFunc
	onReady func(Piece)
}

// Factory creates architecture pieces. The body exists as soon as Create
// returns; the collider and mesh follow once the resolver answers. All world
// mutation happens in Create and Drain on the game loop.
type Factory struct {
	ctx       context.Context
	reg       *physics.Registry
	bindings  *physics.Bindings
	resolver  Resolver
	meshScale float64
	timeout   time.Duration
	results   chan result
	pending   map[physics.BodyID]pending
	log       *zap.Logger
}

func NewFactory(ctx context.Context, reg *physics.Registry, bindings *physics.Bindings, resolver Resolver, meshScale float64, timeout time.Duration, log *zap.Logger) *Factory {
	f := &Factory{
		ctx:       ctx,
		reg:       reg,
		bindings:  bindings,
		resolver:  resolver,
		meshScale: meshScale,
		timeout:   timeout,
		results:   make(chan result, 64),
		pending:   make(map[physics.BodyID]pending),
		log:       log,
	}
	reg.Subscribe(f)
	return f
}

// Create makes the body for a and starts resolving its collider. onReady, if
// set, runs on the game loop once the mesh is bound; it never runs when the
// body is destroyed first or resolution fails.
func (f *Factory) Create(a *Architecture, onReady func(Piece)) physics.BodyID {
	kind := physics.DynamicBody
	if a.State == Frozen {
		kind = physics.StaticBody
	}
	def := physics.BodyDef(kind, a.X, a.Y, a.Angle)
	def.LinearVelocity = box2d.MakeB2Vec2(a.VX, a.VY)
	def.AngularVelocity = a.VAngle
	id := f.reg.CreateBody(def, a)
	SetMode(f.reg.Body(id), a, a.State)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(f.ctx, f.timeout)
	} else {
		ctx, cancel = context.WithCancel(f.ctx)
	}
	f.pending[id] = pending{cancel: cancel, onReady: onReady}

	req := Request{MeshName: a.MeshName, ColliderName: a.ColliderName}
	go func() {
		res, err := f.resolver.Resolve(ctx, req)
		select {
		case f.results <- result{id: id, resolved: res, err: err}:
		case <-f.ctx.Done():
		}
	}()
	return id
}

// Pending returns the number of bodies still waiting for their collider.
func (f *Factory) Pending() int { return len(f.pending) }

// Drain finalizes every resolution that has arrived. Non-blocking.
func (f *Factory) Drain() int {
	n := 0
	for {
		select {
		case r := <-f.results:
			f.finalize(r)
			n++
		default:
			return n
		}
	}
}

// WaitIdle blocks until nothing is pending or ctx ends. Game loop only.
func (f *Factory) WaitIdle(ctx context.Context) error {
	f.Drain()
	for len(f.pending) > 0 {
		select {
		case r := <-f.results:
			f.finalize(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *Factory) finalize(r result) {
	p, ok := f.pending[r.id]
	if ok {
		delete(f.pending, r.id)
		p.cancel()
	}
	if !ok || !f.reg.Alive(r.id) {
		f.log.Debug("discarding resolution for destroyed body", zap.Uint64("body", uint64(r.id)))
		return
	}
	a, _ := AsArchitecture(f.reg.Payload(r.id))
	if r.err != nil {
		f.log.Warn("piece resolution failed, body left inert",
			zap.Uint64("body", uint64(r.id)),
			zap.String("mesh", a.MeshName),
			zap.String("collider", a.ColliderName),
			zap.Error(r.err))
		return
	}

	body := f.reg.Body(r.id)
	filter := physics.FilterBits(a.CategoryBits(), a.MaskBits())
	polys := physics.Decompose(r.resolved.Collider.Points, r.resolved.Collider.Indices)
	for _, poly := range polys {
		physics.AddPolygon(body, poly, 1, filter)
	}
	a.outline = polys
	if len(polys) == 0 {
		f.log.Warn("collider has no usable boundary",
			zap.String("mesh", a.MeshName), zap.String("collider", a.ColliderName))
	}

	mesh := scene.NewMesh(r.resolved.MeshName, f.meshScale)
	f.bindings.Bind(r.id, mesh)
	if p.onReady != nil {
		p.onReady(Piece{Body: r.id, Mesh: mesh, Payload: a})
	}
}

func (f *Factory) OnBodyCreated(physics.BodyID, *box2d.B2Body) {}

// OnBodyDestroyed cancels a pending resolution so its result is dropped.
func (f *Factory) OnBodyDestroyed(id physics.BodyID, _ *box2d.B2Body) {
	if p, ok := f.pending[id]; ok {
		p.cancel()
		delete(f.pending, id)
	}
}
