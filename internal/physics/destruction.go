package physics

import "go.uber.org/zap"

// DestructionQueue defers body removal until after the step and contact
// dispatch have finished.
type DestructionQueue struct {
	reg      *Registry
	bindings *Bindings
	queued   []BodyID
	seen     map[BodyID]struct{}
	cleared  []func()
	log      *zap.Logger
}

func NewDestructionQueue(reg *Registry, bindings *Bindings, log *zap.Logger) *DestructionQueue {
	return &DestructionQueue{
		reg:      reg,
		bindings: bindings,
		seen:     make(map[BodyID]struct{}),
		log:      log,
	}
}

// Queue marks id for removal at the next Process. Repeats are dropped.
func (q *DestructionQueue) Queue(id BodyID) {
	if _, dup := q.seen[id]; dup {
		return
	}
	q.seen[id] = struct{}{}
	q.queued = append(q.queued, id)
}

// OnCleared registers a one-shot callback run at the end of the next Process.
func (q *DestructionQueue) OnCleared(fn func()) {
	q.cleared = append(q.cleared, fn)
}

// Pending returns the number of queued bodies.
func (q *DestructionQueue) Pending() int { return len(q.queued) }

// IsQueued reports whether id waits for removal.
func (q *DestructionQueue) IsQueued(id BodyID) bool {
	_, ok := q.seen[id]
	return ok
}

// Process unbinds and destroys every queued body, clears the queue and fires
// the one-shot callbacks. Callbacks fire even when nothing was queued.
func (q *DestructionQueue) Process() {
	if len(q.queued) > 0 {
		batch := q.queued
		q.queued = nil
		q.seen = make(map[BodyID]struct{}, len(batch))
		for _, id := range batch {
			q.bindings.Unbind(id)
			q.reg.DestroyBody(id)
		}
		q.log.Debug("bodies destroyed", zap.Int("count", len(batch)))
	}

	if len(q.cleared) == 0 {
		return
	}
	callbacks := q.cleared
	q.cleared = nil
	for _, fn := range callbacks {
		fn()
	}
}
