package event

import (
	"reflect"
	"sync"
)

type queued struct {
	typ reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted in tick N are delivered
// in tick N+1, in emission order across all types. Flush is called once per
// tick by the dispatch system.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []queued
	back     []queued
	handlers map[reflect.Type][]reflect.Value
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]reflect.Value)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event for the next Flush.
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, queued{typ: typeOf[T](), ev: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], reflect.ValueOf(fn))
}

// SwapBuffers makes the pending events current and starts an empty pending
// list. Handlers that emit while dispatching queue for the following tick.
func (b *Bus) SwapBuffers() {
	clear(b.front)
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the current events to their handlers.
func (b *Bus) DispatchAll() {
	for _, q := range b.front {
		arg := []reflect.Value{reflect.ValueOf(q.ev)}
		for _, h := range b.handlers[q.typ] {
			h.Call(arg)
		}
	}
}

// Flush swaps and dispatches in one step.
func (b *Bus) Flush() {
	b.SwapBuffers()
	b.DispatchAll()
}

// Pending reports how many events of type T wait for the next Flush.
func Pending[T any](b *Bus) int {
	t := typeOf[T]()
	n := 0
	for _, q := range b.back {
		if q.typ == t {
			n++
		}
	}
	return n
}
