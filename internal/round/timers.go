package round

// Handle identifies a scheduled callback.
type Handle uint64

type timer struct {
	handle Handle
	due    float64
	fn     func()
}

// Timers schedules callbacks against simulation time. Advance fires due
// callbacks in due order, ties in scheduling order. Callbacks may schedule
// or cancel other timers.
type Timers struct {
	now     float64
	next    Handle
	pending []timer
}

func NewTimers() *Timers {
	return &Timers{}
}

// After runs fn once delay seconds have been advanced.
func (t *Timers) After(delay float64, fn func()) Handle {
	t.next++
	t.pending = append(t.pending, timer{handle: t.next, due: t.now + delay, fn: fn})
	return t.next
}

// Cancel drops h. Unknown or fired handles are ignored.
func (t *Timers) Cancel(h Handle) {
	for i, e := range t.pending {
		if e.handle == h {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// CancelAll drops every pending callback.
func (t *Timers) CancelAll() {
	t.pending = nil
}

// Pending returns the number of scheduled callbacks.
func (t *Timers) Pending() int { return len(t.pending) }

// Now returns the accumulated time.
func (t *Timers) Now() float64 { return t.now }

// Advance moves time forward by dt and fires everything that came due.
func (t *Timers) Advance(dt float64) {
	t.now += dt
	for {
		idx := -1
		for i, e := range t.pending {
			if e.due > t.now {
				continue
			}
			if idx < 0 || e.due < t.pending[idx].due {
				idx = i
			}
		}
		if idx < 0 {
			return
		}
		e := t.pending[idx]
		t.pending = append(t.pending[:idx], t.pending[idx+1:]...)
		e.fn()
	}
}
