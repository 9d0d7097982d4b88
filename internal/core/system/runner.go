package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	ticks   uint64
	overran uint64
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 10),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once. A tick that takes longer than dt is logged;
// the loop does not try to catch up.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	start := time.Now()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
	if took := time.Since(start); dt > 0 && took > dt {
		r.overran++
		r.log.Warn("tick overran", zap.Uint64("tick", r.ticks), zap.Duration("took", took), zap.Duration("budget", dt))
	}
}

// TickPhase runs only the systems of one phase. It does not count as a tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Ticks returns the number of full ticks run and how many overran.
func (r *Runner) Ticks() (total, overran uint64) { return r.ticks, r.overran }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
