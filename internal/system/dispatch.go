package system

import (
	"time"

	"github.com/Timmith/ld49/internal/core/event"
	coresys "github.com/Timmith/ld49/internal/core/system"
)

// DispatchSystem delivers the previous tick's events. Phase 1 (Dispatch).
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *DispatchSystem) Update(_ time.Duration) { s.bus.Flush() }
