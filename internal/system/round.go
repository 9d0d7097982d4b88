package system

import (
	"time"

	"github.com/Timmith/ld49/internal/core/event"
	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/leaderboard"
	"github.com/Timmith/ld49/internal/round"
)

// RoundSystem advances the round state machine. Phase 4 (Update).
type RoundSystem struct {
	machine *round.Machine
}

func NewRoundSystem(machine *round.Machine) *RoundSystem {
	return &RoundSystem{machine: machine}
}

func (s *RoundSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *RoundSystem) Update(dt time.Duration) {
	s.machine.Update(dt.Seconds())
}

// LeaderboardSystem forwards fresh top lists from the reporter to the HUD.
// Phase 4 (Update).
type LeaderboardSystem struct {
	updates <-chan []leaderboard.Leader
	bus     *event.Bus
}

func NewLeaderboardSystem(updates <-chan []leaderboard.Leader, bus *event.Bus) *LeaderboardSystem {
	return &LeaderboardSystem{updates: updates, bus: bus}
}

func (s *LeaderboardSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *LeaderboardSystem) Update(_ time.Duration) {
	select {
	case leaders := <-s.updates:
		event.Emit(s.bus, event.LeaderboardUpdated{Leaders: leaders})
	default:
	}
}
