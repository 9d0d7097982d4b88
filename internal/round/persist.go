package round

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/piece"
	"github.com/Timmith/ld49/internal/snapshot"
)

// ErrNoSlot is returned by Save and Load when no save slot is configured.
var ErrNoSlot = errors.New("round: no save slot")

// Snapshot captures the round as it stands.
func (m *Machine) Snapshot() *snapshot.Snapshot {
	return snapshot.Serialize(m.state, m.player, m.reg)
}

// Save writes the round to the save slot.
func (m *Machine) Save() error {
	if m.slot == nil {
		return ErrNoSlot
	}
	s := m.Snapshot()
	if err := m.slot.Save(s); err != nil {
		return err
	}
	m.log.Info("round saved",
		zap.String("path", m.slot.Path()),
		zap.Int("bodies", len(s.Bodies)))
	return nil
}

// Load replaces the round with the save slot's contents. The swap happens
// on the next destruction flush.
func (m *Machine) Load() error {
	if m.slot == nil {
		return ErrNoSlot
	}
	s, err := m.slot.Load()
	if err != nil {
		return fmt.Errorf("load round: %w", err)
	}
	m.restore(s)
	m.log.Info("round loading", zap.String("path", m.slot.Path()), zap.Int("bodies", len(s.Bodies)))
	return nil
}

// LoadSpectator replays a recorded round: the camera slides up to the saved
// level, then every piece drops. Settling never judges and game over never
// reports while spectating.
func (m *Machine) LoadSpectator(s *snapshot.Snapshot) {
	m.spectator = true
	m.restore(s)
	m.queue.OnCleared(func() {
		m.player.CurrentTimer = m.formulas.SlideDuration(m.player.CurrentLevel)
		m.timers.After(m.player.CurrentTimer+m.cfg.GameOverDropDelay.Seconds(), func() {
			for _, id := range m.Active() {
				m.setPieceMode(id, piece.Falling)
			}
		})
	})
}

// restore clears the current pieces and rebuilds s once they are gone.
// Pending delayed transitions belong to the old round and are cancelled
// before the restored state is entered. The restored state's entry effects
// always run, even when it matches the current state.
func (m *Machine) restore(s *snapshot.Snapshot) {
	m.releaseDrag()
	for _, id := range m.active {
		m.queue.Queue(id)
	}
	m.active = m.active[:0]
	snapshot.Restore(s, m.queue, m.spawner, m.player, m.onPieceReady, func(st game.State) {
		m.timers.CancelAll()
		clear(m.failed)
		m.ChangeLevel(m.player.CurrentLevel, false)
		m.enter(st)
	})
}
