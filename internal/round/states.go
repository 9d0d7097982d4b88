package round

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/core/event"
	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
	"github.com/Timmith/ld49/internal/snapshot"
)

func (m *Machine) enterWaiting() {
	event.Emit(m.bus, event.CameraDelta{Delta: 0})
	m.announce("Click to Start!")
	m.simulating = false
	m.interactive = true
}

func (m *Machine) enterPlaying() {
	m.savedBeforeSettling = nil
	m.announce("")
	m.simulating = true
	m.interactive = true
}

func (m *Machine) enterSettling() {
	m.announce("")
	m.interactive = false
	m.simulating = true
	m.releaseDrag()
	for _, id := range m.Active() {
		if a, ok := piece.AsArchitecture(m.reg.Payload(id)); ok && a.Floating() {
			m.setPieceMode(id, piece.Falling)
		}
	}
	m.timers.After(m.cfg.SettleDelay.Seconds(), func() {
		// Replays stay in settling; there is nothing to judge.
		if !m.spectator {
			m.setState(game.Checking)
		}
	})
}

func (m *Machine) enterChecking() {
	m.simulating = true
	won := physics.Touching(m.reg.Body(m.goal)) && !m.player.Dead()
	if !won {
		m.setState(game.GameOver)
		return
	}

	for _, id := range m.active {
		if a, ok := piece.AsArchitecture(m.reg.Payload(id)); ok {
			piece.Promote(m.reg.Body(id), a)
		}
	}
	m.log.Info("level passed", zap.Int("level", m.player.CurrentLevel))
	m.ChangeLevel(m.player.CurrentLevel+1, true)
	m.setState(game.Transitioning)
}

// enterTransitioning freezes the old levels and brings in the next wave after
// the transition delay.
func (m *Machine) enterTransitioning() {
	m.simulating = false
	for _, id := range m.Active() {
		a, ok := piece.AsArchitecture(m.reg.Payload(id))
		if ok && a.Level < m.player.CurrentLevel-m.cfg.FreezeLag {
			m.setPieceMode(id, piece.Frozen)
		}
	}
	m.timers.After(m.cfg.TransitionDelay.Seconds(), func() {
		m.spawnWave()
		m.setState(game.WaitingForInput)
	})
}

func (m *Machine) enterGameOver() {
	if m.spectator {
		return
	}
	m.timers.CancelAll()
	m.releaseDrag()
	m.simulating = false

	height := m.player.CurrentHeight * m.cfg.PhysicalScale
	score := m.formulas.Score(height)
	m.log.Info("game over",
		zap.Int("level", m.player.CurrentLevel),
		zap.Float64("height", height),
		zap.Int("score", score))
	event.Emit(m.bus, event.ScoreSubmitted{Score: score, Summary: fmt.Sprintf("%.2fm", height)})
	if m.reporter != nil {
		m.reporter.Report(score, height, m.replayDetails())
	}

	event.Emit(m.bus, event.CameraDelta{Delta: 0})
	m.timers.After(m.cfg.GameOverDropDelay.Seconds(), func() {
		for _, id := range m.Active() {
			m.setPieceMode(id, piece.Falling)
		}
		m.announce("Game Over!")
		m.simulating = true
	})
	m.timers.After(m.cfg.GameOverClear.Seconds(), func() {
		clear(m.failed)
		for _, id := range m.active {
			m.queue.Queue(id)
		}
		m.active = m.active[:0]
	})
	m.timers.After(m.cfg.GameOverReset.Seconds(), func() {
		m.ChangeLevel(0, true)
		m.spawnWave()
		m.player.CurrentHeight = 0
		m.player.CurrentHealth = m.player.MaxHealth
		m.setState(game.WaitingForInput)
	})
}

// replayDetails encodes the world as it stood when this round's countdown
// ran out. A round lost before that point sends the current world.
func (m *Machine) replayDetails() []byte {
	s := m.savedBeforeSettling
	if s == nil {
		s = snapshot.Serialize(m.state, m.player, m.reg)
	}
	b, err := snapshot.Marshal(s)
	if err != nil {
		m.log.Error("encode replay", zap.Error(err))
		return nil
	}
	return b
}
