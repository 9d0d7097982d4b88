package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/net"
	"github.com/Timmith/ld49/internal/round"
	"github.com/Timmith/ld49/internal/snapshot"
)

// InputSystem accepts and drops feed sessions and applies their commands to
// the round. Phase 0 (Input).
type InputSystem struct {
	netServer  *net.Server
	store      *net.SessionStore
	machine    *round.Machine
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(netServer *net.Server, store *net.SessionStore, machine *round.Machine, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		store:      store,
		machine:    machine,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.store.Add(sess)
			s.log.Debug("feed client joined", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		default:
			goto doneNew
		}
	}
doneNew:

	for {
		select {
		case id := <-s.netServer.DeadSessions():
			if s.store.Get(id) != nil {
				s.store.Remove(id)
				s.log.Debug("feed client left", zap.Uint64("session", id))
			}
		default:
			goto doneDead
		}
	}
doneDead:

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.store.Remove(id)
			continue
		}
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				s.dispatch(sess, data)
			default:
				goto nextSession
			}
		}
	nextSession:
	}
}

func (s *InputSystem) dispatch(sess *net.Session, data []byte) {
	cmd, err := net.DecodeCommand(data)
	if err != nil {
		s.log.Debug("bad command", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	switch cmd.Type {
	case net.CmdCursorStart:
		s.machine.CursorStart(cmd.X, cmd.Y)
	case net.CmdCursorMove:
		s.machine.CursorMove(cmd.X, cmd.Y)
	case net.CmdCursorStop:
		s.machine.CursorStop()
	case net.CmdSkip:
		s.machine.Skip()
	case net.CmdWheel:
		s.machine.Wheel(cmd.Delta)
	case net.CmdSave:
		if err := s.machine.Save(); err != nil {
			s.log.Warn("save failed", zap.Uint64("session", sess.ID), zap.Error(err))
		}
	case net.CmdLoad:
		if err := s.machine.Load(); err != nil {
			if errors.Is(err, snapshot.ErrEmptySlot) {
				s.log.Info("nothing saved yet", zap.Uint64("session", sess.ID))
				return
			}
			s.log.Warn("load failed", zap.Uint64("session", sess.ID), zap.Error(err))
		}
	}
}
