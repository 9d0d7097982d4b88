package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/core/event"
	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/net"
	"github.com/Timmith/ld49/internal/round"
	"github.com/Timmith/ld49/internal/scene"
)

// HUD event names inside a frame.
const (
	EvLevel        = "level"
	EvPieceState   = "pieceState"
	EvCamera       = "camera"
	EvAnnouncement = "announcement"
	EvRoundState   = "roundState"
	EvCursor       = "cursor"
	EvScore        = "score"
	EvLeaderboard  = "leaderboard"
)

// OutputSystem builds one frame per tick and sends it to every session, then
// flushes each session's buffer to its writer goroutine. Phase 6 (Output).
type OutputSystem struct {
	store   *net.SessionStore
	machine *round.Machine
	scene   *scene.Scene
	tick    uint64
	events  []net.Event
	log     *zap.Logger
}

// NewOutputSystem subscribes to the HUD events on bus. They reach the frame
// one tick after they are emitted.
func NewOutputSystem(store *net.SessionStore, machine *round.Machine, sc *scene.Scene, bus *event.Bus, log *zap.Logger) *OutputSystem {
	s := &OutputSystem{
		store:   store,
		machine: machine,
		scene:   sc,
		log:     log,
	}
	event.Subscribe(bus, func(e event.LevelChanged) { s.push(EvLevel, e.Level) })
	event.Subscribe(bus, func(e event.PieceStateChanged) {
		s.push(EvPieceState, map[string]any{"id": e.Body, "state": e.State})
	})
	event.Subscribe(bus, func(e event.CameraDelta) { s.push(EvCamera, e.Delta) })
	event.Subscribe(bus, func(e event.AnnouncementChanged) { s.push(EvAnnouncement, e.Text) })
	event.Subscribe(bus, func(e event.RoundStateChanged) { s.push(EvRoundState, e.State.String()) })
	event.Subscribe(bus, func(e event.CursorStarted) {
		s.push(EvCursor, map[string]float64{"x": e.X, "y": e.Y})
	})
	event.Subscribe(bus, func(e event.ScoreSubmitted) {
		s.push(EvScore, map[string]any{"score": e.Score, "summary": e.Summary})
	})
	event.Subscribe(bus, func(e event.LeaderboardUpdated) { s.push(EvLeaderboard, e.Leaders) })
	return s
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) push(typ string, data any) {
	s.events = append(s.events, net.Event{Type: typ, Data: data})
}

func (s *OutputSystem) Update(_ time.Duration) {
	s.tick++
	frame := s.Frame()
	s.events = s.events[:0]
	if s.store.Len() == 0 {
		return
	}

	data, err := net.EncodeFrame(frame)
	if err != nil {
		s.log.Error("frame dropped", zap.Uint64("tick", frame.Tick), zap.Error(err))
		return
	}
	s.store.ForEach(func(sess *net.Session) {
		sess.Send(data)
		sess.FlushOutput()
	})
}

// Frame assembles the current frame and consumes the scene's removals.
func (s *OutputSystem) Frame() *net.Frame {
	p := s.machine.Player()
	_, removed := s.scene.TakeChanges()
	f := &net.Frame{
		Tick:     s.tick,
		State:    s.machine.State().String(),
		Level:    p.CurrentLevel,
		Health:   p.CurrentHealth,
		Timer:    p.CurrentTimer,
		MaxTimer: p.MaxTimer,
		Height:   p.CurrentHeight,
		Nodes:    s.scene.Nodes(),
		Removed:  removed,
	}
	if len(s.events) > 0 {
		f.Events = append([]net.Event(nil), s.events...)
	}
	return f
}
