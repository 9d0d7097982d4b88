package round

import (
	"math/rand"

	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
	"github.com/Timmith/ld49/internal/core/event"
	"github.com/Timmith/ld49/internal/data"
	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
	"github.com/Timmith/ld49/internal/snapshot"
)

// Formulas are the tunable round numbers, normally backed by Lua.
type Formulas interface {
	LevelDuration(level int) float64
	SlideDuration(level int) float64
	Score(height float64) int
}

// Reporter receives the final score of a round. Implementations must not
// block the game loop.
type Reporter interface {
	Report(score int, height float64, details []byte)
}

// Deps are the collaborators of a Machine. Reporter and Slot may be nil;
// Spawns defaults to the five-point arc.
type Deps struct {
	Config   config.RoundConfig
	World    *physics.World
	Registry *physics.Registry
	Queue    *physics.DestructionQueue
	Contacts *physics.ContactChain
	Spawner  snapshot.Spawner
	Library  *data.PieceLibrary
	Spawns   *data.SpawnTable
	Formulas Formulas
	Reporter Reporter
	Slot     *snapshot.Slot
	Bus      *event.Bus
	Rand     *rand.Rand
	Log      *zap.Logger
}

// Machine runs the round: spawning, countdown, settling, judging and game
// over. Game-loop goroutine only.
type Machine struct {
	cfg      config.RoundConfig
	world    *physics.World
	reg      *physics.Registry
	queue    *physics.DestructionQueue
	spawner  snapshot.Spawner
	library  *data.PieceLibrary
	spawns   *data.SpawnTable
	formulas Formulas
	reporter Reporter
	slot     *snapshot.Slot
	bus      *event.Bus
	rng      *rand.Rand
	log      *zap.Logger

	timers *Timers
	player *game.Player

	state       game.State
	simulating  bool
	interactive bool
	spectator   bool
	started     bool

	active []physics.BodyID
	failed map[physics.BodyID]struct{}

	goal, penalty, cursor physics.BodyID
	drag                  *physics.MouseJoint
	dragBody              physics.BodyID
	wheelCooldown         float64

	savedBeforeSettling *snapshot.Snapshot
}

func New(d Deps) *Machine {
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(1))
	}
	if d.Spawns == nil {
		d.Spawns = data.DefaultSpawnTable()
	}
	m := &Machine{
		cfg:      d.Config,
		world:    d.World,
		reg:      d.Registry,
		queue:    d.Queue,
		spawner:  d.Spawner,
		library:  d.Library,
		spawns:   d.Spawns,
		formulas: d.Formulas,
		reporter: d.Reporter,
		slot:     d.Slot,
		bus:      d.Bus,
		rng:      d.Rand,
		log:      d.Log,
		timers:   NewTimers(),
		player:   game.NewPlayer(d.Config.MaxHealth, 0),
		failed:   make(map[physics.BodyID]struct{}),
	}
	d.Registry.Subscribe(physics.LifecycleFuncs{
		Created:   m.onBodyCreated,
		Destroyed: m.onBodyDestroyed,
	})
	d.Contacts.Add(&scoringListener{reg: d.Registry, onHealth: m.onHealthChange})
	return m
}

// Start builds the arena, spawns the first wave unless spectating and waits
// for input. It may be called once.
func (m *Machine) Start(spectator bool) {
	if m.started {
		return
	}
	m.started = true
	m.spectator = spectator
	m.buildArena()
	m.ChangeLevel(0, true)
	if !spectator {
		m.spawnWave()
	}
	m.setState(game.WaitingForInput)
}

func (m *Machine) State() game.State    { return m.state }
func (m *Machine) Player() *game.Player { return m.player }
func (m *Machine) Simulating() bool     { return m.simulating }
func (m *Machine) Interactive() bool    { return m.interactive }
func (m *Machine) Spectator() bool      { return m.spectator }
func (m *Machine) Timers() *Timers      { return m.timers }

// Active returns a copy of the bodies currently in play.
func (m *Machine) Active() []physics.BodyID {
	return append([]physics.BodyID(nil), m.active...)
}

// Update runs timers and the current state's per-tick rule. It is called
// after the world has stepped and the destruction queue has been flushed.
func (m *Machine) Update(dt float64) {
	if m.wheelCooldown > 0 {
		m.wheelCooldown -= dt
	}
	m.timers.Advance(dt)
	switch m.state {
	case game.WaitingForInput:
		if m.player.Dead() {
			m.setState(game.GameOver)
		}
	case game.Playing:
		m.player.CurrentTimer -= dt
		m.measureHeight()
		if m.player.CurrentTimer < 0 {
			m.player.CurrentTimer = 0
			if !m.spectator {
				m.savedBeforeSettling = snapshot.Serialize(m.state, m.player, m.reg)
			}
			m.setState(game.Settling)
		} else if m.player.Dead() && !m.spectator {
			m.setState(game.GameOver)
		}
	case game.Settling:
		m.measureHeight()
	}
}

// setState runs the entry effects of s. Re-entering the current state is a
// no-op.
func (m *Machine) setState(s game.State) {
	if m.state == s {
		return
	}
	m.enter(s)
}

// enter switches to s and runs its entry effects even when s is the current
// state. Restores use it so the restored state schedules its own timers.
func (m *Machine) enter(s game.State) {
	m.log.Debug("round state", zap.Stringer("from", m.state), zap.Stringer("to", s))
	m.state = s
	event.Emit(m.bus, event.RoundStateChanged{State: s})
	switch s {
	case game.WaitingForInput:
		m.enterWaiting()
	case game.Playing:
		m.enterPlaying()
	case game.Settling:
		m.enterSettling()
	case game.Checking:
		m.enterChecking()
	case game.Transitioning:
		m.enterTransitioning()
	case game.GameOver:
		m.enterGameOver()
	}
}

func (m *Machine) announce(text string) {
	event.Emit(m.bus, event.AnnouncementChanged{Text: text})
}

// setPieceMode switches a piece and tells the HUD.
func (m *Machine) setPieceMode(id physics.BodyID, mode piece.Mode) {
	a, ok := piece.AsArchitecture(m.reg.Payload(id))
	if !ok {
		return
	}
	piece.SetMode(m.reg.Body(id), a, mode)
	event.Emit(m.bus, event.PieceStateChanged{Body: id, State: mode.String()})
}

func (m *Machine) onBodyCreated(id physics.BodyID, _ *box2d.B2Body) {
	if _, ok := piece.AsArchitecture(m.reg.Payload(id)); ok {
		m.active = append(m.active, id)
	}
}

func (m *Machine) onBodyDestroyed(id physics.BodyID, _ *box2d.B2Body) {
	m.removeActive(id)
	if m.drag != nil && m.dragBody == id {
		// Box2D drops joints with their body.
		m.drag = nil
	}
}

func (m *Machine) removeActive(id physics.BodyID) {
	for i, a := range m.active {
		if a == id {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}

// onPieceReady runs once a piece's collider and mesh are in place.
func (m *Machine) onPieceReady(p piece.Piece) {
	event.Emit(m.bus, event.PieceStateChanged{Body: p.Body, State: p.Payload.State.String()})
}

// onHealthChange is the scoring rule: each body costs health once per round
// and always leaves play.
func (m *Machine) onHealthChange(delta int, id physics.BodyID) {
	if _, seen := m.failed[id]; !seen {
		m.failed[id] = struct{}{}
		m.player.ApplyHealthDelta(delta)
		m.log.Info("piece lost",
			zap.Uint64("body", uint64(id)),
			zap.Int("health", m.player.CurrentHealth))
	}
	m.queue.Queue(id)
	m.removeActive(id)
}
