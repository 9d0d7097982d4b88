package system

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ByteArena/box2d"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
	"github.com/Timmith/ld49/internal/core/ecs"
	"github.com/Timmith/ld49/internal/core/event"
	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/data"
	"github.com/Timmith/ld49/internal/leaderboard"
	"github.com/Timmith/ld49/internal/net"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
	"github.com/Timmith/ld49/internal/round"
	"github.com/Timmith/ld49/internal/scene"
)

const tick = time.Second / 60

type squareResolver struct{}

func (squareResolver) Resolve(_ context.Context, req piece.Request) (piece.Resolved, error) {
	return piece.Resolved{
		MeshName: req.MeshName,
		Collider: piece.Collider{
			Points: []box2d.B2Vec2{
				box2d.MakeB2Vec2(-0.4, -0.4), box2d.MakeB2Vec2(0.4, -0.4),
				box2d.MakeB2Vec2(0.4, 0.4), box2d.MakeB2Vec2(-0.4, 0.4),
			},
			Indices: []int{0, 1, 2, 0, 2, 3},
		},
	}, nil
}

type formulas struct{}

func (formulas) LevelDuration(int) float64 { return 10 }
func (formulas) SlideDuration(int) float64 { return 1 }
func (formulas) Score(h float64) int       { return int(h * 100) }

type loop struct {
	runner  *coresys.Runner
	machine *round.Machine
	factory *piece.Factory
	queue   *physics.DestructionQueue
	scene   *scene.Scene
	store   *net.SessionStore
	output  *OutputSystem
	bus     *event.Bus
	updates chan []leaderboard.Leader
	server  *net.Server
}

// newLoop wires the game loop the way the pillars command does, with the
// feed listening on a loopback port.
func newLoop(t *testing.T) *loop {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	log := zap.NewNop()
	cfg := config.Default()
	cfg.Network.BindAddress = "127.0.0.1:0"

	world := physics.NewWorld(0, cfg.Physics.GravityY)
	reg := physics.NewRegistry(log)
	require.NoError(t, reg.Init(world))
	bindings := physics.NewBindings(reg)
	sc := scene.New(log)
	bindings.Subscribe(sc)
	queue := physics.NewDestructionQueue(reg, bindings, log)
	chain := physics.NewContactChain()
	world.SetContactListener(chain)
	factory := piece.NewFactory(ctx, reg, bindings, squareResolver{}, cfg.Assets.MeshScale, time.Second, log)

	lib, err := data.NewPieceLibrary([]data.PieceEntry{{Name: "column1", Colliders: 1}})
	require.NoError(t, err)
	bus := event.NewBus()
	machine := round.New(round.Deps{
		Config:   cfg.Round,
		World:    world,
		Registry: reg,
		Queue:    queue,
		Contacts: chain,
		Spawner:  factory,
		Library:  lib,
		Formulas: formulas{},
		Bus:      bus,
		Log:      log,
	})

	srv, err := net.NewServer(cfg.Network, log)
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	l := &loop{
		runner:  coresys.NewRunner(log),
		machine: machine,
		factory: factory,
		queue:   queue,
		scene:   sc,
		store:   net.NewSessionStore(),
		bus:     bus,
		updates: make(chan []leaderboard.Leader, 1),
		server:  srv,
	}
	l.output = NewOutputSystem(l.store, machine, sc, bus, log)
	stepper := physics.NewStepper(world, cfg.Physics.FixedStep, cfg.Physics.VelocityIterations, cfg.Physics.PositionIterations)

	l.runner.Register(l.output)
	l.runner.Register(NewMeshSyncSystem(bindings))
	l.runner.Register(NewRoundSystem(machine))
	l.runner.Register(NewLeaderboardSystem(l.updates, bus))
	l.runner.Register(NewDestructionSystem(queue))
	l.runner.Register(NewSimulationSystem(stepper, machine))
	l.runner.Register(NewDispatchSystem(bus))
	l.runner.Register(NewInputSystem(srv, l.store, machine, cfg.Network.MaxInPerTick, log))
	l.runner.Register(NewAssetSystem(factory))
	return l
}

func (l *loop) resolve(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.factory.WaitIdle(ctx))
}

func (l *loop) connect(t *testing.T) (*websocket.Conn, <-chan net.Frame) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+l.server.Addr().String()+"/feed", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	frames := make(chan net.Frame, 4096)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f net.Frame
			if json.Unmarshal(msg, &f) == nil {
				select {
				case frames <- f:
				default:
				}
			}
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for l.store.Len() == 0 && time.Now().Before(deadline) {
		l.runner.Tick(tick)
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, 1, l.store.Len())
	return conn, frames
}

func TestFeedStartsRound(t *testing.T) {
	l := newLoop(t)
	l.machine.Start(false)
	l.resolve(t)

	conn, frames := l.connect(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"cursorStart","x":0,"y":5}`)))

	var playing *net.Frame
	sawEvent := false
	deadline := time.Now().Add(5 * time.Second)
	for playing == nil && time.Now().Before(deadline) {
		l.runner.Tick(tick)
		time.Sleep(time.Millisecond)
	drain:
		for {
			select {
			case f := <-frames:
				for _, ev := range f.Events {
					if ev.Type == EvRoundState && ev.Data == "playing" {
						sawEvent = true
					}
				}
				if f.State == "playing" {
					playing = &f
				}
			default:
				break drain
			}
		}
	}
	require.NotNil(t, playing, "no playing frame")
	assert.Equal(t, 5, playing.Health)
	assert.Len(t, playing.Nodes, 5)

	// The state event trails the state by one tick.
	for i := 0; i < 3 && !sawEvent; i++ {
		l.runner.Tick(tick)
		select {
		case f := <-frames:
			for _, ev := range f.Events {
				if ev.Type == EvRoundState && ev.Data == "playing" {
					sawEvent = true
				}
			}
		case <-time.After(time.Second):
		}
	}
	assert.True(t, sawEvent)
}

func TestBadCommandIgnored(t *testing.T) {
	l := newLoop(t)
	l.machine.Start(false)
	l.resolve(t)

	conn, _ := l.connect(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)))
	for i := 0; i < 30; i++ {
		l.runner.Tick(tick)
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, "waitingForInput", l.machine.State().String())
	assert.Equal(t, 1, l.store.Len())
}

func TestSimulationPausedWhileWaiting(t *testing.T) {
	l := newLoop(t)
	l.machine.Start(false)
	l.resolve(t)

	for i := 0; i < 10; i++ {
		l.runner.Tick(tick)
	}
	assert.Zero(t, l.machine.Player().PhysicsTime)

	l.machine.CursorStart(0, 5)
	for i := 0; i < 10; i++ {
		l.runner.Tick(tick)
	}
	assert.InDelta(t, 10*tick.Seconds(), l.machine.Player().PhysicsTime, 1.0/120)
}

func TestOutputCollectsEventsNextTick(t *testing.T) {
	l := newLoop(t)
	event.Emit(l.bus, event.AnnouncementChanged{Text: "hello"})

	f := l.output.Frame()
	assert.Empty(t, f.Events)

	l.bus.Flush()
	f = l.output.Frame()
	require.Len(t, f.Events, 1)
	assert.Equal(t, net.Event{Type: EvAnnouncement, Data: "hello"}, f.Events[0])
}

func TestLeaderboardUpdatesReachFrame(t *testing.T) {
	l := newLoop(t)
	leaders := []leaderboard.Leader{{Place: 1, Score: 420, Summary: "ABC 2.10m"}}
	l.updates <- leaders

	l.runner.TickPhase(coresys.PhaseUpdate, tick)
	l.bus.Flush()
	f := l.output.Frame()
	require.Len(t, f.Events, 1)
	assert.Equal(t, EvLeaderboard, f.Events[0].Type)
	assert.Equal(t, leaders, f.Events[0].Data)
}

func TestRemovedMeshesReported(t *testing.T) {
	l := newLoop(t)
	l.machine.Start(false)
	l.resolve(t)
	l.runner.Tick(tick)

	active := l.machine.Active()
	require.NotEmpty(t, active)
	gone := active[0]
	l.queue.Queue(gone)
	l.runner.TickPhase(coresys.PhaseCleanup, tick)

	f := l.output.Frame()
	assert.Equal(t, []ecs.EntityID{gone}, f.Removed)
	assert.Len(t, f.Nodes, len(active)-1)
	for _, n := range f.Nodes {
		assert.NotEqual(t, gone, n.ID)
	}
}
