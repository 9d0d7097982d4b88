package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ByteArena/box2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
)

type boxResolver struct{}

func (boxResolver) Resolve(_ context.Context, req piece.Request) (piece.Resolved, error) {
	return piece.Resolved{
		MeshName: req.MeshName,
		Collider: piece.Collider{
			Points: []box2d.B2Vec2{
				box2d.MakeB2Vec2(-0.1, -0.3), box2d.MakeB2Vec2(0.1, -0.3),
				box2d.MakeB2Vec2(0.1, 0.3), box2d.MakeB2Vec2(-0.1, 0.3),
			},
			Indices: []int{0, 1, 2, 0, 2, 3},
		},
	}, nil
}

type world struct {
	reg     *physics.Registry
	queue   *physics.DestructionQueue
	factory *piece.Factory
	stepper *physics.Stepper
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w := physics.NewWorld(0, -9.8)
	reg := physics.NewRegistry(zap.NewNop())
	require.NoError(t, reg.Init(w))
	b := physics.NewBindings(reg)
	return &world{
		reg:     reg,
		queue:   physics.NewDestructionQueue(reg, b, zap.NewNop()),
		factory: piece.NewFactory(ctx, reg, b, boxResolver{}, 0.5, time.Second, zap.NewNop()),
		stepper: physics.NewStepper(w, 1.0/120, 5, 2),
	}
}

func (w *world) idle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.factory.WaitIdle(ctx))
}

func TestSerializeSkipsTerrainAndCapturesMotion(t *testing.T) {
	w := newWorld(t)
	w.reg.CreateBody(physics.BodyDef(physics.StaticBody, 0, -1, 0), physics.Terrain{Name: "floor"})

	a := piece.New("column1", "collider1", 0.5, 1, 0)
	a.State = piece.Falling
	id := w.factory.Create(a, nil)
	w.idle(t)

	var tm float64
	w.stepper.Advance(&tm, 0.25)

	player := game.NewPlayer(5, 10)
	snap := Serialize(game.Playing, player, w.reg)
	require.Len(t, snap.Bodies, 1)
	got := snap.Bodies[0]
	body := w.reg.Body(id)
	assert.InDelta(t, body.GetPosition().Y, got.Y, 1e-12)
	assert.Less(t, got.Y, 1.0, "captured after falling")
	assert.Less(t, got.VY, 0.0)
	assert.InDelta(t, 1, a.Y, 1e-12, "live payload untouched")
	assert.Equal(t, game.Playing, snap.GameState)
}

func TestRoundTripReconstructsPieces(t *testing.T) {
	w := newWorld(t)
	for i, name := range []string{"column1", "column2", "vase"} {
		a := piece.New(name, "collider1", float64(i)-1, 0.5+float64(i), i)
		a.Angle = 0.1 * float64(i)
		w.factory.Create(a, nil)
	}
	w.idle(t)

	player := game.NewPlayer(5, 10)
	player.CurrentLevel = 2
	player.CurrentHealth = 3
	before := Serialize(game.WaitingForInput, player, w.reg)

	raw, err := Marshal(before)
	require.NoError(t, err)
	decoded, err := Unmarshal(raw)
	require.NoError(t, err)

	w.reg.Each(func(id physics.BodyID, _ *box2d.B2Body, p physics.Payload) {
		if _, ok := piece.AsArchitecture(p); ok {
			w.queue.Queue(id)
		}
	})

	restored := game.NewPlayer(5, 10)
	var applied game.State
	Restore(decoded, w.queue, w.factory, restored, nil, func(s game.State) { applied = s })
	assert.Equal(t, 3, w.reg.Len(), "nothing spawns before the queue drains")

	w.queue.Process()
	w.idle(t)

	after := Serialize(applied, restored, w.reg)
	assert.Equal(t, game.WaitingForInput, applied)
	assert.Equal(t, *player, *restored)
	require.Len(t, after.Bodies, len(before.Bodies))
	for i := range before.Bodies {
		b, a := before.Bodies[i], after.Bodies[i]
		assert.InDelta(t, b.X, a.X, 1e-9)
		assert.InDelta(t, b.Y, a.Y, 1e-9)
		assert.InDelta(t, b.Angle, a.Angle, 1e-9)
		assert.Equal(t, b.Categories, a.Categories)
		assert.Equal(t, b.MeshName, a.MeshName)
		assert.Equal(t, b.ColliderName, a.ColliderName)
		assert.Equal(t, b.Level, a.Level)
		assert.Equal(t, b.State, a.State)
	}
}

func TestJSONFieldNames(t *testing.T) {
	snap := &Snapshot{
		GameState: game.Settling,
		Player:    *game.NewPlayer(5, 10),
		Bodies:    []*piece.Architecture{piece.New("vase", "collider2", 1, 2, 3)},
	}
	raw, err := Marshal(snap)
	require.NoError(t, err)
	s := string(raw)
	for _, key := range []string{`"gameState":"settling"`, `"currentHealth":5`, `"meshName":"vase"`,
		`"colliderName":"collider2"`, `"categoryArray":["architecture"]`, `"state":"floating"`, `"vAngle":0`} {
		assert.Contains(t, s, key)
	}

	_, err = Unmarshal([]byte(`{"gameState":"playing","bodies":[null]}`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{"gameState":"dancing"}`))
	assert.Error(t, err)
}

func TestSlot(t *testing.T) {
	slot := NewSlot(filepath.Join(t.TempDir(), "saves", "savedGame.json"))
	_, err := slot.Load()
	assert.ErrorIs(t, err, ErrEmptySlot)

	snap := &Snapshot{GameState: game.Playing, Player: *game.NewPlayer(5, 12)}
	require.NoError(t, slot.Save(snap))
	got, err := slot.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Player, got.Player)
	assert.Equal(t, game.Playing, got.GameState)
}
