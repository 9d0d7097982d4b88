package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
)

// Snapshot is everything needed to rebuild a round.
type Snapshot struct {
	GameState game.State            `json:"gameState"`
	Player    game.Player           `json:"player"`
	Bodies    []*piece.Architecture `json:"bodies"`
}

// Serialize captures every live architecture piece with its current
// transform and velocity. Terrain is skipped.
func Serialize(state game.State, player *game.Player, reg *physics.Registry) *Snapshot {
	s := &Snapshot{GameState: state, Player: *player}
	reg.Each(func(_ physics.BodyID, body *box2d.B2Body, p physics.Payload) {
		a, ok := piece.AsArchitecture(p)
		if !ok {
			return
		}
		c := a.Clone()
		c.Capture(body)
		s.Bodies = append(s.Bodies, c)
	})
	return s
}

// Spawner creates a piece from a saved payload.
type Spawner interface {
	Create(a *piece.Architecture, onReady func(piece.Piece)) physics.BodyID
}

// Restore waits for q to drain, then spawns every saved piece, copies the
// player and hands the saved state to apply. Callers queue the previous
// generation of bodies for destruction before calling Restore.
func Restore(s *Snapshot, q *physics.DestructionQueue, spawner Spawner, player *game.Player, onReady func(piece.Piece), apply func(game.State)) {
	q.OnCleared(func() {
		for _, b := range s.Bodies {
			spawner.Create(b.Clone(), onReady)
		}
		*player = s.Player
		if apply != nil {
			apply(s.GameState)
		}
	})
}

// Marshal encodes s as JSON.
func Marshal(s *Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a JSON snapshot.
func Unmarshal(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for i, a := range s.Bodies {
		if a == nil {
			return nil, fmt.Errorf("decode snapshot: body %d is null", i)
		}
	}
	return &s, nil
}
