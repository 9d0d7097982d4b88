package event

import (
	"github.com/Timmith/ld49/internal/core/ecs"
	"github.com/Timmith/ld49/internal/game"
	"github.com/Timmith/ld49/internal/leaderboard"
)

// Events published to the renderer/HUD layer.

type LevelChanged struct {
	Level int
}

type PieceStateChanged struct {
	Body  ecs.EntityID
	State string // floating, falling, frozen
}

type CameraDelta struct {
	Delta int
}

type AnnouncementChanged struct {
	Text string
}

type RoundStateChanged struct {
	State game.State
}

type CursorStarted struct {
	X, Y float64
}

// ScoreSubmitted is emitted once per game over, after the score is computed.
type ScoreSubmitted struct {
	Score   int
	Summary string
}

// LeaderboardUpdated carries a fresh top list after a submission.
type LeaderboardUpdated struct {
	Leaders []leaderboard.Leader
}
