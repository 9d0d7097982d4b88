package leaderboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
)

// Board is the part of the service the reporter needs.
type Board interface {
	Fetch(ctx context.Context, limit, offset int) ([]Leader, error)
	Submit(ctx context.Context, r Result) error
}

type job struct {
	score   int
	height  float64
	details []byte
}

// Reporter posts finished rounds off the game loop. Every failure is logged
// and dropped; nothing flows back into the round except fresh leader lists.
type Reporter struct {
	board    Board
	initials string
	topN     int
	timeout  time.Duration
	jobs     chan job
	updates  chan []Leader
	log      *zap.Logger
}

func NewReporter(board Board, cfg config.LeaderboardConfig, log *zap.Logger) *Reporter {
	topN := cfg.TopN
	if topN <= 0 {
		topN = 10
	}
	return &Reporter{
		board:    board,
		initials: NormalizeInitials(cfg.Initials),
		topN:     topN,
		timeout:  cfg.Timeout,
		jobs:     make(chan job, 4),
		updates:  make(chan []Leader, 1),
		log:      log,
	}
}

// Report queues a finished round. It never blocks; a full queue drops the
// round.
func (r *Reporter) Report(score int, height float64, details []byte) {
	select {
	case r.jobs <- job{score: score, height: height, details: details}:
	default:
		r.log.Warn("leaderboard queue full, score dropped", zap.Int("score", score))
	}
}

// Updates delivers the latest leader list after each report.
func (r *Reporter) Updates() <-chan []Leader { return r.updates }

// Run handles reports until ctx ends.
func (r *Reporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-r.jobs:
			r.handle(ctx, j)
		}
	}
}

func (r *Reporter) handle(ctx context.Context, j job) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	leaders, err := r.board.Fetch(ctx, r.topN, 0)
	if err != nil {
		r.log.Warn("leaderboard not available", zap.Error(err))
		return
	}
	place := Place(leaders, j.score, r.topN)
	if place < 0 {
		r.log.Info("score did not place", zap.Int("score", j.score))
		r.publish(leaders)
		return
	}

	err = r.board.Submit(ctx, Result{Score: j.score, Summary: r.initials, Details: string(j.details)})
	if err != nil {
		r.log.Warn("leaderboard submit failed", zap.Int("score", j.score), zap.Error(err))
		return
	}
	r.log.Info("score recorded",
		zap.Int("place", place),
		zap.Int("score", j.score),
		zap.Float64("height", j.height),
		zap.String("initials", r.initials))

	if leaders, err = r.board.Fetch(ctx, r.topN, 0); err != nil {
		r.log.Warn("leaderboard refresh failed", zap.Error(err))
		return
	}
	r.publish(leaders)
}

// publish keeps only the newest list in the channel.
func (r *Reporter) publish(leaders []Leader) {
	select {
	case <-r.updates:
	default:
	}
	select {
	case r.updates <- leaders:
	default:
	}
}
