package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/blake2b"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("persist: not found")

type LeaderRow struct {
	ID        int64
	Score     int
	Summary   string
	CreatedAt time.Time
}

type LeaderboardRepo struct {
	db *DB
}

func NewLeaderboardRepo(db *DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

// Top returns up to limit rows ranked by score, earliest first on ties.
func (r *LeaderboardRepo) Top(ctx context.Context, limit, offset int) ([]LeaderRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, score, summary, created_at FROM leaderboard
		 ORDER BY score DESC, created_at ASC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderRow
	for rows.Next() {
		var row LeaderRow
		if err := rows.Scan(&row.ID, &row.Score, &row.Summary, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Details returns the replay stored with entry id.
func (r *LeaderboardRepo) Details(ctx context.Context, id int64) (string, error) {
	var details string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT details FROM leaderboard WHERE id = $1`, id,
	).Scan(&details)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return details, nil
}

// Record stores a finished round. A replay already on the board is not
// stored twice; inserted reports whether a row was added.
func (r *LeaderboardRepo) Record(ctx context.Context, score int, summary, details string) (inserted bool, err error) {
	tag, err := r.db.Pool.Exec(ctx,
		`INSERT INTO leaderboard (score, summary, details, details_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (details_hash) DO NOTHING`,
		score, summary, details, DetailsHash(details), time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("record score: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DetailsHash is the dedupe key of a replay.
func DetailsHash(details string) []byte {
	sum := blake2b.Sum256([]byte(details))
	return sum[:]
}
