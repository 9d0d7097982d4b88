package leaderboard

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Leader is one ranked entry as served by /leaders.
type Leader struct {
	Place     int    `json:"place"`
	ID        int64  `json:"id"`
	Score     int    `json:"score"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"createdAt"`
}

// Result is a finished round as posted to /record.
type Result struct {
	Score   int    `json:"score"`
	Summary string `json:"summary"`
	Details string `json:"details"`
}

const initialsLen = 3

var upper = cases.Upper(language.Und)

// NormalizeInitials upper-cases s and pads or cuts it to three runes.
func NormalizeInitials(s string) string {
	r := []rune(upper.String(strings.TrimSpace(s)) + strings.Repeat("-", initialsLen))
	return string(r[:initialsLen])
}

// Place returns where score would rank among leaders, the board's top
// entries. It is -1 when the board holds size entries that all beat score.
func Place(leaders []Leader, score, size int) int {
	if len(leaders) < size {
		return len(leaders)
	}
	for _, l := range leaders {
		if l.Score < score {
			return l.Place
		}
	}
	return -1
}
