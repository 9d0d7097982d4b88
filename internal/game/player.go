package game

// Player is the per-session score keeper. It is reset on game over, never
// replaced.
type Player struct {
	CurrentHealth int     `json:"currentHealth"`
	MaxHealth     int     `json:"maxHealth"`
	CurrentLevel  int     `json:"currentLevel"`
	CurrentTimer  float64 `json:"currentTimer"`
	MaxTimer      float64 `json:"maxTimer"`
	CurrentHeight float64 `json:"currentHeight"`
	PhysicsTime   float64 `json:"physicsTime"`
}

// NewPlayer returns a player at full health on level 0.
func NewPlayer(maxHealth int, timer float64) *Player {
	return &Player{
		CurrentHealth: maxHealth,
		MaxHealth:     maxHealth,
		CurrentTimer:  timer,
		MaxTimer:      timer,
	}
}

// ApplyHealthDelta adds delta and clamps to [0, MaxHealth].
func (p *Player) ApplyHealthDelta(delta int) {
	h := p.CurrentHealth + delta
	if h < 0 {
		h = 0
	}
	if h > p.MaxHealth {
		h = p.MaxHealth
	}
	p.CurrentHealth = h
}

func (p *Player) Dead() bool { return p.CurrentHealth <= 0 }
