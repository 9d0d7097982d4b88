package system

import (
	"time"

	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/piece"
)

// AssetSystem finalizes pieces whose colliders resolved since the last tick.
// Phase 0 (Input).
type AssetSystem struct {
	factory *piece.Factory
}

func NewAssetSystem(factory *piece.Factory) *AssetSystem {
	return &AssetSystem{factory: factory}
}

func (s *AssetSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *AssetSystem) Update(_ time.Duration) { s.factory.Drain() }
