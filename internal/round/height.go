package round

import (
	"math"
	"sort"

	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
)

const measuredPieces = 3

// measureHeight records the top of the tower: the highest outline vertex
// among the three highest pieces, plus the configured offset. With nothing
// measurable the height is 0.
func (m *Machine) measureHeight() {
	ids := m.Active()
	sort.SliceStable(ids, func(i, j int) bool {
		return m.reg.Body(ids[i]).GetPosition().Y > m.reg.Body(ids[j]).GetPosition().Y
	})
	if len(ids) > measuredPieces {
		ids = ids[:measuredPieces]
	}

	top := math.Inf(-1)
	for _, id := range ids {
		top = math.Max(top, m.pieceTop(id))
	}
	if math.IsInf(top, -1) {
		m.player.CurrentHeight = 0
		return
	}
	m.player.CurrentHeight = top + m.cfg.HeightOffset
}

func (m *Machine) pieceTop(id physics.BodyID) float64 {
	top := math.Inf(-1)
	a, ok := piece.AsArchitecture(m.reg.Payload(id))
	if !ok {
		return top
	}
	body := m.reg.Body(id)
	for _, poly := range a.Outline() {
		for _, v := range poly {
			top = math.Max(top, body.GetWorldPoint(v).Y)
		}
	}
	return top
}
