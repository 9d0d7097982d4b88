package piece

import (
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/Timmith/ld49/internal/physics"
)

// Mode is the damping regime of a piece.
type Mode int

const (
	Floating Mode = iota
	Falling
	Frozen
)

func (m Mode) String() string {
	switch m {
	case Floating:
		return "floating"
	case Falling:
		return "falling"
	case Frozen:
		return "frozen"
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < Floating || m > Frozen {
		return nil, fmt.Errorf("unknown piece mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "floating":
		*m = Floating
	case "falling":
		*m = Falling
	case "frozen":
		*m = Frozen
	default:
		return fmt.Errorf("unknown piece mode %q", string(b))
	}
	return nil
}

// Architecture is the payload of a placeable piece. The exported fields are
// the saved form; transform and velocity are refreshed on capture.
type Architecture struct {
	State        Mode               `json:"state"`
	X            float64            `json:"x"`
	Y            float64            `json:"y"`
	Angle        float64            `json:"angle"`
	VX           float64            `json:"vx"`
	VY           float64            `json:"vy"`
	VAngle       float64            `json:"vAngle"`
	MeshName     string             `json:"meshName"`
	ColliderName string             `json:"colliderName"`
	Categories   []physics.Category `json:"categoryArray"`
	Mask         []physics.Category `json:"maskArray"`
	Level        int                `json:"level"`

	outline [][]box2d.B2Vec2 // body-local fixture polygons
}

func (*Architecture) PayloadKind() physics.PayloadKind { return physics.KindArchitecture }

// AsArchitecture reports whether p is an architecture payload.
func AsArchitecture(p physics.Payload) (*Architecture, bool) {
	a, ok := p.(*Architecture)
	return a, ok && a != nil
}

// Floating reports whether the piece still hovers with gravity off.
func (a *Architecture) Floating() bool { return a.State == Floating }

// Outline returns the body-local polygons attached once the collider resolved.
func (a *Architecture) Outline() [][]box2d.B2Vec2 { return a.outline }

// Clone copies the saved fields. The outline is not copied.
func (a *Architecture) Clone() *Architecture {
	c := *a
	c.Categories = append([]physics.Category(nil), a.Categories...)
	c.Mask = append([]physics.Category(nil), a.Mask...)
	c.outline = nil
	return &c
}

// Capture refreshes the saved transform and velocity from body.
func (a *Architecture) Capture(body *box2d.B2Body) {
	p := body.GetPosition()
	v := body.GetLinearVelocity()
	a.X, a.Y = p.X, p.Y
	a.Angle = body.GetAngle()
	a.VX, a.VY = v.X, v.Y
	a.VAngle = body.GetAngularVelocity()
}

// CategoryBits is the filter category of the piece.
func (a *Architecture) CategoryBits() uint16 { return physics.MakeBitMask(a.Categories...) }

// MaskBits is the filter mask of the piece.
func (a *Architecture) MaskBits() uint16 { return physics.MakeBitMask(a.Mask...) }

// SetMode switches body and payload to m.
func SetMode(body *box2d.B2Body, a *Architecture, m Mode) {
	a.State = m
	switch m {
	case Floating:
		body.SetType(physics.DynamicBody)
		body.SetGravityScale(0)
		body.SetLinearDamping(5)
		body.SetAngularDamping(5)
	case Falling:
		body.SetType(physics.DynamicBody)
		body.SetGravityScale(1)
		body.SetLinearDamping(0)
		body.SetAngularDamping(0)
		body.SetAwake(true)
	case Frozen:
		body.SetType(physics.StaticBody)
	}
}

// Promote rewrites the piece's category to terrain on body and payload.
func Promote(body *box2d.B2Body, a *Architecture) {
	a.Categories = []physics.Category{physics.Environment}
	physics.SetCategoryBits(body, a.CategoryBits())
}

// New returns a floating piece of the given mesh at (x, y) on level.
func New(meshName, colliderName string, x, y float64, level int) *Architecture {
	return &Architecture{
		State:        Floating,
		X:            x,
		Y:            y,
		MeshName:     meshName,
		ColliderName: colliderName,
		Categories:   []physics.Category{physics.Architecture},
		Mask: []physics.Category{
			physics.Environment, physics.Architecture, physics.Penalty, physics.Goal,
		},
		Level: level,
	}
}
