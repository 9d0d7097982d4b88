package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var zAxis = mgl64.Vec3{0, 0, 1}

// Mesh is the renderer-facing half of a piece. The renderer owns the actual
// geometry; the server tracks what to draw and where.
type Mesh struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    float64
}

func NewMesh(name string, scale float64) *Mesh {
	return &Mesh{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    scale,
	}
}

// SetTransform places the mesh at (x, y) on the z=0 plane rotated by angle
// radians about z.
func (m *Mesh) SetTransform(x, y, angle float64) {
	m.Position = mgl64.Vec3{x, y, 0}
	m.Rotation = mgl64.QuatRotate(angle, zAxis)
}

// Matrix returns the model matrix.
func (m *Mesh) Matrix() mgl64.Mat4 {
	t := mgl64.Translate3D(m.Position.X(), m.Position.Y(), m.Position.Z())
	s := mgl64.Scale3D(m.Scale, m.Scale, m.Scale)
	return t.Mul4(m.Rotation.Mat4()).Mul4(s)
}

// Angle recovers the z rotation.
func (m *Mesh) Angle() float64 {
	axis := m.Rotation.V
	w := m.Rotation.W
	a := 2 * math.Atan2(axis.Len(), w)
	if axis.Z() < 0 {
		a = -a
	}
	return a
}
