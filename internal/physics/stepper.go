package physics

// Stepper advances a World in constant sub-steps so that simulation results
// do not depend on the frame rate.
type Stepper struct {
	world              *World
	fixed              float64
	velocityIterations int
	positionIterations int
}

func NewStepper(w *World, fixed float64, velocityIterations, positionIterations int) *Stepper {
	return &Stepper{
		world:              w,
		fixed:              fixed,
		velocityIterations: velocityIterations,
		positionIterations: positionIterations,
	}
}

// Fixed returns the sub-step length in seconds.
func (s *Stepper) Fixed() float64 { return s.fixed }

// Advance adds dt to *physicsTime one fixed sub-step at a time, stepping the
// world for each, and returns the number of sub-steps taken.
func (s *Stepper) Advance(physicsTime *float64, dt float64) int {
	target := *physicsTime + dt
	steps := 0
	for *physicsTime < target {
		*physicsTime += s.fixed
		s.world.Step(s.fixed, s.velocityIterations, s.positionIterations)
		steps++
	}
	return steps
}
