package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput    Phase = iota // 0: drain sessions, asset results, commands
	PhaseDispatch              // 1: deliver last tick's events
	PhaseSimulate              // 2: fixed-step physics + contact dispatch
	PhaseCleanup               // 3: flush the destruction queue
	PhaseUpdate                // 4: round state machine
	PhaseSync                  // 5: body → mesh transforms
	PhaseOutput                // 6: build + send feed frames
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
