package system

import (
	"time"

	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/round"
)

// SimulationSystem steps the world in fixed sub-steps while the round is
// simulating. Contact listeners fire inside the step. Phase 2 (Simulate).
type SimulationSystem struct {
	stepper *physics.Stepper
	machine *round.Machine
}

func NewSimulationSystem(stepper *physics.Stepper, machine *round.Machine) *SimulationSystem {
	return &SimulationSystem{stepper: stepper, machine: machine}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseSimulate }

func (s *SimulationSystem) Update(dt time.Duration) {
	if !s.machine.Simulating() {
		return
	}
	s.stepper.Advance(&s.machine.Player().PhysicsTime, dt.Seconds())
}

// DestructionSystem destroys the bodies queued during the step and runs the
// queue's cleared callbacks. Phase 3 (Cleanup).
type DestructionSystem struct {
	queue *physics.DestructionQueue
}

func NewDestructionSystem(queue *physics.DestructionQueue) *DestructionSystem {
	return &DestructionSystem{queue: queue}
}

func (s *DestructionSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *DestructionSystem) Update(_ time.Duration) { s.queue.Process() }

// MeshSyncSystem copies body transforms into bound meshes. Phase 5 (Sync).
type MeshSyncSystem struct {
	bindings *physics.Bindings
}

func NewMeshSyncSystem(bindings *physics.Bindings) *MeshSyncSystem {
	return &MeshSyncSystem{bindings: bindings}
}

func (s *MeshSyncSystem) Phase() coresys.Phase { return coresys.PhaseSync }

func (s *MeshSyncSystem) Update(_ time.Duration) { s.bindings.SyncTransforms() }
