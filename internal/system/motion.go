package system

import (
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	coresys "github.com/skyfall/arcade/internal/core/system"
	"github.com/skyfall/arcade/internal/world"
)

// MotionSystem integrates every live body and keeps the player inside the
// play area. Phase 2 (Update).
type MotionSystem struct {
	state  *world.State
	player ecs.EntityID
}

func NewMotionSystem(ws *world.State, player ecs.EntityID) *MotionSystem {
	return &MotionSystem{state: ws, player: player}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	s.state.Integrate(dt)
	s.state.Confine(s.player)
}
