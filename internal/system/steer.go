package system

import (
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	coresys "github.com/skyfall/arcade/internal/core/system"
	"github.com/skyfall/arcade/internal/world"
)

// AxisReader exposes the latest sampled movement direction.
type AxisReader interface {
	Axis() world.Vec2
}

// SteerSystem turns the sampled axis into ship velocity and eases the ship's
// tilt towards the angle matching horizontal input. Registered before
// MotionSystem. Phase 2 (Update).
type SteerSystem struct {
	state  *world.State
	player ecs.EntityID
	input  AxisReader
}

func NewSteerSystem(ws *world.State, player ecs.EntityID, input AxisReader) *SteerSystem {
	return &SteerSystem{state: ws, player: player, input: input}
}

func (s *SteerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SteerSystem) Update(dt time.Duration) {
	p, ok := s.state.Players.Get(s.player)
	if !ok {
		return
	}
	b, ok := s.state.Bodies.Get(s.player)
	if !ok {
		return
	}
	axis := world.Vec2{}
	if p.InputEnabled {
		axis = s.input.Axis()
	}
	b.Vel = axis.Scale(p.MoveSpeed)

	tr, ok := s.state.Transforms.Get(s.player)
	if !ok {
		return
	}
	target := -axis.X * p.TiltAngle
	step := p.TiltSpeed * dt.Seconds()
	switch {
	case p.TiltSpeed <= 0:
		tr.Rot = target
	case tr.Rot < target:
		tr.Rot = min(tr.Rot+step, target)
	case tr.Rot > target:
		tr.Rot = max(tr.Rot-step, target)
	}
}
