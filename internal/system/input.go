package system

import (
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	coresys "github.com/skyfall/arcade/internal/core/system"
	"github.com/skyfall/arcade/internal/world"
	"go.uber.org/zap"
)

// Source is one player's controls, sampled once per frame.
type Source interface {
	// Axis is the movement direction, each component in [-1, 1].
	Axis() world.Vec2
	// FireHeld reports whether the fire button is down.
	FireHeld() bool
}

// Shooter fires the player's current weapon.
type Shooter interface {
	Fire(player ecs.EntityID) bool
}

// InputSystem samples the player's controls. It fires on the press edge of
// the fire button and reports movement start and stop. The sampled axis is
// kept for SteerSystem. Phase 0 (Input), also run on every frame step.
type InputSystem struct {
	state   *world.State
	player  ecs.EntityID
	src     Source
	shooter Shooter
	bus     *event.Bus
	log     *zap.Logger

	axis      world.Vec2
	moving    bool
	fireWasOn bool
}

func NewInputSystem(ws *world.State, player ecs.EntityID, src Source, shooter Shooter, bus *event.Bus, log *zap.Logger) *InputSystem {
	return &InputSystem{state: ws, player: player, src: src, shooter: shooter, bus: bus, log: log}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	p, ok := s.state.Players.Get(s.player)
	if !ok || !p.InputEnabled {
		s.axis = world.Vec2{}
		s.fireWasOn = false
		s.setMoving(false)
		return
	}

	s.axis = clampAxis(s.src.Axis())
	s.setMoving(s.axis.X != 0 || s.axis.Y != 0)

	fire := s.src.FireHeld()
	if fire && !s.fireWasOn {
		if !s.shooter.Fire(s.player) {
			s.log.Debug("shot skipped", zap.Uint64("player", uint64(s.player)))
		}
	}
	s.fireWasOn = fire
}

// Axis returns the last sampled movement direction.
func (s *InputSystem) Axis() world.Vec2 { return s.axis }

func (s *InputSystem) setMoving(moving bool) {
	if moving == s.moving {
		return
	}
	s.moving = moving
	event.Emit(s.bus, event.PlayerMoving{Player: s.player, Moving: moving})
}

func clampAxis(v world.Vec2) world.Vec2 {
	return world.Vec2{X: clamp(v.X, -1, 1), Y: clamp(v.Y, -1, 1)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
