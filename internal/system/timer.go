package system

import (
	"time"

	"github.com/skyfall/arcade/internal/core/sched"
	coresys "github.com/skyfall/arcade/internal/core/system"
)

// TimerSystem advances the simulation clock: projectile lifetimes, fire
// cooldowns, effect expiry and the spawn interval all run from here.
// Phase 3 (PostUpdate), registered after ContactSystem.
type TimerSystem struct {
	sched *sched.Scheduler
}

func NewTimerSystem(s *sched.Scheduler) *TimerSystem {
	return &TimerSystem{sched: s}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *TimerSystem) Update(dt time.Duration) {
	s.sched.Advance(dt)
}
