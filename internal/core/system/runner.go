package system

import (
	"fmt"
	"time"
)

const phaseCount = int(PhaseCleanup) + 1

// Runner executes systems phase by phase each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	phases [phaseCount][]System
	ticks  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register appends s to its phase. Panics on an unknown phase, which is a
// wiring bug.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || int(p) >= phaseCount {
		panic(fmt.Sprintf("system: %T has unknown phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Tick runs one fixed simulation step through every phase.
func (r *Runner) Tick(dt time.Duration) {
	for p := range r.phases {
		for _, s := range r.phases[p] {
			s.Update(dt)
		}
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. The game loop uses it with
// PhaseInput on the variable-rate frame step between fixed ticks.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || int(phase) >= phaseCount {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, ss := range r.phases {
		n += len(ss)
	}
	return n
}
