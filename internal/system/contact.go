package system

import (
	"time"

	"github.com/skyfall/arcade/internal/core/event"
	coresys "github.com/skyfall/arcade/internal/core/system"
	"github.com/skyfall/arcade/internal/world"
)

// ContactSystem detects overlaps and boundary exits after motion and queues
// them on the bus for the next tick. Phase 3 (PostUpdate).
type ContactSystem struct {
	state *world.State
	bus   *event.Bus
}

func NewContactSystem(ws *world.State, bus *event.Bus) *ContactSystem {
	return &ContactSystem{state: ws, bus: bus}
}

func (s *ContactSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ContactSystem) Update(_ time.Duration) {
	s.state.DetectContacts(func(c event.Contact) { event.Emit(s.bus, c) })
	s.state.DetectBoundary(func(b event.Boundary) { event.Emit(s.bus, b) })
}
