package system

import (
	"time"

	"github.com/skyfall/arcade/internal/core/event"
	coresys "github.com/skyfall/arcade/internal/core/system"
)

// EventDispatchSystem delivers last tick's events. Contact and boundary
// handling therefore always sees the world as the previous tick left it.
// Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
