package world

import (
	"sort"
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/health"
	"github.com/skyfall/arcade/internal/pool"
	"go.uber.org/zap"
)

// Bounds is the play area. An entity crossing out of it is reported once
// per crossing.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// State holds the component stores of every simulated entity and acts as the
// entity factory for pools. Accessed only from the simulation goroutine.
type State struct {
	ecs *ecs.World

	Transforms *ecs.Store[Transform]
	Bodies     *ecs.Store[Body]
	Colliders  *ecs.Store[Collider]
	Tags       *ecs.Store[Tag]
	Healths    *ecs.Store[health.Model]
	Players    *ecs.Store[Player]

	bounds Bounds
	grid   *Grid
	scan   []ecs.EntityID
	log    *zap.Logger
}

func NewState(w *ecs.World, bounds Bounds, log *zap.Logger) *State {
	return &State{
		ecs:        w,
		Transforms: ecs.RegisterStore[Transform](w),
		Bodies:     ecs.RegisterStore[Body](w),
		Colliders:  ecs.RegisterStore[Collider](w),
		Tags:       ecs.RegisterStore[Tag](w),
		Healths:    ecs.RegisterStore[health.Model](w),
		Players:    ecs.RegisterStore[Player](w),
		bounds:     bounds,
		grid:       NewGrid(1),
		scan:       make([]ecs.EntityID, 0, 128),
		log:        log,
	}
}

func (s *State) ECS() *ecs.World { return s.ecs }
func (s *State) Bounds() Bounds  { return s.bounds }

// Materialize implements pool.Factory. The entity starts parked.
func (s *State) Materialize(t *pool.Template) ecs.EntityID {
	id := s.ecs.CreateEntity()
	spec := t.Spec
	s.Transforms.Set(id, &Transform{})
	s.Bodies.Set(id, &Body{})
	s.Colliders.Set(id, &Collider{HalfW: spec.HalfWidth, HalfH: spec.HalfHeight})
	s.Tags.Set(id, &Tag{Template: t, Kind: spec.Kind, Category: spec.Category})
	s.log.Debug("entity materialized", zap.String("template", t.Name), zap.Uint64("entity", uint64(id)))
	return id
}

// Park implements pool.Factory: the entity stops moving and colliding.
func (s *State) Park(id ecs.EntityID) {
	s.Halt(id)
	if tag, ok := s.Tags.Get(id); ok {
		tag.Live = false
	}
}

// Discard implements pool.Factory: park now, destroy at end of tick.
func (s *State) Discard(id ecs.EntityID) {
	s.Park(id)
	s.ecs.MarkForDestruction(id)
}

// Wake starts a new activation: the entity moves and collides again, its
// destruction guard is reset and its epoch advances so observations made
// during earlier activations no longer match. Returns the new epoch.
func (s *State) Wake(id ecs.EntityID) uint32 {
	tag, ok := s.Tags.Get(id)
	if !ok {
		return 0
	}
	tag.Epoch++
	tag.Live = true
	tag.Retired = false
	tag.outside = false
	if col, ok := s.Colliders.Get(id); ok {
		col.Enabled = true
	}
	if b, ok := s.Bodies.Get(id); ok {
		*b = Body{Fall: tag.Template.Spec.FallSpeed}
	}
	return tag.Epoch
}

// Place moves an entity and clears its rotation and velocity. Falling drift
// is part of the template and survives placement.
func (s *State) Place(id ecs.EntityID, pos Vec2, z float64) {
	if tr, ok := s.Transforms.Get(id); ok {
		tr.Pos = pos
		tr.Z = z
		tr.Rot = 0
	}
	if b, ok := s.Bodies.Get(id); ok {
		b.Vel = Vec2{}
		b.Spin = 0
	}
	if tag, ok := s.Tags.Get(id); ok {
		tag.outside = false
	}
}

// Halt zeroes every residual motion and disables collision response.
func (s *State) Halt(id ecs.EntityID) {
	if b, ok := s.Bodies.Get(id); ok {
		*b = Body{}
	}
	if col, ok := s.Colliders.Get(id); ok {
		col.Enabled = false
	}
}

// Live reports whether the entity currently takes part in the simulation.
func (s *State) Live(id ecs.EntityID) bool {
	tag, ok := s.Tags.Get(id)
	return ok && tag.Live && !s.ecs.Pending(id)
}

// Ref describes the entity for the collision layer.
func (s *State) Ref(id ecs.EntityID) (event.Ref, bool) {
	tag, ok := s.Tags.Get(id)
	if !ok {
		return event.Ref{}, false
	}
	return event.Ref{ID: id, Category: tag.Category, Epoch: tag.Epoch}, true
}

// Current reports whether ref still names the entity's current activation.
func (s *State) Current(ref event.Ref) bool {
	tag, ok := s.Tags.Get(ref.ID)
	return ok && tag.Live && tag.Epoch == ref.Epoch && !s.ecs.Pending(ref.ID)
}

// Integrate advances every live body by dt.
func (s *State) Integrate(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each2(s.Bodies, s.Transforms, func(id ecs.EntityID, b *Body, tr *Transform) {
		if !s.Live(id) {
			return
		}
		tr.Pos = tr.Pos.Add(b.Vel.Scale(sec))
		tr.Pos.Y -= b.Fall * sec
		tr.Rot += b.Spin * sec
	})
}

// liveColliders collects live entities with an enabled collider, sorted so
// detection order does not depend on map iteration.
func (s *State) liveColliders() []ecs.EntityID {
	s.scan = s.scan[:0]
	s.Colliders.Each(func(id ecs.EntityID, c *Collider) {
		if c.Enabled && s.Live(id) {
			s.scan = append(s.scan, id)
		}
	})
	sort.Slice(s.scan, func(i, j int) bool { return s.scan[i] < s.scan[j] })
	return s.scan
}

// DetectContacts stands in for the physics engine: it reports every
// overlapping pair of enabled colliders once.
func (s *State) DetectContacts(emit func(event.Contact)) int {
	ids := s.liveColliders()
	for _, id := range ids {
		c, _ := s.Colliders.Get(id)
		s.grid.Fit(c.HalfW, c.HalfH)
	}
	s.grid.Reset()
	for _, id := range ids {
		tr, _ := s.Transforms.Get(id)
		s.grid.Add(id, tr.Pos.X, tr.Pos.Y)
	}

	n := 0
	for _, a := range ids {
		ta, _ := s.Transforms.Get(a)
		ca, _ := s.Colliders.Get(a)
		s.grid.Nearby(ta.Pos.X, ta.Pos.Y, func(b ecs.EntityID) {
			if b <= a {
				return
			}
			tb, _ := s.Transforms.Get(b)
			cb, _ := s.Colliders.Get(b)
			if !overlap(ta.Pos, ca, tb.Pos, cb) {
				return
			}
			ra, _ := s.Ref(a)
			rb, _ := s.Ref(b)
			emit(event.Contact{A: ra, B: rb})
			n++
		})
	}
	return n
}

func overlap(pa Vec2, ca *Collider, pb Vec2, cb *Collider) bool {
	return abs(pa.X-pb.X) <= ca.HalfW+cb.HalfW && abs(pa.Y-pb.Y) <= ca.HalfH+cb.HalfH
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DetectBoundary reports live entities that left the play area since the
// last check. An entity is reported again only after it came back inside.
func (s *State) DetectBoundary(emit func(event.Boundary)) int {
	s.scan = s.scan[:0]
	s.Tags.Each(func(id ecs.EntityID, tag *Tag) {
		if tag.Live {
			s.scan = append(s.scan, id)
		}
	})
	sort.Slice(s.scan, func(i, j int) bool { return s.scan[i] < s.scan[j] })

	n := 0
	for _, id := range s.scan {
		tag, _ := s.Tags.Get(id)
		tr, ok := s.Transforms.Get(id)
		if !ok {
			continue
		}
		if s.bounds.Contains(tr.Pos) {
			tag.outside = false
			continue
		}
		if tag.outside {
			continue
		}
		tag.outside = true
		emit(event.Boundary{Entity: event.Ref{ID: id, Category: tag.Category, Epoch: tag.Epoch}})
		n++
	}
	return n
}

// Count returns how many live entities of the given category exist.
func (s *State) Count(category string) int {
	n := 0
	s.Tags.Each(func(id ecs.EntityID, tag *Tag) {
		if tag.Live && tag.Category == category && !s.ecs.Pending(id) {
			n++
		}
	})
	return n
}

// Confine clamps an entity's position to the play area.
func (s *State) Confine(id ecs.EntityID) {
	tr, ok := s.Transforms.Get(id)
	if !ok {
		return
	}
	tr.Pos.X = min(max(tr.Pos.X, s.bounds.MinX), s.bounds.MaxX)
	tr.Pos.Y = min(max(tr.Pos.Y, s.bounds.MinY), s.bounds.MaxY)
}
