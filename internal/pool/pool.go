// Package pool keeps pre-instantiated entities per template and hands them out
// for reuse instead of allocating and destroying them every frame.
//
// A Service is owned by the simulation root and injected into collaborators.
// It is not safe for concurrent use: every call must come from the
// simulation goroutine.
package pool

import (
	"errors"
	"fmt"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/sched"
	"go.uber.org/zap"
)

var (
	ErrPoolNotFound  = errors.New("pool not found")
	ErrPoolExhausted = errors.New("pool exhausted")
	ErrDuplicatePool = errors.New("pool already exists")
)

// Factory materializes and parks the simulation side of pooled entities.
type Factory interface {
	// Materialize creates a new entity with the template's components.
	Materialize(t *Template) ecs.EntityID
	// Park takes an entity out of the simulation: no motion, no collisions.
	Park(id ecs.EntityID)
	// Discard destroys an entity permanently.
	Discard(id ecs.EntityID)
}

// Entity is one pooled instance, bound to exactly one template for life.
type Entity struct {
	ID       ecs.EntityID
	Template *Template

	active bool
	pool   *Pool
	timers []sched.Handle
}

func (e *Entity) Active() bool { return e.active }

// BindTimer ties a scheduled callback to the current activation. Releasing
// the entity cancels it, so a reused instance is never retired by a timer
// from its previous life.
func (e *Entity) BindTimer(h sched.Handle) {
	s := e.pool.svc.sched
	live := e.timers[:0]
	for _, t := range e.timers {
		if s.Pending(t) {
			live = append(live, t)
		}
	}
	e.timers = append(live, h)
}

// Pool is the ordered instance list of one template.
type Pool struct {
	template *Template
	entities []*Entity
	svc      *Service
}

// Service maps templates to pools.
type Service struct {
	pools       map[*Template]*Pool
	byID        map[ecs.EntityID]*Entity
	factory     Factory
	sched       *sched.Scheduler
	defaultSize int
	log         *zap.Logger
}

func NewService(factory Factory, s *sched.Scheduler, defaultSize int, log *zap.Logger) *Service {
	if defaultSize <= 0 {
		defaultSize = 10
	}
	return &Service{
		pools:       make(map[*Template]*Pool),
		byID:        make(map[ecs.EntityID]*Entity, 256),
		factory:     factory,
		sched:       s,
		defaultSize: defaultSize,
		log:         log,
	}
}

// DefaultSize is the size used when a pool is created without one.
func (s *Service) DefaultSize() int { return s.defaultSize }

// CreatePool allocates size inactive instances of t. size <= 0 uses the
// template size, then the service default. A second pool for the same
// template is refused with ErrDuplicatePool and a warning; the first pool is
// left untouched.
func (s *Service) CreatePool(t *Template, size int) error {
	if t == nil {
		return fmt.Errorf("create pool: nil template: %w", ErrPoolNotFound)
	}
	if _, ok := s.pools[t]; ok {
		s.log.Warn("pool already exists", zap.String("template", t.Name))
		return fmt.Errorf("create pool %s: %w", t.Name, ErrDuplicatePool)
	}
	if size <= 0 {
		size = t.Size
	}
	if size <= 0 {
		size = s.defaultSize
	}
	p := &Pool{template: t, entities: make([]*Entity, 0, size), svc: s}
	s.pools[t] = p
	s.grow(p, size)
	s.log.Debug("pool created", zap.String("template", t.Name), zap.Int("size", size))
	return nil
}

// CreateDefaultPool creates a pool of the template's configured size.
func (s *Service) CreateDefaultPool(t *Template) error {
	return s.CreatePool(t, 0)
}

// HasPool reports whether t has a pool. A nil template has none.
func (s *Service) HasPool(t *Template) bool {
	if t == nil {
		return false
	}
	_, ok := s.pools[t]
	return ok
}

// Acquire returns an inactive instance of t and marks it active. It never
// grows the pool: when every instance is in use it returns ErrPoolExhausted
// and the caller skips whatever it wanted the entity for.
func (s *Service) Acquire(t *Template) (*Entity, error) {
	p, ok := s.pools[t]
	if !ok || t == nil {
		s.log.Error("no pool for template", zap.Stringer("template", t))
		return nil, fmt.Errorf("acquire %s: %w", t, ErrPoolNotFound)
	}
	for _, e := range p.entities {
		if !e.active {
			e.active = true
			return e, nil
		}
	}
	s.log.Warn("no inactive instance available, consider growing the pool",
		zap.String("template", t.Name), zap.Int("size", len(p.entities)))
	return nil, fmt.Errorf("acquire %s: %w", t.Name, ErrPoolExhausted)
}

// Release deactivates e whatever its current state, cancels its bound timers
// and parks it. Releasing twice is harmless.
func (s *Service) Release(e *Entity) {
	if e == nil {
		return
	}
	for _, h := range e.timers {
		s.sched.Cancel(h)
	}
	e.timers = e.timers[:0]
	wasActive := e.active
	e.active = false
	s.factory.Park(e.ID)
	if wasActive {
		s.log.Debug("entity released", zap.String("template", e.Template.Name), zap.Uint64("entity", uint64(e.ID)))
	}
}

// Lookup resolves a pooled entity by ID. ok is false for unpooled entities.
func (s *Service) Lookup(id ecs.EntityID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// ReleaseID releases the pooled entity with the given ID. It reports false
// when id does not belong to any pool.
func (s *Service) ReleaseID(id ecs.EntityID) bool {
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	s.Release(e)
	return true
}

// Grow adds n inactive instances to an existing pool. This is the only way a
// pool gets bigger after creation.
func (s *Service) Grow(t *Template, n int) error {
	p, ok := s.pools[t]
	if !ok || t == nil {
		return fmt.Errorf("grow %s: %w", t, ErrPoolNotFound)
	}
	if n <= 0 {
		return nil
	}
	s.grow(p, n)
	s.log.Info("pool grown", zap.String("template", t.Name), zap.Int("size", len(p.entities)))
	return nil
}

func (s *Service) grow(p *Pool, n int) {
	for i := 0; i < n; i++ {
		id := s.factory.Materialize(p.template)
		s.factory.Park(id)
		e := &Entity{ID: id, Template: p.template, pool: p}
		p.entities = append(p.entities, e)
		s.byID[id] = e
	}
}

// Stats returns the instance count and how many are active.
func (s *Service) Stats(t *Template) (total, active int) {
	p, ok := s.pools[t]
	if !ok {
		return 0, 0
	}
	for _, e := range p.entities {
		if e.active {
			active++
		}
	}
	return len(p.entities), active
}

// Teardown discards every pooled instance and forgets all pools.
func (s *Service) Teardown() {
	n := 0
	for t, p := range s.pools {
		for _, e := range p.entities {
			for _, h := range e.timers {
				s.sched.Cancel(h)
			}
			e.timers = nil
			e.active = false
			s.factory.Discard(e.ID)
			delete(s.byID, e.ID)
			n++
		}
		delete(s.pools, t)
	}
	s.log.Info("pools torn down", zap.Int("entities", n))
}
