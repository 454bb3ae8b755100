// Package spawn drops new entities into the play area on a fixed interval and
// puts recyclable entities that fell out of it back on top.
package spawn

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/core/sched"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/pool"
	"github.com/skyfall/arcade/internal/world"
	"go.uber.org/zap"
)

var ErrInvalidConfiguration = errors.New("invalid spawn configuration")

// Region is the strip entities appear in: a random X within HalfWidth of
// CenterX, at a fixed Height and Depth.
type Region struct {
	CenterX   float64
	HalfWidth float64
	Height    float64
	Depth     float64
}

// RandomX returns a uniformly distributed X in [CenterX-HalfWidth, CenterX+HalfWidth].
func (r *Region) RandomX(rng *rand.Rand) float64 {
	return r.CenterX - r.HalfWidth + rng.Float64()*2*r.HalfWidth
}

type Config struct {
	Templates  []*pool.Template
	Interval   time.Duration
	Region     *Region
	Recyclable []string // categories repositioned when they leave the play area
}

func (c *Config) validate() error {
	var errs []error
	if len(c.Templates) == 0 {
		errs = append(errs, errors.New("no templates"))
	}
	for i, t := range c.Templates {
		if t == nil {
			errs = append(errs, fmt.Errorf("template #%d is nil", i))
		}
	}
	if c.Region == nil {
		errs = append(errs, errors.New("no spawn region"))
	} else if c.Region.HalfWidth < 0 {
		errs = append(errs, errors.New("negative region width"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval %v is not positive", c.Interval))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// Lifecycle starts a new life for a spawned entity and takes it out of play
// again.
type Lifecycle interface {
	Activate(id ecs.EntityID) (event.Ref, bool)
	Remove(id ecs.EntityID) bool
}

type Deps struct {
	State     *world.State
	Pools     *pool.Service
	Lifecycle Lifecycle
	Sched     *sched.Scheduler
	Bus       *event.Bus
	Rand      *rand.Rand // nil = seeded from the clock
	Log       *zap.Logger
}

// Coordinator owns the spawn timer.
type Coordinator struct {
	cfg        Config
	err        error
	recyclable map[string]bool

	state     *world.State
	pools     *pool.Service
	lifecycle Lifecycle
	sched     *sched.Scheduler
	rng       *rand.Rand
	log       *zap.Logger

	task     sched.Handle
	running  bool
	spawned  int
	recycled int
	dropped  int
}

// New builds a coordinator. With an invalid configuration the error wraps
// ErrInvalidConfiguration and the returned coordinator refuses to start, so
// the host can keep running without spawning.
func New(cfg Config, d Deps) (*Coordinator, error) {
	rng := d.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Coordinator{
		cfg:        cfg,
		recyclable: make(map[string]bool, len(cfg.Recyclable)),
		state:      d.State,
		pools:      d.Pools,
		lifecycle:  d.Lifecycle,
		sched:      d.Sched,
		rng:        rng,
		log:        d.Log,
	}
	for _, cat := range cfg.Recyclable {
		c.recyclable[cat] = true
	}
	if err := cfg.validate(); err != nil {
		c.err = err
		d.Log.Error("spawner disabled", zap.Error(err))
		return c, err
	}
	event.Subscribe(d.Bus, c.onBoundary)
	return c, nil
}

// Start schedules one spawn every Interval. Starting twice is a no-op.
func (c *Coordinator) Start() error {
	if c.err != nil {
		c.log.Error("spawner not started", zap.Error(c.err))
		return c.err
	}
	if c.running {
		return nil
	}
	c.task = c.sched.Every(c.cfg.Interval, func() { c.SpawnOnce() })
	c.running = true
	c.log.Info("spawner started",
		zap.Duration("interval", c.cfg.Interval),
		zap.Int("templates", len(c.cfg.Templates)))
	return nil
}

// Stop cancels the spawn timer.
func (c *Coordinator) Stop() {
	if !c.running {
		return
	}
	c.sched.Cancel(c.task)
	c.running = false
	c.log.Info("spawner stopped", zap.Int("spawned", c.spawned), zap.Int("recycled", c.recycled))
}

func (c *Coordinator) Running() bool { return c.running }

// SpawnOnce picks a template uniformly and brings one entity of it into play:
// a free pooled instance when the template has a pool, a new entity
// otherwise. An exhausted pool skips this spawn.
func (c *Coordinator) SpawnOnce() (ecs.EntityID, bool) {
	if c.err != nil {
		return 0, false
	}
	t := c.cfg.Templates[c.rng.Intn(len(c.cfg.Templates))]

	var (
		id ecs.EntityID
		e  *pool.Entity
	)
	if c.pools.HasPool(t) {
		var err error
		if e, err = c.pools.Acquire(t); err != nil {
			return 0, false
		}
		id = e.ID
	} else {
		id = c.state.Materialize(t)
	}
	if _, ok := c.lifecycle.Activate(id); !ok {
		if e != nil {
			c.pools.Release(e)
		} else {
			c.state.Discard(id)
		}
		c.log.Warn("spawn activation failed", zap.String("template", t.Name), zap.Uint64("entity", uint64(id)))
		return 0, false
	}
	c.place(id)
	c.spawned++
	c.log.Debug("spawned", zap.String("template", t.Name), zap.Uint64("entity", uint64(id)))
	return id, true
}

// Recycle puts an entity that left the play area back at the top. Only
// recyclable categories are handled; stale refs are ignored.
func (c *Coordinator) Recycle(ref event.Ref) bool {
	if !c.recyclable[ref.Category] || !c.state.Current(ref) {
		return false
	}
	c.place(ref.ID)
	c.recycled++
	c.log.Debug("recycled", zap.String("category", ref.Category), zap.Uint64("entity", uint64(ref.ID)))
	return true
}

// onBoundary recycles what it can. Other hazards and pickups that left the
// play area are taken out of play so their pools refill; shots and the ship
// are left to lifecycle.
func (c *Coordinator) onBoundary(ev event.Boundary) {
	if c.Recycle(ev.Entity) || !c.state.Current(ev.Entity) {
		return
	}
	tag, ok := c.state.Tags.Get(ev.Entity.ID)
	if !ok || (tag.Kind != data.KindHazard && tag.Kind != data.KindPickup) {
		return
	}
	if c.lifecycle.Remove(ev.Entity.ID) {
		c.dropped++
		c.log.Debug("left play area", zap.String("category", ev.Entity.Category), zap.Uint64("entity", uint64(ev.Entity.ID)))
	}
}

func (c *Coordinator) place(id ecs.EntityID) {
	r := c.cfg.Region
	c.state.Place(id, world.Vec2{X: r.RandomX(c.rng), Y: r.Height}, r.Depth)
}

// Stats returns how many entities were spawned and recycled.
func (c *Coordinator) Stats() (spawned, recycled int) {
	return c.spawned, c.recycled
}

// Dropped returns how many non-recyclable entities were removed after leaving
// the play area.
func (c *Coordinator) Dropped() int { return c.dropped }
