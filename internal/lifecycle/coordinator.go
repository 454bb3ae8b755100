// Package lifecycle decides what happens to entities when they touch each
// other: damage, pickups, and the destruction path that hands an entity back
// to its pool or removes it for good.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/core/sched"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/effect"
	"github.com/skyfall/arcade/internal/health"
	"github.com/skyfall/arcade/internal/pool"
	"github.com/skyfall/arcade/internal/scripting"
	"github.com/skyfall/arcade/internal/world"
	"go.uber.org/zap"
)

var (
	ErrNoHealth     = errors.New("entity has no health")
	ErrInvalidSetup = errors.New("invalid player setup")
)

// Formulas computes damage and rewards. Implemented by *scripting.Engine.
type Formulas interface {
	CalcProjectileDamage(ctx scripting.HitContext) int
	CalcContactDamage(ctx scripting.HitContext) int
	CalcCoinReward(ctx scripting.RewardContext) int
}

// EffectSource resolves the effect a power-up pickup grants.
type EffectSource interface {
	Effect(name string) *effect.Effect
}

// Deps are the collaborators a Coordinator is wired with.
type Deps struct {
	State    *world.State
	Pools    *pool.Service
	Effects  *effect.Controller
	Formulas Formulas
	PowerUps EffectSource
	FX       FX // nil = LogFX
	Sched    *sched.Scheduler
	Bus      *event.Bus
	Log      *zap.Logger
}

// Coordinator owns per-activation entity state: health models, the
// destruction guard and the timers of fired projectiles.
type Coordinator struct {
	state    *world.State
	pools    *pool.Service
	effects  *effect.Controller
	formulas Formulas
	powerUps EffectSource
	fx       FX
	sched    *sched.Scheduler
	bus      *event.Bus
	log      *zap.Logger
}

// New wires a coordinator and subscribes it to contact and boundary events.
func New(d Deps) *Coordinator {
	fx := d.FX
	if fx == nil {
		fx = LogFX{Log: d.Log}
	}
	c := &Coordinator{
		state:    d.State,
		pools:    d.Pools,
		effects:  d.Effects,
		formulas: d.Formulas,
		powerUps: d.PowerUps,
		fx:       fx,
		sched:    d.Sched,
		bus:      d.Bus,
		log:      d.Log,
	}
	event.Subscribe(d.Bus, c.onContact)
	event.Subscribe(d.Bus, c.onBoundary)
	return c
}

// Activate starts a new life for an entity that was just spawned or taken
// from a pool: the destruction guard is reset and, when the template has hit
// points, a fresh health model is attached. The returned ref carries the new
// epoch.
func (c *Coordinator) Activate(id ecs.EntityID) (event.Ref, bool) {
	c.dropHealth(id)
	if c.state.Wake(id) == 0 {
		c.log.Warn("activate unknown entity", zap.Uint64("entity", uint64(id)))
		return event.Ref{}, false
	}
	ref, _ := c.state.Ref(id)
	tag, _ := c.state.Tags.Get(id)

	maxHP := tag.Template.Spec.MaxHealth
	p, isPlayer := c.state.Players.Get(id)
	if isPlayer {
		maxHP = p.MaxHealth
	}
	if maxHP <= 0 {
		return ref, true
	}

	m := health.New(maxHP)
	c.state.Healths.Set(id, m)
	switch {
	case isPlayer:
		m.Changed.Connect(func(ch health.Change) {
			event.Emit(c.bus, event.PlayerHealthChanged{Player: id, Current: ch.Current, Max: ch.Max})
		})
		m.Destroyed.Connect(func(struct{}) { c.playerDied(p) })
	case tag.Kind == data.KindHazard:
		m.Destroyed.Connect(func(struct{}) {
			if c.state.Current(ref) {
				c.Destroy(id)
			}
		})
	}
	return ref, true
}

// ApplyDamage deals amount to the entity's health model.
func (c *Coordinator) ApplyDamage(id ecs.EntityID, amount int) error {
	m, ok := c.state.Healths.Get(id)
	if !ok {
		return fmt.Errorf("apply damage to %d: %w", id, ErrNoHealth)
	}
	return m.TakeDamage(amount)
}

// Destroy runs the destruction path once per activation: the entity stops
// colliding and moving, the destruction effect is started, and the entity
// goes back to its pool or is queued for removal. Reports whether the path
// ran.
func (c *Coordinator) Destroy(id ecs.EntityID) bool {
	tag, ok := c.state.Tags.Get(id)
	if !ok || !tag.Live || tag.Retired {
		return false
	}
	ref, _ := c.state.Ref(id)
	tag.Retired = true
	c.state.Halt(id)
	c.fx.PlayDestruction(ref)
	c.remove(id)
	event.Emit(c.bus, event.EntityDestroyed{Entity: ref})
	c.log.Debug("entity destroyed", zap.String("template", tag.Template.Name), zap.Uint64("entity", uint64(id)))
	return true
}

// Remove takes an entity out of play without the destruction effect. Pooled
// entities are released, others are queued for removal at end of tick.
func (c *Coordinator) Remove(id ecs.EntityID) bool {
	tag, ok := c.state.Tags.Get(id)
	if !ok || !tag.Live || tag.Retired {
		return false
	}
	tag.Retired = true
	c.remove(id)
	return true
}

func (c *Coordinator) remove(id ecs.EntityID) {
	c.dropHealth(id)
	if !c.pools.ReleaseID(id) {
		c.state.Discard(id)
	}
}

func (c *Coordinator) dropHealth(id ecs.EntityID) {
	if m, ok := c.state.Healths.Get(id); ok {
		m.Close()
		c.state.Healths.Remove(id)
	}
}

func (c *Coordinator) onContact(ev event.Contact) {
	if !c.state.Current(ev.A) || !c.state.Current(ev.B) {
		return
	}
	ta, _ := c.state.Tags.Get(ev.A.ID)
	tb, _ := c.state.Tags.Get(ev.B.ID)
	a, b := ev.A, ev.B
	if rank(tb.Kind) < rank(ta.Kind) {
		a, b = b, a
		ta, tb = tb, ta
	}

	switch {
	case ta.Kind == data.KindProjectile:
		// Shots pass through each other and through the ship that fired them.
		if tb.Kind != data.KindProjectile && tb.Kind != data.KindPlayer {
			c.projectileHit(a, b)
		}
	case ta.Kind == data.KindHazard && tb.Kind == data.KindPlayer:
		c.hazardHit(a, b)
	case ta.Kind == data.KindPickup && tb.Kind == data.KindPlayer:
		c.pickup(a, b)
	}
}

// rank orders the two sides of a contact so the acting entity comes first.
func rank(k data.Kind) int {
	switch k {
	case data.KindProjectile:
		return 0
	case data.KindHazard:
		return 1
	case data.KindPickup:
		return 2
	}
	return 3
}

// projectileHit damages the target when it has health and consumes the
// projectile either way. A projectile already consumed in this activation is
// ignored, so one shot touching several targets in one tick damages only the
// first.
func (c *Coordinator) projectileHit(shot, target event.Ref) {
	st, _ := c.state.Tags.Get(shot.ID)
	if st.Retired {
		return
	}
	if m, ok := c.state.Healths.Get(target.ID); ok {
		tt, _ := c.state.Tags.Get(target.ID)
		dmg := c.formulas.CalcProjectileDamage(scripting.HitContext{
			BaseDamage:      st.Template.Spec.Damage,
			Source:          st.Template.Name,
			TargetKind:      string(tt.Kind),
			TargetCategory:  tt.Category,
			TargetHealth:    m.Current(),
			TargetMaxHealth: m.Max(),
		})
		if err := m.TakeDamage(dmg); err != nil {
			c.log.Error("projectile damage", zap.Error(err))
		}
	}
	c.Remove(shot.ID)
}

func (c *Coordinator) hazardHit(hazard, player event.Ref) {
	ht, _ := c.state.Tags.Get(hazard.ID)
	if ht.Retired {
		return
	}
	if m, ok := c.state.Healths.Get(player.ID); ok && !m.IsDestroyed() {
		dmg := c.formulas.CalcContactDamage(scripting.HitContext{
			BaseDamage:      ht.Template.Spec.Damage,
			Source:          ht.Template.Name,
			TargetKind:      string(data.KindPlayer),
			TargetCategory:  player.Category,
			TargetHealth:    m.Current(),
			TargetMaxHealth: m.Max(),
		})
		if err := m.TakeDamage(dmg); err != nil {
			c.log.Error("contact damage", zap.Error(err))
		}
	}
	c.Destroy(hazard.ID)
}

func (c *Coordinator) pickup(item, player event.Ref) {
	it, _ := c.state.Tags.Get(item.ID)
	p, ok := c.state.Players.Get(player.ID)
	if !ok || !p.InputEnabled || it.Retired {
		return
	}
	spec := it.Template.Spec
	switch {
	case spec.Effect != "":
		eff := c.powerUps.Effect(spec.Effect)
		if eff == nil {
			c.log.Warn("pickup grants unknown power-up", zap.String("template", spec.Name), zap.String("effect", spec.Effect))
			break
		}
		// Apply logs its own rejection.
		_ = c.effects.Apply(p, eff)
	default:
		p.Coins += c.formulas.CalcCoinReward(scripting.RewardContext{Value: spec.Value, Coins: p.Coins})
		event.Emit(c.bus, event.CoinsChanged{Player: p.ID, Coins: p.Coins})
	}
	c.Remove(item.ID)
}

func (c *Coordinator) onBoundary(ev event.Boundary) {
	if !c.state.Current(ev.Entity) {
		return
	}
	tag, _ := c.state.Tags.Get(ev.Entity.ID)
	if tag.Kind == data.KindProjectile {
		c.Remove(ev.Entity.ID)
	}
}

func (c *Coordinator) playerDied(p *world.Player) {
	p.InputEnabled = false
	c.sched.Cancel(p.Cooldown)
	c.effects.RevertToBaseline(p)
	event.Emit(c.bus, event.PlayerDied{Player: p.ID})
	c.log.Info("player died", zap.Uint64("player", uint64(p.ID)), zap.Int("coins", p.Coins))
}

// PlayerSetup describes the controllable ship.
type PlayerSetup struct {
	Template   *pool.Template
	BaseWeapon *pool.Template
	MaxHealth  int
	MoveSpeed  float64
	TiltAngle  float64
	TiltSpeed  float64
	FireRate   time.Duration
	FireOffset float64
	Start      world.Vec2
}

// AddPlayer creates the player entity, makes sure its base weapon has a pool
// and activates it at the start position.
func (c *Coordinator) AddPlayer(s PlayerSetup) (ecs.EntityID, error) {
	switch {
	case s.Template == nil:
		return 0, fmt.Errorf("add player: no template: %w", ErrInvalidSetup)
	case s.BaseWeapon == nil:
		return 0, fmt.Errorf("add player: no base weapon: %w", ErrInvalidSetup)
	case s.Template.Spec.Kind != data.KindPlayer:
		return 0, fmt.Errorf("add player: template %s is a %s: %w", s.Template.Name, s.Template.Spec.Kind, ErrInvalidSetup)
	}
	if s.MaxHealth <= 0 {
		s.MaxHealth = s.Template.Spec.MaxHealth
	}
	if !c.pools.HasPool(s.BaseWeapon) {
		if err := c.pools.CreateDefaultPool(s.BaseWeapon); err != nil {
			return 0, fmt.Errorf("add player: %w", err)
		}
	}

	id := c.state.Materialize(s.Template)
	c.state.Players.Set(id, &world.Player{
		ID:           id,
		Weapon:       s.BaseWeapon,
		Base:         s.BaseWeapon,
		InputEnabled: true,
		MaxHealth:    s.MaxHealth,
		MoveSpeed:    s.MoveSpeed,
		TiltAngle:    s.TiltAngle,
		TiltSpeed:    s.TiltSpeed,
		FireRate:     s.FireRate,
		FireOffset:   s.FireOffset,
	})
	c.Activate(id)
	c.state.Place(id, s.Start, 0)
	c.log.Info("player added",
		zap.Uint64("player", uint64(id)),
		zap.String("weapon", s.BaseWeapon.Name),
		zap.Int("max_health", s.MaxHealth))
	return id, nil
}

// RemovePlayer drops the player and its effect record.
func (c *Coordinator) RemovePlayer(id ecs.EntityID) {
	p, ok := c.state.Players.Get(id)
	if !ok {
		return
	}
	c.sched.Cancel(p.Cooldown)
	c.effects.Forget(id)
	c.dropHealth(id)
	c.state.Discard(id)
}

// Fire launches one projectile of the player's current weapon. It does
// nothing while the fire-rate cooldown runs, after death, or when the weapon
// pool has no free instance. Reports whether a shot left.
func (c *Coordinator) Fire(id ecs.EntityID) bool {
	p, ok := c.state.Players.Get(id)
	if !ok || !p.InputEnabled || c.sched.Pending(p.Cooldown) {
		return false
	}
	shot, err := c.pools.Acquire(p.Weapon)
	if err != nil {
		return false
	}
	tr, _ := c.state.Transforms.Get(id)
	ref, _ := c.Activate(shot.ID)
	c.state.Place(shot.ID, tr.Pos.Add(world.Vec2{Y: p.FireOffset}), tr.Z)

	spec := shot.Template.Spec
	if b, ok := c.state.Bodies.Get(shot.ID); ok {
		b.Vel = world.Vec2{Y: spec.Speed}
	}
	if spec.Lifetime > 0 {
		shot.BindTimer(c.sched.After(spec.Lifetime, func() {
			if c.state.Current(ref) {
				c.Remove(ref.ID)
			}
		}))
	}
	if p.FireRate > 0 {
		p.Cooldown = c.sched.After(p.FireRate, func() {})
	}
	return true
}
