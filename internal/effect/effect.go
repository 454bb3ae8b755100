// Package effect applies temporary weapon modifiers to subjects, with at most
// one active effect per subject. A new effect cancels and replaces the
// previous one's expiry; a cancelled expiry never runs.
package effect

import (
	"errors"
	"fmt"
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/core/sched"
	"github.com/skyfall/arcade/internal/pool"
	"go.uber.org/zap"
)

var ErrInvalidEffect = errors.New("invalid effect payload")

// Effect swaps the subject's weapon template for Duration. Duration <= 0
// keeps it until replaced or reverted.
type Effect struct {
	Name     string
	Weapon   *pool.Template
	Duration time.Duration
}

func (e *Effect) validate() error {
	switch {
	case e == nil:
		return errors.New("nil effect")
	case e.Name == "":
		return errors.New("effect has no name")
	case e.Weapon == nil:
		return fmt.Errorf("effect %s has no weapon", e.Name)
	}
	return nil
}

// Subject is anything that carries a swappable weapon and a baseline one.
type Subject interface {
	SubjectID() ecs.EntityID
	SetWeapon(t *pool.Template)
	BaseWeapon() *pool.Template
}

// Active describes the effect currently applied to a subject.
type Active struct {
	Effect  *Effect
	Started time.Duration // scheduler time when applied

	expiry sched.Handle
}

// Controller owns the active-effect records and their expiry timers.
type Controller struct {
	sched  *sched.Scheduler
	pools  *pool.Service
	active map[ecs.EntityID]*Active
	log    *zap.Logger

	// Changed fires after every apply and every revert.
	Changed event.Signal[event.EffectChanged]
}

func NewController(s *sched.Scheduler, pools *pool.Service, log *zap.Logger) *Controller {
	return &Controller{
		sched:  s,
		pools:  pools,
		active: make(map[ecs.EntityID]*Active),
		log:    log,
	}
}

// Apply makes eff the subject's only active effect. An invalid payload is
// rejected with ErrInvalidEffect and the current effect stays as it is.
func (c *Controller) Apply(subject Subject, eff *Effect) error {
	if subject == nil {
		return fmt.Errorf("apply effect: nil subject: %w", ErrInvalidEffect)
	}
	if err := eff.validate(); err != nil {
		c.log.Warn("rejected effect", zap.Uint64("subject", uint64(subject.SubjectID())), zap.Error(err))
		return fmt.Errorf("apply effect: %v: %w", err, ErrInvalidEffect)
	}
	id := subject.SubjectID()
	if prev, ok := c.active[id]; ok {
		c.sched.Cancel(prev.expiry)
		delete(c.active, id)
	}

	c.ensurePool(eff.Weapon)
	subject.SetWeapon(eff.Weapon)

	rec := &Active{Effect: eff, Started: c.sched.Now()}
	if eff.Duration > 0 {
		rec.expiry = c.sched.After(eff.Duration, func() {
			c.log.Debug("effect expired", zap.String("effect", eff.Name), zap.Uint64("subject", uint64(id)))
			c.RevertToBaseline(subject)
		})
	}
	c.active[id] = rec

	c.log.Info("effect applied",
		zap.String("effect", eff.Name),
		zap.String("weapon", eff.Weapon.Name),
		zap.Duration("duration", eff.Duration),
		zap.Uint64("subject", uint64(id)))
	c.Changed.Emit(event.EffectChanged{Subject: id, Name: eff.Name})
	return nil
}

// RevertToBaseline cancels any pending expiry, restores the base weapon and
// clears the active record. Used by expiry and by external logic such as
// subject death.
func (c *Controller) RevertToBaseline(subject Subject) {
	if subject == nil {
		return
	}
	id := subject.SubjectID()
	if rec, ok := c.active[id]; ok {
		c.sched.Cancel(rec.expiry)
		delete(c.active, id)
	}
	base := subject.BaseWeapon()
	if base != nil && !c.pools.HasPool(base) {
		c.log.Warn("base weapon pool missing on revert, creating it", zap.String("weapon", base.Name))
	}
	c.ensurePool(base)
	subject.SetWeapon(base)
	c.Changed.Emit(event.EffectChanged{Subject: id})
}

// Active returns the subject's current effect record.
func (c *Controller) Active(id ecs.EntityID) (Active, bool) {
	rec, ok := c.active[id]
	if !ok {
		return Active{}, false
	}
	return *rec, true
}

// Remaining returns how long until the subject's effect expires. ok is false
// when there is no effect or it is permanent.
func (c *Controller) Remaining(id ecs.EntityID) (time.Duration, bool) {
	rec, ok := c.active[id]
	if !ok {
		return 0, false
	}
	return c.sched.Remaining(rec.expiry)
}

// Forget drops a subject's record and timer without touching the subject.
// Used when the subject itself is removed.
func (c *Controller) Forget(id ecs.EntityID) {
	if rec, ok := c.active[id]; ok {
		c.sched.Cancel(rec.expiry)
		delete(c.active, id)
	}
}

func (c *Controller) ensurePool(t *pool.Template) {
	if t == nil || c.pools.HasPool(t) {
		return
	}
	if err := c.pools.CreateDefaultPool(t); err != nil {
		c.log.Error("create weapon pool", zap.String("weapon", t.Name), zap.Error(err))
	}
}
