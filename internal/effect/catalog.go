package effect

import (
	"fmt"

	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/pool"
)

// Catalog resolves power-up names to effects bound to weapon templates.
type Catalog struct {
	effects map[string]*Effect
}

// NewCatalog binds every power-up to its weapon template. A power-up naming
// an unknown or non-projectile template is an error.
func NewCatalog(powerUps *data.PowerUpTable, templates *pool.Catalog) (*Catalog, error) {
	c := &Catalog{effects: make(map[string]*Effect, powerUps.Count())}
	var err error
	powerUps.Each(func(p *data.PowerUp) {
		if err != nil {
			return
		}
		w := templates.Get(p.Weapon)
		if w == nil {
			err = fmt.Errorf("power-up %s: unknown weapon %q", p.Name, p.Weapon)
			return
		}
		if w.Spec.Kind != data.KindProjectile {
			err = fmt.Errorf("power-up %s: weapon %s is a %s, not a projectile", p.Name, w.Name, w.Spec.Kind)
			return
		}
		c.effects[p.Name] = &Effect{Name: p.Name, Weapon: w, Duration: p.Duration}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Effect returns the named effect, or nil.
func (c *Catalog) Effect(name string) *Effect {
	return c.effects[name]
}
