// Package health tracks hit points for one entity and announces its one-shot
// destruction.
package health

import (
	"errors"
	"fmt"

	"github.com/skyfall/arcade/internal/core/event"
)

// ErrNegativeDamage rejects negative amounts. Healing is not part of this
// model: health only ever goes down.
var ErrNegativeDamage = errors.New("negative damage")

// Change is the payload of Model.Changed.
type Change struct {
	Current int
	Max     int
}

// Model is the Alive(h) -> Destroyed state machine. Initial state is
// Alive(max); once current reaches 0 the model is destroyed for good.
type Model struct {
	current int
	max     int

	// Changed fires after every applied hit, including the killing one.
	Changed event.Signal[Change]
	// Destroyed fires exactly once, when current reaches 0.
	Destroyed event.Signal[struct{}]
}

// New returns a model at full health. max < 1 is raised to 1.
func New(max int) *Model {
	if max < 1 {
		max = 1
	}
	return &Model{current: max, max: max}
}

func (m *Model) Current() int { return m.current }
func (m *Model) Max() int     { return m.max }

// IsDestroyed reports whether health reached zero.
func (m *Model) IsDestroyed() bool { return m.current == 0 }

// TakeDamage subtracts amount, clamping at zero. Damage to a destroyed model
// is ignored. A zero amount still counts as a hit and fires Changed.
func (m *Model) TakeDamage(amount int) error {
	if amount < 0 {
		return fmt.Errorf("take damage %d: %w", amount, ErrNegativeDamage)
	}
	if m.current == 0 {
		return nil
	}
	m.current -= amount
	if m.current < 0 {
		m.current = 0
	}
	m.Changed.Emit(Change{Current: m.current, Max: m.max})
	if m.current == 0 {
		m.Destroyed.Emit(struct{}{})
	}
	return nil
}

// Close disconnects every listener. Called when the owning entity leaves the
// simulation so no callback outlives it.
func (m *Model) Close() {
	m.Changed.Reset()
	m.Destroyed.Reset()
}
