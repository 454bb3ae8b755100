package event

import "github.com/skyfall/arcade/internal/core/ecs"

// Ref names an entity as seen by the collision layer. Epoch is the entity's
// activation count when the observation was made; handlers drop refs whose
// epoch no longer matches so a recycled instance never receives stale hits.
type Ref struct {
	ID       ecs.EntityID
	Category string
	Epoch    uint32
}

// Contact reports that two entities overlapped this tick. Delivered once per
// overlapping pair per tick.
type Contact struct {
	A, B Ref
}

// Boundary reports that an entity crossed the recycling boundary.
type Boundary struct {
	Entity Ref
}

// EntityDestroyed is emitted after an entity ran its destruction path.
type EntityDestroyed struct {
	Entity Ref
}

// PlayerHealthChanged mirrors a player's health model after each hit.
type PlayerHealthChanged struct {
	Player  ecs.EntityID
	Current int
	Max     int
}

// PlayerDied is emitted once when a player's health reaches zero.
type PlayerDied struct {
	Player ecs.EntityID
}

// CoinsChanged carries a player's new coin total.
type CoinsChanged struct {
	Player ecs.EntityID
	Coins  int
}

// EffectChanged is emitted when a timed effect is applied (Name set) or the
// subject reverts to its baseline (Name empty).
type EffectChanged struct {
	Subject ecs.EntityID
	Name    string
}

// PlayerMoving is emitted when a player starts or stops moving.
type PlayerMoving struct {
	Player ecs.EntityID
	Moving bool
}
