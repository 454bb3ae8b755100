package world

import (
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/sched"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/pool"
)

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Scale(f float64) Vec2   { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }

// Transform places an entity in the play field. Rot is the tilt around the
// view axis in degrees.
type Transform struct {
	Pos Vec2
	Z   float64
	Rot float64
}

// Body is the motion applied by the motion system. Fall is a constant
// downward drift for kinematic falling objects.
type Body struct {
	Vel  Vec2
	Spin float64
	Fall float64
}

// Collider is an axis-aligned box around Transform.Pos.
type Collider struct {
	HalfW, HalfH float64
	Enabled      bool
}

// Tag links an entity to its template and tracks its participation state.
type Tag struct {
	Template *pool.Template
	Kind     data.Kind
	Category string
	Epoch    uint32 // activation count, bumped on every Wake
	Live     bool
	Retired  bool // destruction or release already handled this activation
	outside  bool // last boundary check found it outside the play area
}

// Player holds the controllable ship's state. It is the subject of timed
// effects.
type Player struct {
	ID           ecs.EntityID
	Weapon       *pool.Template
	Base         *pool.Template
	InputEnabled bool
	Coins        int
	MaxHealth    int
	MoveSpeed    float64
	TiltAngle    float64
	TiltSpeed    float64
	FireRate     time.Duration
	FireOffset   float64
	Cooldown     sched.Handle
}

func (p *Player) SubjectID() ecs.EntityID    { return p.ID }
func (p *Player) SetWeapon(t *pool.Template) { p.Weapon = t }
func (p *Player) BaseWeapon() *pool.Template { return p.Base }
