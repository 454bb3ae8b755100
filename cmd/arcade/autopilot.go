package main

import (
	"math/rand"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/world"
	"go.uber.org/zap"
)

// autopilot stands in for a keyboard: it lines the ship up under the lowest
// hazard and taps fire.
type autopilot struct {
	state  *world.State
	player ecs.EntityID
	rng    *rand.Rand
	tap    bool
}

func newAutopilot(ws *world.State, player ecs.EntityID, rng *rand.Rand) *autopilot {
	return &autopilot{state: ws, player: player, rng: rng}
}

func (a *autopilot) Axis() world.Vec2 {
	self, ok := a.state.Transforms.Get(a.player)
	if !ok {
		return world.Vec2{}
	}
	targetX, found := 0.0, false
	lowest := 0.0
	a.state.Tags.Each(func(id ecs.EntityID, tag *world.Tag) {
		if !tag.Live || tag.Kind != data.KindHazard {
			return
		}
		tr, ok := a.state.Transforms.Get(id)
		if !ok {
			return
		}
		if !found || tr.Pos.Y < lowest {
			targetX, lowest, found = tr.Pos.X, tr.Pos.Y, true
		}
	})
	if !found {
		return world.Vec2{X: a.rng.Float64()*2 - 1}
	}
	dx := targetX - self.Pos.X
	switch {
	case dx > 0.2:
		return world.Vec2{X: 1}
	case dx < -0.2:
		return world.Vec2{X: -1}
	}
	return world.Vec2{}
}

func (a *autopilot) FireHeld() bool {
	a.tap = !a.tap
	return a.tap
}

// scoreboard follows the bus for the run summary.
type scoreboard struct {
	log       *zap.Logger
	destroyed int
	coins     int
	over      bool
}

func newScoreboard(log *zap.Logger) *scoreboard {
	return &scoreboard{log: log}
}

func (s *scoreboard) subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.EntityDestroyed) { s.destroyed++ })
	event.Subscribe(bus, func(ev event.CoinsChanged) {
		s.coins = ev.Coins
		s.log.Info("coins", zap.Int("total", ev.Coins))
	})
	event.Subscribe(bus, func(ev event.PlayerHealthChanged) {
		s.log.Info("player hit", zap.Int("health", ev.Current), zap.Int("max", ev.Max))
	})
	event.Subscribe(bus, func(event.PlayerDied) { s.over = true })
}

func (s *scoreboard) fields(ticks uint64) []zap.Field {
	return []zap.Field{
		zap.Uint64("ticks", ticks),
		zap.Int("destroyed", s.destroyed),
		zap.Int("coins", s.coins),
	}
}
