package spawn

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/core/sched"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/pool"
	"github.com/skyfall/arcade/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type waker struct {
	state   *world.State
	pools   *pool.Service
	refuse  bool
	woke    []ecs.EntityID
	removed []ecs.EntityID
}

func (w *waker) Activate(id ecs.EntityID) (event.Ref, bool) {
	if w.refuse || w.state.Wake(id) == 0 {
		return event.Ref{}, false
	}
	w.woke = append(w.woke, id)
	return w.state.Ref(id)
}

func (w *waker) Remove(id ecs.EntityID) bool {
	w.removed = append(w.removed, id)
	if !w.pools.ReleaseID(id) {
		w.state.Discard(id)
	}
	return true
}

type fixture struct {
	state *world.State
	sched *sched.Scheduler
	bus   *event.Bus
	pools *pool.Service
	act   *waker
}

func newFixture() *fixture {
	log := zap.NewNop()
	s := sched.New()
	st := world.NewState(ecs.NewWorld(), world.Bounds{MinX: -20, MaxX: 20, MinY: -20, MaxY: 20}, log)
	pools := pool.NewService(st, s, 10, log)
	return &fixture{
		state: st,
		sched: s,
		bus:   event.NewBus(),
		pools: pools,
		act:   &waker{state: st, pools: pools},
	}
}

func (f *fixture) deps(log *zap.Logger) Deps {
	return Deps{
		State:     f.state,
		Pools:     f.pools,
		Lifecycle: f.act,
		Sched:     f.sched,
		Bus:       f.bus,
		Rand:      rand.New(rand.NewSource(7)),
		Log:       log,
	}
}

func tmpl(name, category string, poolable bool, size int) *pool.Template {
	return pool.NewTemplate(&data.EntityTemplate{
		Name: name, Kind: data.KindHazard, Category: category,
		Poolable: poolable, PoolSize: size, FallSpeed: 1,
	})
}

func TestSpawnsOnePerIntervalInsideRegion(t *testing.T) {
	f := newFixture()
	a := tmpl("A", "meteorite", true, 20)
	b := tmpl("B", "coin", false, 0)
	if err := f.pools.CreateDefaultPool(a); err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{
		Templates: []*pool.Template{a, b},
		Interval:  2 * time.Second,
		Region:    &Region{CenterX: 0, HalfWidth: 5, Height: 12},
	}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	for step := 1; step <= 20; step++ {
		before := len(f.act.woke)
		f.sched.Advance(time.Second)
		got := len(f.act.woke) - before
		want := 0
		if step%2 == 0 {
			want = 1
		}
		if got != want {
			t.Fatalf("t=%ds: %d spawns, want %d", step, got, want)
		}
		if got == 0 {
			continue
		}
		id := f.act.woke[len(f.act.woke)-1]
		tr, _ := f.state.Transforms.Get(id)
		if tr.Pos.X < -5 || tr.Pos.X > 5 {
			t.Fatalf("spawned at x=%v, outside [-5,5]", tr.Pos.X)
		}
		if tr.Pos.Y != 12 {
			t.Fatalf("spawned at y=%v, want 12", tr.Pos.Y)
		}
		if tag, _ := f.state.Tags.Get(id); tag.Template != a && tag.Template != b {
			t.Fatalf("spawned unknown template %s", tag.Template)
		}
	}
	if spawned, _ := c.Stats(); spawned != 10 {
		t.Fatalf("spawned = %d, want 10", spawned)
	}
}

func TestTemplateChoiceCoversSet(t *testing.T) {
	f := newFixture()
	a := tmpl("A", "meteorite", false, 0)
	b := tmpl("B", "coin", false, 0)
	c, err := New(Config{Templates: []*pool.Template{a, b}, Interval: time.Second, Region: &Region{HalfWidth: 5}}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[*pool.Template]int{}
	for i := 0; i < 200; i++ {
		id, ok := c.SpawnOnce()
		if !ok {
			t.Fatal("spawn failed")
		}
		tag, _ := f.state.Tags.Get(id)
		seen[tag.Template]++
	}
	if seen[a] == 0 || seen[b] == 0 {
		t.Fatalf("template counts = A:%d B:%d", seen[a], seen[b])
	}
}

func TestInvalidConfigurationRefusesToStart(t *testing.T) {
	region := &Region{HalfWidth: 5}
	a := tmpl("A", "meteorite", false, 0)
	cases := map[string]Config{
		"no templates":  {Interval: time.Second, Region: region},
		"nil template":  {Templates: []*pool.Template{nil}, Interval: time.Second, Region: region},
		"no region":     {Templates: []*pool.Template{a}, Interval: time.Second},
		"zero interval": {Templates: []*pool.Template{a}, Region: region},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			core, logs := observer.New(zapcore.ErrorLevel)
			c, err := New(cfg, f.deps(zap.New(core)))
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
			if logs.Len() == 0 {
				t.Fatal("invalid configuration not logged")
			}
			if err := c.Start(); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("Start err = %v", err)
			}
			if c.Running() || f.sched.Len() != 0 {
				t.Fatal("disabled spawner scheduled work")
			}
			if _, ok := c.SpawnOnce(); ok {
				t.Fatal("disabled spawner spawned")
			}
		})
	}
}

func TestExhaustedPoolSkipsSpawn(t *testing.T) {
	f := newFixture()
	a := tmpl("A", "meteorite", true, 1)
	if err := f.pools.CreateDefaultPool(a); err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{Templates: []*pool.Template{a}, Interval: time.Second, Region: &Region{HalfWidth: 1}}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.SpawnOnce(); !ok {
		t.Fatal("first spawn failed")
	}
	if _, ok := c.SpawnOnce(); ok {
		t.Fatal("spawned from an exhausted pool")
	}
	if len(f.act.woke) != 1 {
		t.Fatalf("activations = %d, want 1", len(f.act.woke))
	}
}

func TestRecycleRepositionsRecyclableOnly(t *testing.T) {
	f := newFixture()
	rock := tmpl("rock", "meteorite", false, 0)
	shot := pool.NewTemplate(&data.EntityTemplate{Name: "shot", Kind: data.KindProjectile, Category: "bullet"})
	c, err := New(Config{
		Templates:  []*pool.Template{rock},
		Interval:   time.Second,
		Region:     &Region{CenterX: 3, HalfWidth: 1, Height: 10, Depth: 2},
		Recyclable: []string{"meteorite"},
	}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	r := f.state.Materialize(rock)
	f.state.Wake(r)
	f.state.Place(r, world.Vec2{X: 0, Y: -30}, 0)
	s := f.state.Materialize(shot)
	f.state.Wake(s)
	f.state.Place(s, world.Vec2{X: 0, Y: -30}, 0)

	f.state.DetectBoundary(func(b event.Boundary) { event.Emit(f.bus, b) })
	f.bus.SwapBuffers()
	f.bus.DispatchAll()

	tr, _ := f.state.Transforms.Get(r)
	if tr.Pos.Y != 10 || tr.Pos.X < 2 || tr.Pos.X > 4 || tr.Z != 2 {
		t.Fatalf("recycled rock at %+v z=%v", tr.Pos, tr.Z)
	}
	ts, _ := f.state.Transforms.Get(s)
	if ts.Pos.Y != -30 {
		t.Fatal("non-recyclable entity moved")
	}
	if _, recycled := c.Stats(); recycled != 1 {
		t.Fatalf("recycled = %d, want 1", recycled)
	}
	if len(f.act.removed) != 0 {
		t.Fatalf("removed %v, shots belong to lifecycle", f.act.removed)
	}

	stale, _ := f.state.Ref(r)
	f.state.Wake(r)
	if c.Recycle(stale) {
		t.Fatal("stale ref recycled")
	}
}

func TestStopCancelsTimer(t *testing.T) {
	f := newFixture()
	c, err := New(Config{
		Templates: []*pool.Template{tmpl("A", "meteorite", false, 0)},
		Interval:  time.Second,
		Region:    &Region{HalfWidth: 1},
	}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Start()
	_ = c.Start()
	f.sched.Advance(time.Second)
	c.Stop()
	f.sched.Advance(5 * time.Second)
	if len(f.act.woke) != 1 {
		t.Fatalf("spawns = %d, want 1", len(f.act.woke))
	}
}

func TestNonRecyclableHazardReturnsToPool(t *testing.T) {
	f := newFixture()
	rock := tmpl("rock", "meteorite", true, 1)
	if err := f.pools.CreatePool(rock, 1); err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{
		Templates:  []*pool.Template{rock},
		Interval:   time.Second,
		Region:     &Region{HalfWidth: 1, Height: 10},
		Recyclable: []string{"coin"},
	}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	id, ok := c.SpawnOnce()
	if !ok {
		t.Fatal("first spawn failed")
	}
	if _, ok := c.SpawnOnce(); ok {
		t.Fatal("pool of one should be exhausted")
	}
	f.state.Place(id, world.Vec2{Y: -30}, 0)
	f.state.DetectBoundary(func(b event.Boundary) { event.Emit(f.bus, b) })
	f.bus.SwapBuffers()
	f.bus.DispatchAll()

	if len(f.act.removed) != 1 || f.act.removed[0] != id || c.Dropped() != 1 {
		t.Fatalf("removed %v dropped %d, want the rock once", f.act.removed, c.Dropped())
	}
	if _, ok := c.SpawnOnce(); !ok {
		t.Fatal("rock not back in its pool")
	}
}

func TestFailedActivationReleasesInstance(t *testing.T) {
	f := newFixture()
	rock := tmpl("rock", "meteorite", true, 1)
	if err := f.pools.CreatePool(rock, 1); err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{
		Templates: []*pool.Template{rock},
		Interval:  time.Second,
		Region:    &Region{HalfWidth: 1},
	}, f.deps(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	f.act.refuse = true
	if _, ok := c.SpawnOnce(); ok {
		t.Fatal("spawn reported success without activation")
	}
	if _, active := f.pools.Stats(rock); active != 0 {
		t.Fatalf("active = %d after failed activation, want 0", active)
	}
	f.act.refuse = false
	if _, ok := c.SpawnOnce(); !ok {
		t.Fatal("instance still held after failed activation")
	}
}
