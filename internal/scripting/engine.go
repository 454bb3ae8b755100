package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for gameplay formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	missing map[string]bool // functions already reported missing
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// Missing subdirectories are skipped; every formula has a Go fallback.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	for _, sub := range []string{"core", "combat", "item"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log, missing: make(map[string]bool)}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically to define or override formulas.
func (e *Engine) LoadString(name, src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// HitContext describes one damage application.
type HitContext struct {
	BaseDamage      int
	Source          string // template name of the projectile or hazard
	TargetKind      string
	TargetCategory  string
	TargetHealth    int
	TargetMaxHealth int
}

// RewardContext describes a coin pickup.
type RewardContext struct {
	Value int // template value of the coin
	Coins int // coins the player already holds
}

// CalcProjectileDamage calls Lua calc_projectile_damage(ctx). Falls back to
// the projectile's base damage.
func (e *Engine) CalcProjectileDamage(ctx HitContext) int {
	return e.callDamage("calc_projectile_damage", ctx)
}

// CalcContactDamage calls Lua calc_contact_damage(ctx) for hazard-vs-player
// contacts. Falls back to the hazard's base damage.
func (e *Engine) CalcContactDamage(ctx HitContext) int {
	return e.callDamage("calc_contact_damage", ctx)
}

func (e *Engine) callDamage(name string, ctx HitContext) int {
	t := e.vm.NewTable()
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))
	t.RawSetString("source", lua.LString(ctx.Source))

	tgt := e.vm.NewTable()
	tgt.RawSetString("kind", lua.LString(ctx.TargetKind))
	tgt.RawSetString("category", lua.LString(ctx.TargetCategory))
	tgt.RawSetString("health", lua.LNumber(ctx.TargetHealth))
	tgt.RawSetString("max_health", lua.LNumber(ctx.TargetMaxHealth))
	t.RawSetString("target", tgt)

	dmg, ok := e.callNumber(name, t)
	if !ok {
		return ctx.BaseDamage
	}
	if dmg < 0 {
		e.log.Warn("lua damage formula returned negative value",
			zap.String("func", name), zap.Int("damage", dmg))
		return 0
	}
	return dmg
}

// CalcCoinReward calls Lua calc_coin_reward(ctx). Falls back to the coin value,
// or 1 when the template has none.
func (e *Engine) CalcCoinReward(ctx RewardContext) int {
	fallback := ctx.Value
	if fallback <= 0 {
		fallback = 1
	}
	t := e.vm.NewTable()
	t.RawSetString("value", lua.LNumber(ctx.Value))
	t.RawSetString("coins", lua.LNumber(ctx.Coins))
	n, ok := e.callNumber("calc_coin_reward", t)
	if !ok || n < 0 {
		return fallback
	}
	return n
}

// callNumber calls a global Lua function with one table argument and reads a
// numeric result. ok is false when the function is missing or fails.
func (e *Engine) callNumber(name string, arg *lua.LTable) (int, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		if !e.missing[name] {
			e.missing[name] = true
			e.log.Warn("lua function not found, using fallback", zap.String("func", name))
		}
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return 0, false
	}
	return int(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
