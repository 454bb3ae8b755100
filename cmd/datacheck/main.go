// datacheck validates a config file and the data it points at without
// running the simulation: templates, power-ups, spawn names and Lua scripts.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/skyfall/arcade/internal/config"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/effect"
	"github.com/skyfall/arcade/internal/pool"
	"github.com/skyfall/arcade/internal/scripting"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: datacheck <arcade.toml>")
		os.Exit(1)
	}
	problems, err := check(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, p := range problems {
		fmt.Println("  !", p)
	}
	if len(problems) > 0 {
		os.Exit(2)
	}
	fmt.Println("ok")
}

func check(path string) ([]string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	templates, err := data.LoadTemplateTable(cfg.Data.Templates)
	if err != nil {
		return nil, err
	}
	powerUps, err := data.LoadPowerUpTable(cfg.Data.PowerUps)
	if err != nil {
		return nil, err
	}
	catalog := pool.NewCatalog(templates)
	if _, err := effect.NewCatalog(powerUps, catalog); err != nil {
		return nil, err
	}
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, zap.NewNop())
	if err != nil {
		return nil, err
	}
	engine.Close()

	var problems []string
	for _, name := range cfg.Spawn.Templates {
		if catalog.Get(name) == nil {
			problems = append(problems, fmt.Sprintf("spawn template %q not defined", name))
		}
	}
	for _, name := range []string{cfg.Player.Template, cfg.Player.BaseWeapon} {
		if catalog.Get(name) == nil {
			problems = append(problems, fmt.Sprintf("player template %q not defined", name))
		}
	}
	templates.Each(func(t *data.EntityTemplate) {
		if t.Effect != "" && powerUps.Get(t.Effect) == nil {
			problems = append(problems, fmt.Sprintf("template %s grants unknown power-up %q", t.Name, t.Effect))
		}
	})

	// Pool plan: how many instances each poolable template preallocates.
	var plan []string
	total := 0
	catalog.Each(func(t *pool.Template) {
		if !t.Poolable {
			return
		}
		size := t.Size
		if size <= 0 {
			size = cfg.Pool.DefaultSize
		}
		total += size
		plan = append(plan, fmt.Sprintf("%-20s %4d", t.Name, size))
	})
	sort.Strings(plan)
	for _, line := range plan {
		fmt.Println("  pool", line)
	}
	fmt.Printf("  pool %-20s %4d\n", "total", total)
	return problems, nil
}
