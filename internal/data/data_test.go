package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const templatesYAML = `
templates:
  - name: bullet
    kind: projectile
    category: bullet
    poolable: true
    pool_size: 3
    damage: 1
    speed: 10
    lifetime: 5s
  - name: meteorite
    kind: hazard
    category: meteorite
    max_health: 3
    damage: 1
    fall_speed: 5
`

func TestParseTemplateTable(t *testing.T) {
	table, err := ParseTemplateTable([]byte(templatesYAML))
	if err != nil {
		t.Fatal(err)
	}
	if table.Count() != 2 {
		t.Fatalf("count = %d, want 2", table.Count())
	}
	b := table.Get("bullet")
	if b == nil || b.Kind != KindProjectile || !b.Poolable || b.PoolSize != 3 {
		t.Fatalf("bullet = %+v", b)
	}
	if b.Lifetime != 5*time.Second {
		t.Fatalf("lifetime = %v, want 5s", b.Lifetime)
	}
	var names []string
	table.Each(func(e *EntityTemplate) { names = append(names, e.Name) })
	if len(names) != 2 || names[0] != "bullet" || names[1] != "meteorite" {
		t.Fatalf("order = %v", names)
	}
	if table.Get("missing") != nil {
		t.Fatal("unknown template resolved")
	}
}

func TestParseTemplateTableRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"unknown kind": "templates:\n  - name: x\n    kind: tree\n",
		"missing name": "templates:\n  - kind: hazard\n",
		"duplicate":    "templates:\n  - name: x\n    kind: hazard\n  - name: x\n    kind: pickup\n",
	}
	for name, src := range cases {
		if _, err := ParseTemplateTable([]byte(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadPowerUpTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powerups.yaml")
	src := "powerups:\n  - name: spread\n    weapon: spread_shot\n    duration: 10s\n  - name: laser\n    weapon: laser\n    duration: 0s\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadPowerUpTable(path)
	if err != nil {
		t.Fatal(err)
	}
	p := table.Get("spread")
	if p == nil || p.Weapon != "spread_shot" || p.Duration != 10*time.Second {
		t.Fatalf("spread = %+v", p)
	}
	if table.Get("laser").Duration != 0 {
		t.Fatal("permanent power-up should have zero duration")
	}
}

func TestLoadPowerUpTableRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powerups.yaml")
	src := "powerups:\n  - {name: spread, weapon: a}\n  - {name: spread, weapon: b}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPowerUpTable(path); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestShippedTablesLoad(t *testing.T) {
	templates, err := LoadTemplateTable("../../data/yaml/templates.yaml")
	if err != nil {
		t.Fatal(err)
	}
	powerUps, err := LoadPowerUpTable("../../data/yaml/powerups.yaml")
	if err != nil {
		t.Fatal(err)
	}
	powerUps.Each(func(p *PowerUp) {
		w := templates.Get(p.Weapon)
		if w == nil || w.Kind != KindProjectile {
			t.Errorf("power-up %s: weapon %q is not a projectile template", p.Name, p.Weapon)
		}
	})
	templates.Each(func(e *EntityTemplate) {
		if e.Effect != "" && powerUps.Get(e.Effect) == nil {
			t.Errorf("template %s grants unknown power-up %q", e.Name, e.Effect)
		}
	})
}
