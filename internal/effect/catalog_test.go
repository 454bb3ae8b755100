package effect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/pool"
)

func catalogFixture(t *testing.T, powerUps string) (*data.PowerUpTable, *pool.Catalog) {
	t.Helper()
	templates, err := data.ParseTemplateTable([]byte(`
templates:
  - {name: laser, kind: projectile, poolable: true}
  - {name: rock, kind: hazard}
`))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "powerups.yaml")
	if err := os.WriteFile(path, []byte(powerUps), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := data.LoadPowerUpTable(path)
	if err != nil {
		t.Fatal(err)
	}
	return table, pool.NewCatalog(templates)
}

func TestCatalogBindsWeaponTemplates(t *testing.T) {
	table, templates := catalogFixture(t, "powerups:\n  - {name: beam, weapon: laser, duration: 5s}\n")
	c, err := NewCatalog(table, templates)
	if err != nil {
		t.Fatal(err)
	}
	eff := c.Effect("beam")
	if eff == nil || eff.Weapon != templates.Get("laser") || eff.Duration != 5*time.Second {
		t.Fatalf("beam = %+v", eff)
	}
	if c.Effect("missing") != nil {
		t.Fatal("unknown power-up resolved")
	}
}

func TestCatalogRejectsBadWeapons(t *testing.T) {
	for name, src := range map[string]string{
		"unknown":        "powerups:\n  - {name: x, weapon: nope}\n",
		"not projectile": "powerups:\n  - {name: x, weapon: rock}\n",
	} {
		table, templates := catalogFixture(t, src)
		if _, err := NewCatalog(table, templates); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
