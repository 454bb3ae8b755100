package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PowerUp describes a timed weapon swap granted by a pickup.
type PowerUp struct {
	Name     string        `yaml:"name"`
	Weapon   string        `yaml:"weapon"`   // projectile template name
	Duration time.Duration `yaml:"duration"` // <= 0: permanent until replaced
}

type powerUpListFile struct {
	PowerUps []PowerUp `yaml:"powerups"`
}

// PowerUpTable holds power-ups indexed by name.
type PowerUpTable struct {
	powerUps map[string]*PowerUp
	order    []string
}

// LoadPowerUpTable loads power-up definitions from a YAML file.
func LoadPowerUpTable(path string) (*PowerUpTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read powerups: %w", err)
	}
	var f powerUpListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse powerups %s: %w", path, err)
	}
	t := &PowerUpTable{powerUps: make(map[string]*PowerUp, len(f.PowerUps))}
	for i := range f.PowerUps {
		p := &f.PowerUps[i]
		if p.Name == "" {
			return nil, fmt.Errorf("parse powerups %s: power-up #%d has no name", path, i)
		}
		if _, dup := t.powerUps[p.Name]; dup {
			return nil, fmt.Errorf("parse powerups %s: power-up %s defined twice", path, p.Name)
		}
		t.powerUps[p.Name] = p
		t.order = append(t.order, p.Name)
	}
	return t, nil
}

// Get returns a power-up by name, or nil if not found.
func (t *PowerUpTable) Get(name string) *PowerUp {
	return t.powerUps[name]
}

// Each visits power-ups in file order.
func (t *PowerUpTable) Each(fn func(*PowerUp)) {
	for _, name := range t.order {
		fn(t.powerUps[name])
	}
}

// Count returns the number of loaded power-ups.
func (t *PowerUpTable) Count() int {
	return len(t.powerUps)
}
