package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind selects which lifecycle rules apply to an entity.
type Kind string

const (
	KindProjectile Kind = "projectile"
	KindHazard     Kind = "hazard"
	KindPickup     Kind = "pickup"
	KindPlayer     Kind = "player"
)

func (k Kind) Valid() bool {
	switch k {
	case KindProjectile, KindHazard, KindPickup, KindPlayer:
		return true
	}
	return false
}

// EntityTemplate holds static data for one class of entity loaded from YAML.
type EntityTemplate struct {
	Name       string        `yaml:"name"`
	Kind       Kind          `yaml:"kind"`
	Category   string        `yaml:"category"` // tag used by boundary recycling and pickups
	Poolable   bool          `yaml:"poolable"`
	PoolSize   int           `yaml:"pool_size"` // 0 = configured default
	MaxHealth  int           `yaml:"max_health"`
	Damage     int           `yaml:"damage"` // projectile hit or hazard contact damage
	Speed      float64       `yaml:"speed"`  // projectile launch speed
	FallSpeed  float64       `yaml:"fall_speed"`
	Lifetime   time.Duration `yaml:"lifetime"` // projectile self-release; 0 = none
	HalfWidth  float64       `yaml:"half_width"`
	HalfHeight float64       `yaml:"half_height"`
	Value      int           `yaml:"value"`  // coin value
	Effect     string        `yaml:"effect"` // power-up granted on pickup
}

type templateListFile struct {
	Templates []EntityTemplate `yaml:"templates"`
}

// TemplateTable holds all entity templates indexed by name.
type TemplateTable struct {
	templates map[string]*EntityTemplate
	order     []string
}

// LoadTemplateTable loads entity templates from a YAML file.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	t, err := ParseTemplateTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	return t, nil
}

// ParseTemplateTable decodes a template list. Names must be unique and kinds known.
func ParseTemplateTable(raw []byte) (*TemplateTable, error) {
	var f templateListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	t := &TemplateTable{templates: make(map[string]*EntityTemplate, len(f.Templates))}
	for i := range f.Templates {
		tmpl := &f.Templates[i]
		if tmpl.Name == "" {
			return nil, fmt.Errorf("template #%d has no name", i)
		}
		if !tmpl.Kind.Valid() {
			return nil, fmt.Errorf("template %s: unknown kind %q", tmpl.Name, tmpl.Kind)
		}
		if _, dup := t.templates[tmpl.Name]; dup {
			return nil, fmt.Errorf("template %s defined twice", tmpl.Name)
		}
		if tmpl.Kind != KindPlayer && tmpl.MaxHealth < 0 {
			return nil, fmt.Errorf("template %s: negative max_health", tmpl.Name)
		}
		t.templates[tmpl.Name] = tmpl
		t.order = append(t.order, tmpl.Name)
	}
	return t, nil
}

// Get returns a template by name, or nil if not found.
func (t *TemplateTable) Get(name string) *EntityTemplate {
	return t.templates[name]
}

// Each visits templates in file order.
func (t *TemplateTable) Each(fn func(*EntityTemplate)) {
	for _, name := range t.order {
		fn(t.templates[name])
	}
}

// Count returns the number of loaded templates.
func (t *TemplateTable) Count() int {
	return len(t.templates)
}
