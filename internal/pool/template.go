package pool

import "github.com/skyfall/arcade/internal/data"

// Template identifies a class of reusable entity. Identity is the pointer:
// two templates built from equal data are still different pool keys.
type Template struct {
	Name     string
	Category string
	Poolable bool
	Size     int // initial pool size, 0 = service default
	Spec     *data.EntityTemplate
}

// NewTemplate wraps static template data. The returned pointer is the key
// every pool operation uses, so build it once per template at startup.
func NewTemplate(spec *data.EntityTemplate) *Template {
	return &Template{
		Name:     spec.Name,
		Category: spec.Category,
		Poolable: spec.Poolable,
		Size:     spec.PoolSize,
		Spec:     spec,
	}
}

func (t *Template) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Catalog holds the one Template per entity template name.
type Catalog struct {
	byName map[string]*Template
	order  []*Template
}

func NewCatalog(table *data.TemplateTable) *Catalog {
	c := &Catalog{byName: make(map[string]*Template, table.Count())}
	table.Each(func(spec *data.EntityTemplate) {
		t := NewTemplate(spec)
		c.byName[spec.Name] = t
		c.order = append(c.order, t)
	})
	return c
}

// Get returns the template with the given name, or nil.
func (c *Catalog) Get(name string) *Template {
	return c.byName[name]
}

// Each visits templates in load order.
func (c *Catalog) Each(fn func(*Template)) {
	for _, t := range c.order {
		fn(t)
	}
}

func (c *Catalog) Len() int { return len(c.order) }
