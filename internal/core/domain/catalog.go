package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Catalog holds every known target, keyed by name, in declaration order.
type Catalog struct {
	targets map[InternedString]*Target
	order   []InternedString
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{targets: make(map[InternedString]*Target)}
}

// Add registers a target. Names must be unique.
func (c *Catalog) Add(t *Target) error {
	if _, exists := c.targets[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTargetAlreadyExists, "duplicate target"), "target", t.Name.String())
	}
	c.targets[t.Name] = t
	c.order = append(c.order, t.Name)
	return nil
}

// Get looks a target up by name.
func (c *Catalog) Get(name string) (*Target, bool) {
	t, ok := c.targets[NewInternedString(name)]
	return t, ok
}

// Len returns the number of targets.
func (c *Catalog) Len() int {
	return len(c.order)
}

// All yields targets in declaration order.
func (c *Catalog) All() iter.Seq[*Target] {
	return func(yield func(*Target) bool) {
		for _, name := range c.order {
			if !yield(c.targets[name]) {
				return
			}
		}
	}
}

// Names returns every target name in declaration order.
func (c *Catalog) Names() []string {
	return Strings(c.order)
}
