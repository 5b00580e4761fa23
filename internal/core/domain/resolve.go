package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

const (
	unvisited = iota
	visiting
	visited
)

// Resolve expands the requested names into a build order in which every prerequisite precedes
// its dependents and no target appears twice.
//
// Prerequisites are visited depth-first in declared order before the target itself, so the
// result is deterministic for a given catalog and request. Resolution has no side effects; an
// unknown name or a cycle fails the whole request.
func (c *Catalog) Resolve(names []string) ([]*Target, error) {
	state := make(map[InternedString]int, len(c.targets))
	order := make([]*Target, 0, len(c.targets))
	var path []InternedString

	var visit func(name InternedString, requiredBy InternedString) error
	visit = func(name InternedString, requiredBy InternedString) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return cycleError(path, name)
		}

		target, ok := c.targets[name]
		if !ok {
			err := zerr.With(zerr.Wrap(ErrUnknownTarget, "target is not defined in the catalog"), "target", name.String())
			if !requiredBy.IsZero() {
				err = zerr.With(err, "required_by", requiredBy.String())
			}
			return err
		}

		state[name] = visiting
		path = append(path, name)

		for _, dep := range target.Prerequisites {
			if err := visit(dep, name); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		state[name] = visited
		order = append(order, target)
		return nil
	}

	for _, n := range names {
		if err := visit(NewInternedString(n), InternedString{}); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// ResolveAll resolves every target of the catalog in declaration order.
func (c *Catalog) ResolveAll() ([]*Target, error) {
	return c.Resolve(c.Names())
}

func cycleError(path []InternedString, closing InternedString) error {
	start := 0
	for i, n := range path {
		if n == closing {
			start = i
			break
		}
	}
	names := Strings(path[start:])
	names = append(names, closing.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "prerequisites form a cycle"), "cycle", strings.Join(names, " -> "))
}
