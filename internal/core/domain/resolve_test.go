package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func newTarget(name string, prereqs ...string) *domain.Target {
	return &domain.Target{
		Name:          domain.NewInternedString(name),
		Kind:          domain.KindManual,
		Prerequisites: domain.NewInternedStrings(prereqs...),
		MultiPlatform: true,
	}
}

func newCatalog(t *testing.T, targets ...*domain.Target) *domain.Catalog {
	t.Helper()
	c := domain.NewCatalog()
	for _, tgt := range targets {
		require.NoError(t, c.Add(tgt))
	}
	return c
}

func names(targets []*domain.Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Name.String()
	}
	return out
}

func TestCatalog_Resolve(t *testing.T) {
	catalog := func(t *testing.T) *domain.Catalog {
		return newCatalog(t,
			newTarget("zstd"),
			newTarget("usb"),
			newTarget("bladerf", "usb"),
		)
	}

	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{name: "prerequisite first", requested: []string{"bladerf"}, want: []string{"usb", "bladerf"}},
		{name: "already covered request", requested: []string{"bladerf", "usb"}, want: []string{"usb", "bladerf"}},
		{name: "independent targets keep request order", requested: []string{"zstd", "usb"}, want: []string{"zstd", "usb"}},
		{name: "duplicates collapse", requested: []string{"usb", "usb", "bladerf"}, want: []string{"usb", "bladerf"}},
		{name: "empty request", requested: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := catalog(t).Resolve(tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(order))
		})
	}
}

func TestCatalog_Resolve_DiamondIsOrderedAndUnique(t *testing.T) {
	c := newCatalog(t,
		newTarget("app", "left", "right"),
		newTarget("left", "base"),
		newTarget("right", "base", "extra"),
		newTarget("base"),
		newTarget("extra"),
	)

	order, err := c.Resolve([]string{"app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "left", "extra", "right", "app"}, names(order))

	position := make(map[string]int)
	for i, n := range names(order) {
		_, dup := position[n]
		require.False(t, dup, "duplicate %s", n)
		position[n] = i
	}
	for _, tgt := range order {
		for _, p := range tgt.Prerequisites {
			assert.Less(t, position[p.String()], position[tgt.Name.String()])
		}
	}
}

func TestCatalog_Resolve_Cycle(t *testing.T) {
	c := newCatalog(t,
		newTarget("A", "B"),
		newTarget("B", "A"),
	)

	order, err := c.Resolve([]string{"A"})
	require.Error(t, err)
	assert.Nil(t, order)
	require.ErrorIs(t, err, domain.ErrCycleDetected)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "A -> B -> A", zErr.Metadata()["cycle"])
}

func TestCatalog_Resolve_CycleBehindPrerequisite(t *testing.T) {
	c := newCatalog(t,
		newTarget("top", "a"),
		newTarget("a", "b"),
		newTarget("b", "c"),
		newTarget("c", "a"),
	)

	_, err := c.Resolve([]string{"top"})
	require.ErrorIs(t, err, domain.ErrCycleDetected)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "a -> b -> c -> a", zErr.Metadata()["cycle"])
}

func TestCatalog_Resolve_Unknown(t *testing.T) {
	c := newCatalog(t, newTarget("usb"), newTarget("bladerf", "usb", "ghost"))

	t.Run("requested", func(t *testing.T) {
		_, err := c.Resolve([]string{"nope"})
		require.ErrorIs(t, err, domain.ErrUnknownTarget)
		assert.Contains(t, err.Error(), "unknown target")
	})

	t.Run("prerequisite", func(t *testing.T) {
		_, err := c.Resolve([]string{"bladerf"})
		require.ErrorIs(t, err, domain.ErrUnknownTarget)

		var zErr *zerr.Error
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "ghost", zErr.Metadata()["target"])
		assert.Equal(t, "bladerf", zErr.Metadata()["required_by"])
	})
}

func TestCatalog_ResolveAll(t *testing.T) {
	c := newCatalog(t, newTarget("b", "a"), newTarget("a"), newTarget("c"))
	order, err := c.ResolveAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(order))
}

func TestCatalog_Add(t *testing.T) {
	c := domain.NewCatalog()
	require.NoError(t, c.Add(newTarget("usb")))

	err := c.Add(newTarget("usb"))
	require.ErrorIs(t, err, domain.ErrTargetAlreadyExists)

	got, ok := c.Get("usb")
	require.True(t, ok)
	assert.Equal(t, "usb", got.Name.String())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"usb"}, c.Names())
}
