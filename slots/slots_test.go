package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ count int }

// TestSlotIsolation is scenario S4: two entities sharing one slot table
// never see each other's mutations, and a freed slot disappears everywhere.
func TestSlotIsolation(t *testing.T) {
	table := NewTable(8)

	k1, err := Allocate(table,
		func() *counter { return &counter{count: 0} },
		func(c *counter) *counter { c.count = 0; return c },
		func(c *counter) {},
	)
	require.NoError(t, err)

	p1 := table.NewEntity()
	p2 := table.NewEntity()

	v1, ok := Get(p1, k1)
	require.True(t, ok)
	v1.count = 5

	v2, ok := Get(p2, k1)
	require.True(t, ok)
	assert.Equal(t, 0, v2.count)

	require.NoError(t, Free(table, k1))

	_, ok = Get(p1, k1)
	assert.False(t, ok)
}

func TestAllocateFreeRoundTrip(t *testing.T) {
	table := NewTable(4)

	k1, err := Allocate(table, func() int { return 1 }, func(v int) int { return v }, func(int) {})
	require.NoError(t, err)
	require.NoError(t, Free(table, k1))

	// The freed key is dense-reusable: a fresh allocation lands on the same
	// key number since it was the smallest unused one again.
	k2, err := Allocate(table, func() int { return 2 }, func(v int) int { return v }, func(int) {})
	require.NoError(t, err)
	assert.Equal(t, Key(k1), Key(k2))
}

func TestAllocateExhausted(t *testing.T) {
	table := NewTable(1)

	_, err := Allocate(table, func() int { return 0 }, func(v int) int { return v }, func(int) {})
	require.NoError(t, err)

	_, err = Allocate(table, func() int { return 0 }, func(v int) int { return v }, func(int) {})
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestNewEntityPopulatesAllLiveSlots(t *testing.T) {
	table := NewTable(4)

	releases := 0
	k1, err := Allocate(table,
		func() *counter { return &counter{count: 7} },
		func(c *counter) *counter { return c },
		func(c *counter) { releases++ },
	)
	require.NoError(t, err)

	e := table.NewEntity()
	v, ok := Get(e, k1)
	require.True(t, ok)
	assert.Equal(t, 7, v.count)

	table.Destroy(e, false)
	assert.Equal(t, 1, releases)

	_, ok = Get(e, k1)
	assert.False(t, ok)
}

func TestDestroyRecycleRunsResetInsteadOfRelease(t *testing.T) {
	table := NewTable(4)

	released := false
	k1, err := Allocate(table,
		func() *counter { return &counter{count: 1} },
		func(c *counter) *counter { c.count = 0; return c },
		func(c *counter) { released = true },
	)
	require.NoError(t, err)

	e := table.NewEntity()
	v, _ := Get(e, k1)
	v.count = 9

	table.Destroy(e, true)
	assert.False(t, released)

	v2, ok := Get(e, k1)
	require.True(t, ok)
	assert.Equal(t, 0, v2.count)
}
