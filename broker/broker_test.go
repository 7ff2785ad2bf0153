package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kindGreeter Kind = "test.IGreeter"

func TestRegisterGetReleaseUnregisterRoundTrip(t *testing.T) {
	b := NewRoot()
	provider := "greeter-instance"

	require.NoError(t, b.RegisterInterface(kindGreeter, "", provider))

	h, ok := b.GetInterface(kindGreeter, "")
	require.True(t, ok)
	assert.Equal(t, provider, h.Provider())

	require.NoError(t, b.ReleaseInterface(h))

	count, err := b.UnregisterInterface(kindGreeter, "", provider)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, ok = b.GetInterface(kindGreeter, "")
	assert.False(t, ok)
}

func TestUnregisterWithOutstandingReferenceIsNoOp(t *testing.T) {
	b := NewRoot()
	provider := "svc"
	require.NoError(t, b.RegisterInterface(kindGreeter, "", provider))

	h, ok := b.GetInterface(kindGreeter, "")
	require.True(t, ok)

	count, err := b.UnregisterInterface(kindGreeter, "", provider)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// the provider must still be resolvable
	_, ok = b.GetInterface(kindGreeter, "")
	assert.True(t, ok)

	require.NoError(t, b.ReleaseInterface(h))
}

func TestChildObservesParentRegistrationsMadeAfterCreation(t *testing.T) {
	root := NewRoot()
	child := root.NewChild("arena-1")

	_, ok := child.GetInterface(kindGreeter, "")
	assert.False(t, ok)

	require.NoError(t, root.RegisterInterface(kindGreeter, "", "root-svc"))

	h, ok := child.GetInterface(kindGreeter, "")
	require.True(t, ok, "child broker must fall through to parent live, not via a snapshot")
	assert.Equal(t, "root-svc", h.Provider())
	require.NoError(t, child.ReleaseInterface(h))
}

func TestChildShadowsParent(t *testing.T) {
	root := NewRoot()
	child := root.NewChild("arena-1")

	require.NoError(t, root.RegisterInterface(kindGreeter, "", "root-svc"))
	require.NoError(t, child.RegisterInterface(kindGreeter, "", "child-svc"))

	h, ok := child.GetInterface(kindGreeter, "")
	require.True(t, ok)
	assert.Equal(t, "child-svc", h.Provider())
	require.NoError(t, child.ReleaseInterface(h))

	hr, ok := root.GetInterface(kindGreeter, "")
	require.True(t, ok)
	assert.Equal(t, "root-svc", hr.Provider())
	require.NoError(t, root.ReleaseInterface(hr))
}

func TestRegisterSameProviderTwiceIsAlreadyRegistered(t *testing.T) {
	b := NewRoot()
	provider := "svc"
	require.NoError(t, b.RegisterInterface(kindGreeter, "", provider))
	err := b.RegisterInterface(kindGreeter, "", provider)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterDifferentProviderShadowsRatherThanFails(t *testing.T) {
	b := NewRoot()
	require.NoError(t, b.RegisterInterface(kindGreeter, "", "first"))
	require.NoError(t, b.RegisterInterface(kindGreeter, "", "second"))

	h, ok := b.GetInterface(kindGreeter, "")
	require.True(t, ok)
	assert.Equal(t, "second", h.Provider())
	require.NoError(t, b.ReleaseInterface(h))
}

// TestCallbackOrdering is scenario S6.
func TestCallbackOrdering(t *testing.T) {
	root := NewRoot()
	arena := root.NewChild("A1")

	var arenaOrder []string
	var rootOrder []string

	h1 := func(args ...any) { arenaOrder = append(arenaOrder, "h1") }
	h2 := func(args ...any) { arenaOrder = append(arenaOrder, "h2") }
	h3 := func(args ...any) { arenaOrder = append(arenaOrder, "h3") }
	h4 := func(args ...any) { rootOrder = append(rootOrder, "h4") }

	arena.RegisterCallback("N", h1)
	arena.RegisterCallback("N", h2)
	arena.RegisterCallback("N", h3)
	root.RegisterCallback("N", h4)

	arena.FireCallback("N")
	assert.Equal(t, []string{"h1", "h2", "h3"}, arenaOrder)
	assert.Empty(t, rootOrder)

	root.FireCallback("N")
	assert.Equal(t, []string{"h4"}, rootOrder)
	assert.Equal(t, []string{"h1", "h2", "h3"}, arenaOrder)
}

func TestCallbackRegistrationIsIdempotentByHandlerIdentity(t *testing.T) {
	b := NewRoot()
	calls := 0
	h := func(args ...any) { calls++ }

	b.RegisterCallback("N", h)
	b.RegisterCallback("N", h)
	b.FireCallback("N")
	assert.Equal(t, 1, calls)
}

func TestFireCallbackPanicDoesNotSuppressLaterHandlers(t *testing.T) {
	b := NewRoot()
	var ran []string
	b.RegisterCallback("N", func(args ...any) { ran = append(ran, "a"); panic("boom") })
	b.RegisterCallback("N", func(args ...any) { ran = append(ran, "b") })

	assert.NotPanics(t, func() { b.FireCallback("N") })
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestFireCallbackDispatchesOverSnapshot(t *testing.T) {
	b := NewRoot()
	var ran []string

	var second Callback = func(args ...any) { ran = append(ran, "second") }
	first := func(args ...any) {
		ran = append(ran, "first")
		b.RegisterCallback("N", func(args ...any) { ran = append(ran, "added-during-dispatch") })
		b.UnregisterCallback("N", second)
	}
	b.RegisterCallback("N", first)
	b.RegisterCallback("N", second)

	b.FireCallback("N")
	assert.Equal(t, []string{"first", "second"}, ran)

	ran = nil
	b.FireCallback("N")
	assert.Equal(t, []string{"first", "added-during-dispatch"}, ran)
}

func TestDisposeLocalWarnsButDoesNotBlockOnLeaks(t *testing.T) {
	b := NewRoot()
	require.NoError(t, b.RegisterInterface(kindGreeter, "", "svc"))
	_, ok := b.GetInterface(kindGreeter, "")
	require.True(t, ok)

	assert.NotPanics(t, func() { b.DisposeLocal() })
	_, ok = b.GetInterface(kindGreeter, "")
	assert.False(t, ok)
}
