package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/config"
	"github.com/gigamon-dev/SubspaceServer-sub008/modules/chat"
	"github.com/gigamon-dev/SubspaceServer-sub008/slots"
)

func TestSendRejectsAfterFloodLimit(t *testing.T) {
	root := broker.NewRoot()
	playerSlots := slots.NewTable(8)

	m := chat.New(config.ChatConfig{FloodLimit: 2, FloodShutup: "1m"}, playerSlots)
	require.NoError(t, m.Load(root))

	pl := arena.NewPlayer(playerSlots, 1)

	require.NoError(t, m.Send(pl, "hello"))
	require.NoError(t, m.Send(pl, "world"))
	err := m.Send(pl, "one too many")
	assert.ErrorIs(t, err, chat.ErrFlooding)

	require.NoError(t, m.Unload(root))
}

func TestSendIsolatedPerPlayer(t *testing.T) {
	root := broker.NewRoot()
	playerSlots := slots.NewTable(8)
	m := chat.New(config.ChatConfig{FloodLimit: 1, FloodShutup: "1m"}, playerSlots)
	require.NoError(t, m.Load(root))

	a := arena.NewPlayer(playerSlots, 1)
	b := arena.NewPlayer(playerSlots, 2)

	require.NoError(t, m.Send(a, "hi"))
	assert.ErrorIs(t, m.Send(a, "again"), chat.ErrFlooding)
	// b has its own flood-control slot, unaffected by a's limiter.
	assert.NoError(t, m.Send(b, "hi"))
}

func TestMessageSentCallbackFires(t *testing.T) {
	root := broker.NewRoot()
	playerSlots := slots.NewTable(8)
	m := chat.New(config.ChatConfig{FloodLimit: 10, FloodShutup: "1m"}, playerSlots)
	require.NoError(t, m.Load(root))

	pl := arena.NewPlayer(playerSlots, 1)
	var gotMessage string
	root.RegisterCallback("chat.MessageSent", func(args ...any) {
		gotMessage = args[1].(string)
	})

	require.NoError(t, m.Send(pl, "hi"))
	assert.Equal(t, "hi", gotMessage)
}

func TestSendFailsWithoutFloodSlot(t *testing.T) {
	root := broker.NewRoot()
	playerSlots := slots.NewTable(8)
	otherSlots := slots.NewTable(8)
	m := chat.New(config.ChatConfig{FloodLimit: 10, FloodShutup: "1m"}, playerSlots)
	require.NoError(t, m.Load(root))

	pl := arena.NewPlayer(otherSlots, 1)
	assert.Error(t, m.Send(pl, "hi"))
}
