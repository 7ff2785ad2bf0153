// Package chat is an illustrative domain module demonstrating per-player
// extra-data slot usage for flood control. It is an external collaborator
// of the core, not part of it — the wire protocol and filtering logic are
// out of scope; only the shape of slot usage matters.
package chat

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/config"
	"github.com/gigamon-dev/SubspaceServer-sub008/slots"
)

// KindChat is the interface kind the chat module publishes.
const KindChat broker.Kind = "chat.IChatService"

// ErrFlooding is returned by Send when a player's message rate exceeds
// their configured flood limit.
var ErrFlooding = fmt.Errorf("chat: message rejected, flood limit exceeded")

// Service is what other modules resolve from the broker to send chat.
type Service interface {
	Send(player *arena.Player, message string) error
}

type floodState struct {
	limiter *rate.Limiter
}

// Module implements the chat service and owns the per-player flood-control
// slot.
type Module struct {
	cfg         config.ChatConfig
	playerSlots *slots.Table

	root     *broker.Broker
	floodKey slots.TypedKey[*floodState]
}

// New creates a chat module configured from cfg, operating on the shared
// player extra-data table.
func New(cfg config.ChatConfig, playerSlots *slots.Table) *Module {
	return &Module{cfg: cfg, playerSlots: playerSlots}
}

// Identity implements module.Module.
func (m *Module) Identity() string { return "chat.Module" }

func (m *Module) newLimiter() *rate.Limiter {
	limit := m.cfg.FloodLimit
	if limit <= 0 {
		limit = 10
	}
	shutup := config.ParseDurationOrDefault(m.cfg.FloodShutup, 60*time.Second)
	// A token refills every shutup/limit, with a burst of limit — this
	// replaces the source's "AddSeconds on a discarded value" decay bug
	// with a straightforward token bucket.
	return rate.NewLimiter(rate.Every(shutup/time.Duration(limit)), limit)
}

// Load allocates the per-player flood-control slot and publishes the chat
// service into the root broker.
func (m *Module) Load(root *broker.Broker) error {
	key, err := slots.Allocate(m.playerSlots,
		func() *floodState { return &floodState{limiter: m.newLimiter()} },
		func(fs *floodState) *floodState { fs.limiter = m.newLimiter(); return fs },
		func(fs *floodState) {},
	)
	if err != nil {
		return fmt.Errorf("chat: allocate flood-control slot: %w", err)
	}
	m.floodKey = key
	m.root = root

	return root.RegisterInterface(KindChat, "", Service(m))
}

// Unload unpublishes the chat service and frees the flood-control slot.
func (m *Module) Unload(root *broker.Broker) error {
	if _, err := root.UnregisterInterface(KindChat, "", Service(m)); err != nil {
		return err
	}
	return slots.Free(m.playerSlots, m.floodKey)
}

// Send checks player's flood limiter and, if it allows the message, fires
// the "chat.MessageSent" callback on the root broker.
func (m *Module) Send(player *arena.Player, message string) error {
	fs, ok := slots.Get(player.Extra(), m.floodKey)
	if !ok {
		return fmt.Errorf("chat: player has no flood-control slot")
	}
	if !fs.limiter.Allow() {
		return ErrFlooding
	}
	m.root.FireCallback("chat.MessageSent", player, message)
	return nil
}
