// Package clientsettings is an illustrative domain module demonstrating
// callback publishing and per-player slot usage for settings packing.
// The on-disk/wire encoding of settings is out of scope; only the shape of
// slot usage and callback wiring matters here.
package clientsettings

import (
	"fmt"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/slots"
)

// KindSettings is the interface kind this module publishes.
const KindSettings broker.Kind = "clientsettings.ISettingsService"

// CallbackSettingsChanged fires whenever a player's settings are updated,
// with the player and the changed key as arguments.
const CallbackSettingsChanged = "clientsettings.SettingsChanged"

// Service is what other modules resolve from the broker to read or change
// a player's packed settings.
type Service interface {
	Set(player *arena.Player, key string, value string) error
	Pack(player *arena.Player) map[string]string
}

type settingsState struct {
	values map[string]string
}

// Module owns the per-player settings slot and publishes Service.
type Module struct {
	playerSlots *slots.Table

	root        *broker.Broker
	settingsKey slots.TypedKey[*settingsState]
}

// New creates a client-settings module operating on the shared player
// extra-data table.
func New(playerSlots *slots.Table) *Module {
	return &Module{playerSlots: playerSlots}
}

// Identity implements module.Module.
func (m *Module) Identity() string { return "clientsettings.Module" }

// Load allocates the per-player settings slot and publishes the settings
// service.
func (m *Module) Load(root *broker.Broker) error {
	key, err := slots.Allocate(m.playerSlots,
		func() *settingsState { return &settingsState{values: make(map[string]string)} },
		func(s *settingsState) *settingsState { s.values = make(map[string]string); return s },
		func(s *settingsState) {},
	)
	if err != nil {
		return fmt.Errorf("clientsettings: allocate settings slot: %w", err)
	}
	m.settingsKey = key
	m.root = root

	return root.RegisterInterface(KindSettings, "", Service(m))
}

// Unload unpublishes the settings service and frees the settings slot.
func (m *Module) Unload(root *broker.Broker) error {
	if _, err := root.UnregisterInterface(KindSettings, "", Service(m)); err != nil {
		return err
	}
	return slots.Free(m.playerSlots, m.settingsKey)
}

// Set updates one setting and fires CallbackSettingsChanged.
func (m *Module) Set(player *arena.Player, key string, value string) error {
	st, ok := slots.Get(player.Extra(), m.settingsKey)
	if !ok {
		return fmt.Errorf("clientsettings: player has no settings slot")
	}
	st.values[key] = value
	m.root.FireCallback(CallbackSettingsChanged, player, key)
	return nil
}

// Pack returns a copy of the player's current settings, as a module
// downstream of the wire layer would send it.
func (m *Module) Pack(player *arena.Player) map[string]string {
	st, ok := slots.Get(player.Extra(), m.settingsKey)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(st.values))
	for k, v := range st.values {
		out[k] = v
	}
	return out
}
