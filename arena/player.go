package arena

import (
	"sync"

	"github.com/gigamon-dev/SubspaceServer-sub008/slots"
)

// State is the coarse connection-state enum consumers filter players by.
// The core never interprets these values itself; it only stores and
// reports them.
type State int

const (
	Uninitialized State = iota
	Connecting
	NeedAuth
	Connected
	NeedGlobalSync
	DoGlobalCallbacks
	SendLoginResponse
	DoArenaSync
	ArenaRespAndCBS
	Playing
	LeavingArena
	LeavingZone
	FreeServerResources
)

// Player carries a coarse state enum and an extra-data area. It does not
// belong to any particular arena broker.
type Player struct {
	ID int

	mu    sync.Mutex
	state State

	extra *slots.Entity
}

// NewPlayer creates a player populated with a fresh value for every slot
// currently live in table.
func NewPlayer(table *slots.Table, id int) *Player {
	return &Player{ID: id, state: Uninitialized, extra: table.NewEntity()}
}

// Extra returns the player's extra-data slot entity.
func (p *Player) Extra() *slots.Entity { return p.extra }

// State returns the player's current coarse state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetState updates the player's coarse state.
func (p *Player) SetState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Recycle resets every slot value via its reset hook and returns the
// player's state to Uninitialized, for reuse by a player-ID allocator
// rather than full destruction.
func (p *Player) Recycle(table *slots.Table) {
	table.Destroy(p.extra, true)
	p.SetState(Uninitialized)
}

// Destroy releases every slot value via its release hook.
func (p *Player) Destroy(table *slots.Table) {
	table.Destroy(p.extra, false)
}
