// Package arena defines the Arena and Player domain types the module
// runtime operates on. Both are otherwise opaque to the core: an Arena is
// a broker scoped under the root plus an extra-data area, and a Player
// carries a coarse state enum plus its own extra-data area.
package arena

import (
	"github.com/google/uuid"

	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/slots"
)

// Arena is a broker scope rooted at the process-global broker, plus an
// extra-data area shared by every module attached to it.
type Arena struct {
	ID   string
	Name string
	*broker.Broker

	extra *slots.Entity
}

// New creates an arena broker as a child of root and populates its
// extra-data area from table's currently-live slots.
func New(root *broker.Broker, table *slots.Table, name string) *Arena {
	return &Arena{
		ID:     uuid.NewString(),
		Name:   name,
		Broker: root.NewChild(name),
		extra:  table.NewEntity(),
	}
}

// Extra returns the arena's extra-data slot entity.
func (a *Arena) Extra() *slots.Entity { return a.extra }

// Dispose tears down the arena's extra-data values and unregisters every
// interface still registered directly on its broker. Callers are expected
// to have already run DetachAllFromArena against the module manager.
func (a *Arena) Dispose(table *slots.Table) {
	table.Destroy(a.extra, false)
	a.Broker.DisposeLocal()
}
