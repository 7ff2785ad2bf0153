package module

import (
	"context"
	"fmt"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/timeout"
)

// Attach calls the module's AttachModule (sync or async) and, on success,
// adds a to the module's attached-set. Valid only when the module is
// Loaded or PostLoaded and declares an arena-attach capability.
func (m *Manager) Attach(ctx context.Context, identity string, a *arena.Arena) error {
	m.writeGate.Lock()
	defer m.writeGate.Unlock()

	m.dataMu.Lock()
	ms, ok := m.modules[identity]
	m.dataMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, identity)
	}
	if ms.state != StateLoaded && ms.state != StatePostLoaded {
		return fmt.Errorf("module %s: not in a loaded state", identity)
	}
	if !ms.caps.Has(CapArenaAttach) && !ms.caps.Has(CapAsyncArenaAttach) {
		return fmt.Errorf("module %s: does not declare an arena-attach capability", identity)
	}

	var accepted bool
	err := m.withBreaker(identity, func() error {
		var innerErr error
		if ms.caps.Has(CapAsyncArenaAttach) {
			cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.LoadTimeout)
			defer cancel()
			accepted, innerErr = ms.instance.(AsyncArenaAttacher).AttachModuleAsync(cctx, a)
		} else {
			accepted, innerErr = ms.instance.(ArenaAttacher).AttachModule(a)
		}
		return innerErr
	})
	if err != nil {
		return fmt.Errorf("module %s: attach to arena %s: %v", identity, a.ID, err)
	}
	if !accepted {
		return fmt.Errorf("module %s: attach to arena %s was rejected", identity, a.ID)
	}

	m.dataMu.Lock()
	ms.attached[a.ID] = a
	m.dataMu.Unlock()
	m.metrics.AttachChanged(identity, a.ID, true)
	return nil
}

// Detach is the inverse of Attach. Detaching an arena the module isn't
// currently attached to is a no-op. If DetachModule itself fails, the
// attachment persists and the caller is told.
func (m *Manager) Detach(ctx context.Context, identity string, a *arena.Arena) error {
	m.writeGate.Lock()
	defer m.writeGate.Unlock()

	m.dataMu.Lock()
	ms, ok := m.modules[identity]
	var attached bool
	if ok {
		_, attached = ms.attached[a.ID]
	}
	m.dataMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, identity)
	}
	if !attached {
		return nil
	}

	err := m.withBreaker(identity, func() error {
		if ms.caps.Has(CapAsyncArenaAttach) {
			cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.LoadTimeout)
			defer cancel()
			return ms.instance.(AsyncArenaAttacher).DetachModuleAsync(cctx, a)
		}
		if ms.caps.Has(CapArenaAttach) {
			return ms.instance.(ArenaAttacher).DetachModule(a)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("module %s: detach from arena %s failed, attachment persists: %v", identity, a.ID, err)
	}

	m.dataMu.Lock()
	delete(ms.attached, a.ID)
	m.dataMu.Unlock()
	m.metrics.AttachChanged(identity, a.ID, false)
	return nil
}

// DetachAllFromArena detaches every module currently attached to a, used
// when the arena itself is being torn down. It iterates a snapshot taken
// up front, so modules detaching during the call don't perturb iteration.
func (m *Manager) DetachAllFromArena(ctx context.Context, a *arena.Arena) error {
	m.dataMu.Lock()
	var identities []string
	for identity, ms := range m.modules {
		if _, ok := ms.attached[a.ID]; ok {
			identities = append(identities, identity)
		}
	}
	m.dataMu.Unlock()

	var firstErr error
	for _, identity := range identities {
		if err := m.Detach(ctx, identity, a); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
