package module

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/logging"
	"github.com/gigamon-dev/SubspaceServer-sub008/timeout"
)

// Register adds reg to the manager in the Registered state without
// constructing or loading it. For a pre-constructed instance (reg.Instance
// set) the capability set is computed immediately; for a discovered-type
// registration it is computed once LoadModule succeeds in constructing one
// of reg.Candidates.
func (m *Manager) Register(reg Registration) error {
	if reg.Identity == "" {
		return fmt.Errorf("module: registration is missing an identity")
	}

	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	if _, exists := m.modules[reg.Identity]; exists {
		return fmt.Errorf("module %s: %w", reg.Identity, ErrAlreadyRegistered)
	}

	ms := &moduleState{
		reg:      reg,
		state:    StateRegistered,
		attached: make(map[string]*arena.Arena),
	}
	if reg.Instance != nil {
		caps := capabilitiesOf(reg.Instance)
		if caps == 0 {
			return fmt.Errorf("module %s: %w", reg.Identity, ErrNotAModule)
		}
		ms.instance = reg.Instance
		ms.caps = caps
	}
	if reg.PackagePath != "" {
		ms.origin = Origin{IsPlugin: true, PackagePath: reg.PackagePath}
	}
	m.modules[reg.Identity] = ms
	return nil
}

// LoadModule constructs (if not already pre-constructed) and loads the
// named module: resolves its dependency manifest against the root broker,
// invokes Load/LoadAsync, and on success appends it to the load-order list.
// If the global post-load phase has already run, PostLoad is invoked on it
// immediately (spec.md §4.5.2). A failed load leaves the module exactly
// Registered: no partial load-order entry, no retained dependency handles.
func (m *Manager) LoadModule(ctx context.Context, identity string) error {
	m.writeGate.Lock()
	defer m.writeGate.Unlock()

	m.dataMu.Lock()
	ms, ok := m.modules[identity]
	m.dataMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, identity)
	}
	if ms.state != StateRegistered {
		return fmt.Errorf("module %s: cannot load from state %s", identity, ms.state)
	}

	instance := ms.instance
	caps := ms.caps
	var handles []*broker.Handle
	if instance == nil {
		var err error
		instance, caps, handles, err = m.resolveAndConstruct(ms.reg)
		if err != nil {
			m.metrics.ModuleLoadFailed(identity)
			return fmt.Errorf("module %s: %w", identity, err)
		}
	}

	if err := m.runLoadHook(ctx, identity, instance, caps); err != nil {
		m.releaseHandles(handles)
		m.metrics.ModuleLoadFailed(identity)
		return fmt.Errorf("module %s: %w: %v", identity, ErrLoadFailed, err)
	}

	m.dataMu.Lock()
	ms.instance = instance
	ms.caps = caps
	ms.deps = handles
	ms.state = StateLoaded
	m.loadOrder = append(m.loadOrder, identity)
	postLoaded := m.isPostLoaded
	m.dataMu.Unlock()

	m.metrics.ModuleLoaded(identity)

	if postLoaded {
		if err := m.doPostLoadOne(ctx, identity); err != nil {
			logging.Errorf(ctx, "module %s: post-load immediately after load failed: %v", identity, err)
		}
	}
	return nil
}

func (m *Manager) runLoadHook(ctx context.Context, identity string, instance Module, caps Capability) error {
	return m.withBreaker(identity, func() error {
		if caps.Has(CapAsyncLoad) {
			cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.LoadTimeout)
			defer cancel()
			return instance.(AsyncLoader).LoadAsync(cctx, m.root)
		}
		if caps.Has(CapLoad) {
			return instance.(Loader).Load(m.root)
		}
		return fmt.Errorf("%w", ErrNotAModule)
	})
}

// resolveAndConstruct tries reg.Candidates in order (the caller is
// expected to list them richest-first) and returns the first one whose
// manifest fully resolves against the root broker.
func (m *Manager) resolveAndConstruct(reg Registration) (Module, Capability, []*broker.Handle, error) {
	if len(reg.Candidates) == 0 {
		return nil, 0, nil, ErrNoConstructor
	}

	considered := 0
	var constructErr error
	for _, cand := range reg.Candidates {
		considered++
		handles, providers, ok := m.resolveManifest(cand.Manifest)
		if !ok {
			continue
		}
		instance, err := func() (inst Module, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("constructor panicked: %v", r)
				}
			}()
			return cand.Construct(providers)
		}()
		if err != nil {
			m.releaseHandles(handles)
			if constructErr == nil {
				constructErr = err
			}
			continue
		}
		caps := capabilitiesOf(instance)
		if caps == 0 {
			m.releaseHandles(handles)
			continue
		}
		return instance, caps, handles, nil
	}
	if constructErr != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrConstructionFailed, constructErr)
	}
	return nil, 0, nil, fmt.Errorf("%w (%d candidate(s) considered)", ErrMissingDependencies, considered)
}

// resolveManifest resolves every dependency in manifest order, releasing
// anything already acquired if any single one is missing.
func (m *Manager) resolveManifest(manifest Manifest) ([]*broker.Handle, []any, bool) {
	handles := make([]*broker.Handle, 0, len(manifest))
	providers := make([]any, 0, len(manifest))
	for _, spec := range manifest {
		h, ok := m.root.GetInterface(spec.Kind, spec.Key)
		if !ok {
			m.releaseHandles(handles)
			return nil, nil, false
		}
		handles = append(handles, h)
		providers = append(providers, h.Provider())
	}
	return handles, providers, true
}

func (m *Manager) releaseHandles(handles []*broker.Handle) {
	for i := len(handles) - 1; i >= 0; i-- {
		if err := m.root.ReleaseInterface(handles[i]); err != nil {
			logging.Warnf(nil, "module: release dependency during rollback: %v", err)
		}
	}
}

// DoPostLoad idempotently transitions the manager from "loading is
// bootstrapping" to "steady state" by invoking PostLoad, in load order, on
// every module currently Loaded. A module whose PostLoad fails is logged
// and stays Loaded (not PostLoaded); it does not abort the phase for the
// others. Modules that offer the async variant run concurrently through an
// errgroup; modules with only the synchronous variant run inline, in order.
func (m *Manager) DoPostLoad(ctx context.Context) error {
	m.writeGate.Lock()
	defer m.writeGate.Unlock()

	m.dataMu.Lock()
	m.isPostLoaded = true
	order := make([]string, len(m.loadOrder))
	copy(order, m.loadOrder)
	m.dataMu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, identity := range order {
		identity := identity
		m.dataMu.Lock()
		ms, ok := m.modules[identity]
		m.dataMu.Unlock()
		if !ok {
			continue
		}
		if ms.caps.Has(CapAsyncPostLoad) {
			g.Go(func() error {
				_ = m.doPostLoadOne(gctx, identity)
				return nil
			})
			continue
		}
		_ = m.doPostLoadOne(ctx, identity)
	}
	return g.Wait()
}

func (m *Manager) doPostLoadOne(ctx context.Context, identity string) error {
	m.dataMu.Lock()
	ms, ok := m.modules[identity]
	m.dataMu.Unlock()
	if !ok || ms.state != StateLoaded {
		return nil
	}

	if !ms.caps.Has(CapPostLoad) && !ms.caps.Has(CapAsyncPostLoad) {
		m.dataMu.Lock()
		ms.state = StatePostLoaded
		m.dataMu.Unlock()
		return nil
	}

	err := m.withBreaker(identity, func() error {
		if ms.caps.Has(CapAsyncPostLoad) {
			cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.InitTimeout)
			defer cancel()
			return ms.instance.(AsyncPostLoader).PostLoadAsync(cctx, m.root)
		}
		return ms.instance.(PostLoader).PostLoad(m.root)
	})
	if err != nil {
		logging.Errorf(ctx, "module %s: post-load failed: %v", identity, err)
		return err
	}
	m.dataMu.Lock()
	ms.state = StatePostLoaded
	m.dataMu.Unlock()
	return nil
}

// DoPreUnload mirrors DoPostLoad: it runs PreUnload, in reverse load order,
// on every module currently PostLoaded, moving each back to Loaded, and
// flips the manager's post-loaded flag off.
func (m *Manager) DoPreUnload(ctx context.Context) error {
	m.writeGate.Lock()
	defer m.writeGate.Unlock()

	m.dataMu.Lock()
	order := make([]string, len(m.loadOrder))
	copy(order, m.loadOrder)
	m.dataMu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		identity := order[i]
		m.dataMu.Lock()
		ms, ok := m.modules[identity]
		m.dataMu.Unlock()
		if !ok || ms.state != StatePostLoaded {
			continue
		}
		if err := m.runPreUnloadHook(ctx, identity, ms); err != nil {
			logging.Errorf(ctx, "module %s: pre-unload stage failed: %v", identity, err)
			continue
		}
		m.dataMu.Lock()
		ms.state = StateLoaded
		m.dataMu.Unlock()
	}

	m.dataMu.Lock()
	m.isPostLoaded = false
	m.dataMu.Unlock()
	return nil
}

func (m *Manager) runPreUnloadHook(ctx context.Context, identity string, ms *moduleState) error {
	if !ms.caps.Has(CapPreUnload) && !ms.caps.Has(CapAsyncPreUnload) {
		return nil
	}
	return m.withBreaker(identity, func() error {
		if ms.caps.Has(CapAsyncPreUnload) {
			cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.InitTimeout)
			defer cancel()
			return ms.instance.(AsyncPreUnloader).PreUnloadAsync(cctx, m.root)
		}
		return ms.instance.(PreUnloader).PreUnload(m.root)
	})
}

// UnloadModule tears the named module down: it must have no remaining
// arena attachments, runs PreUnload if the module is still PostLoaded,
// then Unload, then Dispose, releases its dependency handles in reverse
// acquisition order, and removes it from the load-order list and the
// identity table entirely.
func (m *Manager) UnloadModule(ctx context.Context, identity string) error {
	m.writeGate.Lock()
	defer m.writeGate.Unlock()

	m.dataMu.Lock()
	ms, ok := m.modules[identity]
	var attachedCount int
	if ok {
		attachedCount = len(ms.attached)
	}
	m.dataMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, identity)
	}
	if attachedCount > 0 {
		return fmt.Errorf("module %s: %w", identity, ErrStillAttached)
	}

	if ms.state == StatePostLoaded {
		if err := m.runPreUnloadHook(ctx, identity, ms); err != nil {
			return fmt.Errorf("module %s: pre-unload: %w: %v", identity, ErrUnloadFailed, err)
		}
		ms.state = StateLoaded
	}

	if err := m.withBreaker(identity, func() error {
		if ms.caps.Has(CapAsyncUnload) {
			cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.LoadTimeout)
			defer cancel()
			return ms.instance.(AsyncUnloader).UnloadAsync(cctx, m.root)
		}
		if ms.caps.Has(CapUnload) {
			return ms.instance.(Unloader).Unload(m.root)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("module %s: %w: %v", identity, ErrUnloadFailed, err)
	}

	m.disposeInstance(ctx, identity, ms)

	m.releaseHandles(ms.deps)

	m.dataMu.Lock()
	ms.state = StateUnloaded
	ms.deps = nil
	m.removeFromLoadOrderLocked(identity)
	delete(m.modules, identity)
	origin := ms.origin
	m.dataMu.Unlock()

	m.metrics.ModuleUnloaded(identity)

	if origin.IsPlugin {
		m.plugins.onModuleUnloaded(ctx, origin.PackagePath, identity)
	}
	return nil
}

func (m *Manager) disposeInstance(ctx context.Context, identity string, ms *moduleState) {
	if ms.caps.Has(CapAsyncDisposable) {
		cctx, cancel := timeout.WithTimeout(ctx, m.timeouts.LoadTimeout)
		defer cancel()
		if err := ms.instance.(AsyncDisposer).DisposeAsync(cctx); err != nil {
			logging.Warnf(ctx, "module %s: async dispose failed: %v", identity, err)
		}
		return
	}
	if ms.caps.Has(CapDisposable) {
		ms.instance.(Disposer).Dispose()
	}
}

func (m *Manager) removeFromLoadOrderLocked(identity string) {
	for i, id := range m.loadOrder {
		if id == identity {
			m.loadOrder = append(m.loadOrder[:i], m.loadOrder[i+1:]...)
			return
		}
	}
}

// UnloadAll unloads every currently-loaded module in reverse load order,
// detaching it from any arenas it is still attached to first.
func (m *Manager) UnloadAll(ctx context.Context) error {
	for {
		m.dataMu.Lock()
		if len(m.loadOrder) == 0 {
			m.dataMu.Unlock()
			return nil
		}
		identity := m.loadOrder[len(m.loadOrder)-1]
		ms := m.modules[identity]
		arenas := make([]*arena.Arena, 0, len(ms.attached))
		for _, a := range ms.attached {
			arenas = append(arenas, a)
		}
		m.dataMu.Unlock()

		for _, a := range arenas {
			if err := m.Detach(ctx, identity, a); err != nil {
				logging.Errorf(ctx, "module %s: detach during UnloadAll: %v", identity, err)
			}
		}

		if err := m.UnloadModule(ctx, identity); err != nil {
			return fmt.Errorf("UnloadAll: module %s: %w", identity, err)
		}
	}
}

func (m *Manager) withBreaker(identity string, fn func() error) error {
	_, err := m.breakerFor(identity).Execute(func() (_ any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("module %s: hook panicked: %v", identity, r)
			}
		}()
		return nil, fn()
	})
	return err
}
