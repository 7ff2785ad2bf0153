// Package module implements the Module Manager: discovery, dependency
// resolution, the two-phase load/post-load lifecycle, arena attachment,
// and hot unload including isolated plug-in packages.
package module

import (
	"context"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
)

// Module is the marker every loadable unit implements. A bare Module with
// none of the capability interfaces below cannot be loaded: Register
// rejects such a pre-constructed instance with ErrNotAModule, and
// LoadModule skips a candidate whose constructed instance has none.
type Module interface {
	// Identity is stable, human-assigned, and used as the map key
	// throughout the manager (the "fully-qualified type name" of spec.md).
	Identity() string
}

// Loader is the synchronous Load capability.
type Loader interface {
	Load(root *broker.Broker) error
}

// AsyncLoader is the asynchronous Load capability. A module implements at
// most one of Loader/AsyncLoader; the manager prefers AsyncLoader when both
// are present, matching "the manager selects whichever the module
// implements" with async given the richer signature.
type AsyncLoader interface {
	LoadAsync(ctx context.Context, root *broker.Broker) error
}

// PostLoader runs after every module has loaded, for cross-module wiring.
type PostLoader interface {
	PostLoad(root *broker.Broker) error
}

// AsyncPostLoader is the async variant of PostLoader.
type AsyncPostLoader interface {
	PostLoadAsync(ctx context.Context, root *broker.Broker) error
}

// PreUnloader runs before any module starts unloading.
type PreUnloader interface {
	PreUnload(root *broker.Broker) error
}

// AsyncPreUnloader is the async variant of PreUnloader.
type AsyncPreUnloader interface {
	PreUnloadAsync(ctx context.Context, root *broker.Broker) error
}

// Unloader is the synchronous Unload capability.
type Unloader interface {
	Unload(root *broker.Broker) error
}

// AsyncUnloader is the async variant of Unloader.
type AsyncUnloader interface {
	UnloadAsync(ctx context.Context, root *broker.Broker) error
}

// ArenaAttacher is the synchronous arena-attach capability. A module that
// implements this also implements DetachModule — attach and detach are one
// capability, not two, matching spec.md's single ArenaAttach flag.
type ArenaAttacher interface {
	AttachModule(a *arena.Arena) (bool, error)
	DetachModule(a *arena.Arena) error
}

// AsyncArenaAttacher is the async variant of ArenaAttacher.
type AsyncArenaAttacher interface {
	AttachModuleAsync(ctx context.Context, a *arena.Arena) (bool, error)
	DetachModuleAsync(ctx context.Context, a *arena.Arena) error
}

// Disposer runs once, after Unload, for modules that hold resources the
// garbage collector won't reclaim promptly (file handles, goroutine pools).
type Disposer interface {
	Dispose()
}

// AsyncDisposer is the async variant of Disposer.
type AsyncDisposer interface {
	DisposeAsync(ctx context.Context) error
}

// Capability is one bit of a module's lifecycle capability set, computed
// once per instance (at registration for a pre-constructed instance, at
// construction otherwise) by type-asserting the instance against the
// interfaces above — never by reflecting over a type hierarchy.
type Capability uint16

const (
	CapLoad Capability = 1 << iota
	CapAsyncLoad
	CapPostLoad
	CapAsyncPostLoad
	CapPreUnload
	CapAsyncPreUnload
	CapUnload
	CapAsyncUnload
	CapArenaAttach
	CapAsyncArenaAttach
	CapDisposable
	CapAsyncDisposable
)

// capabilitiesOf inspects instance against every capability interface and
// returns the resulting bitset.
func capabilitiesOf(instance Module) Capability {
	var c Capability
	if _, ok := instance.(Loader); ok {
		c |= CapLoad
	}
	if _, ok := instance.(AsyncLoader); ok {
		c |= CapAsyncLoad
	}
	if _, ok := instance.(PostLoader); ok {
		c |= CapPostLoad
	}
	if _, ok := instance.(AsyncPostLoader); ok {
		c |= CapAsyncPostLoad
	}
	if _, ok := instance.(PreUnloader); ok {
		c |= CapPreUnload
	}
	if _, ok := instance.(AsyncPreUnloader); ok {
		c |= CapAsyncPreUnload
	}
	if _, ok := instance.(Unloader); ok {
		c |= CapUnload
	}
	if _, ok := instance.(AsyncUnloader); ok {
		c |= CapAsyncUnload
	}
	if _, ok := instance.(ArenaAttacher); ok {
		c |= CapArenaAttach
	}
	if _, ok := instance.(AsyncArenaAttacher); ok {
		c |= CapAsyncArenaAttach
	}
	if _, ok := instance.(Disposer); ok {
		c |= CapDisposable
	}
	if _, ok := instance.(AsyncDisposer); ok {
		c |= CapAsyncDisposable
	}
	return c
}

// Has reports whether the capability set contains want.
func (c Capability) Has(want Capability) bool { return c&want != 0 }

// State is one point in the module lifecycle state machine of spec.md
// §4.5.7.
type State int

const (
	StateRegistered State = iota
	StateLoaded
	StatePostLoaded
	StatePreUnloaded
	StateUnloaded
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "Registered"
	case StateLoaded:
		return "Loaded"
	case StatePostLoaded:
		return "PostLoaded"
	case StatePreUnloaded:
		return "PreUnloaded"
	case StateUnloaded:
		return "Unloaded"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// Origin records whether a module was registered in-process or loaded from
// an isolated plug-in package, and if so, which one.
type Origin struct {
	IsPlugin      bool
	PackagePath   string
	LoadContextID string
}

// Info is the observable, read-only snapshot of one module's state
// returned to external callers by GetModuleInfo.
type Info struct {
	Identity        string
	Description     string
	State           State
	Capabilities    Capability
	Origin          Origin
	AttachedArenas  []string
	LoadOrderIndex  int // -1 if not currently in the load-order list
}
