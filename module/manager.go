package module

import (
	"sync"

	"github.com/sony/gobreaker"

	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/security"
	"github.com/gigamon-dev/SubspaceServer-sub008/timeout"
)

// Metrics is the narrow sink the manager reports lifecycle events to.
// Manager wires a real collector in through this to avoid an import cycle
// with the metrics package.
type Metrics interface {
	ModuleLoaded(identity string)
	ModuleUnloaded(identity string)
	ModuleLoadFailed(identity string)
	AttachChanged(identity, arenaID string, attached bool)
}

type noopMetrics struct{}

func (noopMetrics) ModuleLoaded(string)               {}
func (noopMetrics) ModuleUnloaded(string)              {}
func (noopMetrics) ModuleLoadFailed(string)            {}
func (noopMetrics) AttachChanged(string, string, bool) {}

// moduleState is the manager's internal record of one registered module.
type moduleState struct {
	reg      Registration
	instance Module
	caps     Capability
	state    State
	deps     []*broker.Handle // acquired in manifest order
	attached map[string]*arena.Arena
	origin   Origin
}

// Manager is the Module Manager: the lifecycle engine described in
// spec.md §4.5. It is the only writer of load-state; every other core
// component is a reader/coordinator of live services.
type Manager struct {
	root *broker.Broker

	// writeGate serializes every mutating operation (load, unload, attach,
	// detach, phase transitions) and is held across possibly-suspending
	// async entry points, per spec.md §5.
	writeGate sync.Mutex
	// dataMu guards the maps below for readers; the write gate alone is
	// not sufficient because async work may release dataMu while still
	// holding writeGate.
	dataMu sync.Mutex

	modules      map[string]*moduleState
	loadOrder    []string
	isPostLoaded bool

	timeouts *timeout.Manager
	metrics  Metrics
	sandbox  *security.Sandbox
	plugins  *pluginLoader

	breakerMu sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
}

// New creates a Manager rooted at root. sandbox may be nil, in which case
// plugin package paths are never validated before plugin.Open — matching
// the teacher's own "if m.sandbox != nil" bypass when sandboxing isn't
// configured.
func New(root *broker.Broker, timeouts *timeout.Manager, sandbox *security.Sandbox) *Manager {
	if timeouts == nil {
		timeouts = timeout.NewDefault()
	}
	m := &Manager{
		root:     root,
		modules:  make(map[string]*moduleState),
		timeouts: timeouts,
		metrics:  noopMetrics{},
		sandbox:  sandbox,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
	m.plugins = newPluginLoader(m)
	return m
}

// SetMetrics installs a metrics sink; nil restores the no-op sink.
func (m *Manager) SetMetrics(metrics Metrics) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	m.metrics = metrics
}

// Root returns the process-global root broker the manager resolves
// dependencies against.
func (m *Manager) Root() *broker.Broker { return m.root }

func (m *Manager) breakerFor(identity string) *gobreaker.CircuitBreaker {
	m.breakerMu.Lock()
	defer m.breakerMu.Unlock()
	if b, ok := m.breakers[identity]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        identity,
		MaxRequests: 1,
		Timeout:     0, // inherit package default via zero-value (60s) reset window
		ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 },
	})
	m.breakers[identity] = b
	return b
}

// GetModuleInfo returns an observable snapshot of one module's state.
func (m *Manager) GetModuleInfo(identity string) (Info, bool) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	ms, ok := m.modules[identity]
	if !ok {
		return Info{}, false
	}
	return m.infoLocked(identity, ms), true
}

// ListModules returns a snapshot of every registered module's info.
func (m *Manager) ListModules() []Info {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	out := make([]Info, 0, len(m.modules))
	for identity, ms := range m.modules {
		out = append(out, m.infoLocked(identity, ms))
	}
	return out
}

// LoadOrder returns a snapshot of the exact load-completion order.
func (m *Manager) LoadOrder() []string {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	out := make([]string, len(m.loadOrder))
	copy(out, m.loadOrder)
	return out
}

func (m *Manager) infoLocked(identity string, ms *moduleState) Info {
	arenas := make([]string, 0, len(ms.attached))
	for id := range ms.attached {
		arenas = append(arenas, id)
	}
	idx := -1
	for i, id := range m.loadOrder {
		if id == identity {
			idx = i
			break
		}
	}
	return Info{
		Identity:       identity,
		Description:    ms.reg.Description,
		State:          ms.state,
		Capabilities:   ms.caps,
		Origin:         ms.origin,
		AttachedArenas: arenas,
		LoadOrderIndex: idx,
	}
}
