package module

import (
	"context"
	"fmt"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gigamon-dev/SubspaceServer-sub008/logging"
)

// PluginFactory is the symbol every plug-in package must export under the
// name "ModuleFactory". The manager loads the package, looks the symbol
// up, and asks it for the Registration describing the module it contains.
type PluginFactory interface {
	NewRegistration() Registration
}

// loadedUnit is one isolated load context: a single *plugin.Plugin handle
// cached by canonical path, plus the set of module identities currently
// sourced from it (used to detect "last module in this context" on unload).
type loadedUnit struct {
	canonicalPath string
	handle        *plugin.Plugin
	modules       map[string]struct{}
}

// pluginLoader owns the (canonical-path -> loadedUnit) cache spec.md §4.5.1
// and §6 describe, and dedupes concurrent same-path loads.
type pluginLoader struct {
	mgr *Manager

	mu    sync.Mutex
	units map[string]*loadedUnit

	group singleflight.Group
}

func newPluginLoader(mgr *Manager) *pluginLoader {
	return &pluginLoader{mgr: mgr, units: make(map[string]*loadedUnit)}
}

func canonicalPluginPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return strings.ToLower(filepath.Clean(abs)), nil
}

// load opens path, or returns the already-cached unit for its canonical
// path. Concurrent loads of the same path are deduped by singleflight so
// plugin.Open is only ever called once per path.
func (pl *pluginLoader) load(path string) (*loadedUnit, error) {
	canon, err := canonicalPluginPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPluginLoadFailed, err)
	}

	v, err, _ := pl.group.Do(canon, func() (any, error) {
		pl.mu.Lock()
		if u, ok := pl.units[canon]; ok {
			pl.mu.Unlock()
			return u, nil
		}
		pl.mu.Unlock()

		if pl.mgr.sandbox != nil {
			if err := pl.mgr.sandbox.ValidatePath(path); err != nil {
				return nil, fmt.Errorf("%w: security validation failed: %v", ErrPluginLoadFailed, err)
			}
		}

		handle, err := plugin.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPluginLoadFailed, err)
		}
		u := &loadedUnit{canonicalPath: canon, handle: handle, modules: make(map[string]struct{})}

		pl.mu.Lock()
		pl.units[canon] = u
		pl.mu.Unlock()
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loadedUnit), nil
}

func (u *loadedUnit) factory() (PluginFactory, error) {
	sym, err := u.handle.Lookup("ModuleFactory")
	if err != nil {
		return nil, fmt.Errorf("%w: missing ModuleFactory symbol: %v", ErrPluginLoadFailed, err)
	}
	f, ok := sym.(PluginFactory)
	if !ok {
		return nil, fmt.Errorf("%w: ModuleFactory does not implement module.PluginFactory", ErrPluginLoadFailed)
	}
	return f, nil
}

// RegisterPlugin loads path into its isolated load context — reusing the
// cached context on a repeat path, per spec.md §4.5.1 — and registers the
// module the package's ModuleFactory describes.
func (m *Manager) RegisterPlugin(path string) (string, error) {
	unit, err := m.plugins.load(path)
	if err != nil {
		return "", err
	}
	factory, err := unit.factory()
	if err != nil {
		return "", err
	}
	reg := factory.NewRegistration()
	reg.PackagePath = path

	if err := m.Register(reg); err != nil {
		return "", err
	}

	m.dataMu.Lock()
	ms := m.modules[reg.Identity]
	ms.origin = Origin{IsPlugin: true, PackagePath: path, LoadContextID: unit.canonicalPath}
	m.dataMu.Unlock()

	m.plugins.mu.Lock()
	isFirstInContext := len(unit.modules) == 0
	unit.modules[reg.Identity] = struct{}{}
	m.plugins.mu.Unlock()

	if isFirstInContext {
		m.root.FireCallback("PluginAssemblyLoaded", path)
	}
	return reg.Identity, nil
}

// onModuleUnloaded is called by UnloadModule once a plug-in-origin module
// has fully unloaded. If it was the last module sourced from its load
// context, the context is dropped from the cache. Go's plugin package has
// no symmetric unload call; per spec.md §9's open question, "unloading the
// context" is modeled as dropping it from the cache only — this is
// best-effort and nothing downstream depends on the underlying .so
// actually being unmapped.
func (pl *pluginLoader) onModuleUnloaded(ctx context.Context, path, identity string) {
	canon, err := canonicalPluginPath(path)
	if err != nil {
		return
	}

	pl.mu.Lock()
	u, ok := pl.units[canon]
	if !ok {
		pl.mu.Unlock()
		return
	}
	delete(u.modules, identity)
	lastInContext := len(u.modules) == 0
	if lastInContext {
		delete(pl.units, canon)
	}
	pl.mu.Unlock()

	if lastInContext {
		pl.mgr.root.FireCallback("PluginAssemblyUnloading", path)
		logging.Infof(ctx, "module: dropped cached load context for %s", path)
	}
}
