package module

import "errors"

// Sentinel error kinds visible at the core boundary (spec.md §7). Wrap
// these with fmt.Errorf("...: %w", ErrX) to attach context; callers should
// match with errors.Is.
var (
	ErrModuleNotFound     = errors.New("module: identity did not resolve to a registered module")
	ErrNotAModule         = errors.New("module: type implements none of the load capabilities")
	ErrAlreadyRegistered  = errors.New("module: duplicate module registration")
	ErrMissingDependencies = errors.New("module: no constructor candidate could be satisfied")
	ErrConstructionFailed = errors.New("module: constructor returned an error")
	ErrLoadFailed         = errors.New("module: load failed")
	ErrUnloadFailed       = errors.New("module: unload failed")
	ErrStillAttached      = errors.New("module: cannot unload, arenas remain attached")
	ErrPluginLoadFailed   = errors.New("module: isolated load context could not resolve the requested kind")
	ErrNoConstructor      = errors.New("module: no candidate constructor offered")
)
