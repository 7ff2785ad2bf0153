// Package timeout holds the deadlines the module manager puts on the
// contexts it passes to modules' async lifecycle hooks: LoadTimeout for
// load, unload, attach, detach and dispose, InitTimeout for post-load and
// pre-unload. Synchronous hooks get no deadline, and DependencyTimeout is
// parsed and stored but not applied by the manager.
package timeout

import (
	"context"
	"time"
)

// Manager holds the configured ceilings for the manager's phases.
type Manager struct {
	LoadTimeout       time.Duration
	InitTimeout       time.Duration
	DependencyTimeout time.Duration
}

// NewDefault returns a Manager with the zone server's documented defaults
// (spec.md §6 / SPEC_FULL.md §2): 30s load, 60s post-load/init, 15s
// dependency resolution.
func NewDefault() *Manager {
	return &Manager{
		LoadTimeout:       30 * time.Second,
		InitTimeout:       60 * time.Second,
		DependencyTimeout: 15 * time.Second,
	}
}

// New builds a Manager from configured duration strings, falling back to
// NewDefault's values for any that are empty or unparseable.
func New(loadTimeout, initTimeout, dependencyTimeout string) *Manager {
	d := NewDefault()
	if v, err := time.ParseDuration(loadTimeout); err == nil && loadTimeout != "" {
		d.LoadTimeout = v
	}
	if v, err := time.ParseDuration(initTimeout); err == nil && initTimeout != "" {
		d.InitTimeout = v
	}
	if v, err := time.ParseDuration(dependencyTimeout); err == nil && dependencyTimeout != "" {
		d.DependencyTimeout = v
	}
	return d
}

// WithTimeout derives a child context bounded by d from ctx. The caller is
// always responsible for calling the returned cancel func.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
