// Package security gates which plug-in package paths the module manager
// is willing to load() from disk.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config mirrors config.SecurityConfig field for field; ProvideSandbox
// converts the one into the other.
type Config struct {
	EnableSandbox     bool
	AllowedPaths      []string
	BlockedExtensions []string
	RequireSignature  bool
	AllowUnsafe       bool
}

// Sandbox validates plug-in package paths before the manager hands them
// to plugin.Open.
type Sandbox struct {
	cfg Config
}

// New creates a Sandbox from cfg.
func New(cfg Config) *Sandbox {
	return &Sandbox{cfg: cfg}
}

// ValidatePath rejects a plug-in path that isn't under one of the
// configured allowed directories or that carries a blocked extension.
// When sandboxing is disabled, or AllowUnsafe is set, this always passes.
func (s *Sandbox) ValidatePath(path string) error {
	if !s.cfg.EnableSandbox || s.cfg.AllowUnsafe {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, blocked := range s.cfg.BlockedExtensions {
		if strings.ToLower(blocked) == ext {
			return fmt.Errorf("security: plugin path %q has a blocked extension %q", path, ext)
		}
	}

	if len(s.cfg.AllowedPaths) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("security: cannot resolve plugin path %q: %w", path, err)
	}
	for _, allowed := range s.cfg.AllowedPaths {
		allowedAbs, err := filepath.Abs(allowed)
		if err != nil {
			continue
		}
		prefix := allowedAbs
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if abs == allowedAbs || strings.HasPrefix(abs, prefix) {
			return nil
		}
	}
	return fmt.Errorf("security: plugin path %q is outside every allowed directory", path)
}
