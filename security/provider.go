package security

import (
	"github.com/google/wire"

	"github.com/gigamon-dev/SubspaceServer-sub008/config"
)

// ProviderSet is the wire provider set for the security package.
var ProviderSet = wire.NewSet(ProvideSandbox)

// ProvideSandbox builds a Sandbox from the root config's security section.
func ProvideSandbox(cfg *config.SecurityConfig) *Sandbox {
	if cfg == nil {
		return New(Config{})
	}
	return New(Config{
		EnableSandbox:     cfg.EnableSandbox,
		AllowedPaths:      cfg.AllowedPaths,
		BlockedExtensions: cfg.BlockedExtensions,
		RequireSignature:  cfg.RequireSignature,
		AllowUnsafe:       cfg.AllowUnsafe,
	})
}
