package timeout

import (
	"github.com/google/wire"

	"github.com/gigamon-dev/SubspaceServer-sub008/config"
)

// ProviderSet is the wire provider set for the timeout package.
var ProviderSet = wire.NewSet(ProvideManager)

// ProvideManager constructs a timeout manager from the root config's
// timeout strings, falling back to defaults for any that are empty.
func ProvideManager(cfg *config.Config) *Manager {
	return New(cfg.LoadTimeout, cfg.InitTimeout, cfg.DependencyTimeout)
}
