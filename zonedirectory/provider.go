package zonedirectory

import (
	"github.com/google/wire"

	"github.com/gigamon-dev/SubspaceServer-sub008/config"
)

// ProviderSet is the wire provider set for the zonedirectory package.
var ProviderSet = wire.NewSet(ProvideDirectory)

// ProvideDirectory builds a Directory from the root config's consul
// section, returning nil when cross-zone discovery isn't configured.
func ProvideDirectory(cfg *config.ConsulConfig) (*Directory, error) {
	if cfg == nil {
		return nil, nil
	}
	return New(cfg.Address, cfg.Scheme)
}
