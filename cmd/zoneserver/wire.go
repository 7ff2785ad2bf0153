//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/config"
	"github.com/gigamon-dev/SubspaceServer-sub008/metrics"
	"github.com/gigamon-dev/SubspaceServer-sub008/module"
	"github.com/gigamon-dev/SubspaceServer-sub008/security"
	"github.com/gigamon-dev/SubspaceServer-sub008/timeout"
	"github.com/gigamon-dev/SubspaceServer-sub008/zonedirectory"
)

// InitializeApp wires up the zone server with all its core dependencies.
// Run `wire` in this directory to regenerate wire_gen.go after changing
// any provider set.
func InitializeApp() (*App, error) {
	panic(wire.Build(
		config.ProviderSet,
		broker.ProviderSet,
		timeout.ProviderSet,
		module.ProviderSet,
		metrics.ProviderSet,
		security.ProviderSet,
		zonedirectory.ProviderSet,
		NewApp,
	))
}
