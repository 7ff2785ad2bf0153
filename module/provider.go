package module

import (
	"github.com/google/wire"

	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/security"
	"github.com/gigamon-dev/SubspaceServer-sub008/timeout"
)

// ProviderSet is the wire provider set for the module package. It provides
// *Manager, wired against a root broker and a timeout manager.
//
// Usage:
//
//	wire.Build(
//	    timeout.ProviderSet,
//	    module.ProviderSet,
//	    // ... other providers
//	)
var ProviderSet = wire.NewSet(ProvideManager)

// ProvideManager constructs the module manager over root. sandbox gates the
// plugin load path per SPEC_FULL.md §2; it may be nil.
func ProvideManager(root *broker.Broker, timeouts *timeout.Manager, sandbox *security.Sandbox) (*Manager, error) {
	return New(root, timeouts, sandbox), nil
}
