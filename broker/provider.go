package broker

import "github.com/google/wire"

// ProviderSet is the wire provider set for the broker package. It provides
// the process-wide root Broker that every arena broker is a child of.
var ProviderSet = wire.NewSet(ProvideRoot)

// ProvideRoot constructs the root broker.
func ProvideRoot() *Broker {
	return NewRoot()
}
