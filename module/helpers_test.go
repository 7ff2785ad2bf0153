package module_test

import (
	"github.com/gigamon-dev/SubspaceServer-sub008/arena"
	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/module"
)

const (
	kindIA broker.Kind = "test.IA"
	kindIB broker.Kind = "test.IB"
)

// moduleA has no dependencies and registers IA on load.
type moduleA struct{}

func (m *moduleA) Identity() string                    { return "A" }
func (m *moduleA) Load(root *broker.Broker) error       { return root.RegisterInterface(kindIA, "", m) }
func (m *moduleA) Unload(root *broker.Broker) error {
	_, err := root.UnregisterInterface(kindIA, "", m)
	return err
}

func regA() module.Registration {
	return module.Registration{Identity: "A", Instance: &moduleA{}}
}

// moduleB depends on IA and registers IB on load.
type moduleB struct{ a *moduleA }

func (m *moduleB) Identity() string              { return "B" }
func (m *moduleB) Load(root *broker.Broker) error { return root.RegisterInterface(kindIB, "", m) }
func (m *moduleB) Unload(root *broker.Broker) error {
	_, err := root.UnregisterInterface(kindIB, "", m)
	return err
}

func regB() module.Registration {
	return module.Registration{
		Identity: "B",
		Candidates: []module.Candidate{
			{
				Manifest: module.Manifest{{Kind: kindIA}},
				Construct: func(deps []any) (module.Module, error) {
					return &moduleB{a: deps[0].(*moduleA)}, nil
				},
			},
		},
	}
}

// moduleC depends on IB and registers nothing further.
type moduleC struct{ b *moduleB }

func (m *moduleC) Identity() string               { return "C" }
func (m *moduleC) Load(root *broker.Broker) error   { return nil }
func (m *moduleC) Unload(root *broker.Broker) error { return nil }

func regC() module.Registration {
	return module.Registration{
		Identity: "C",
		Candidates: []module.Candidate{
			{
				Manifest: module.Manifest{{Kind: kindIB}},
				Construct: func(deps []any) (module.Module, error) {
					return &moduleC{b: deps[0].(*moduleB)}, nil
				},
			},
		},
	}
}

// moduleD records whether PostLoad ran.
type moduleD struct {
	postLoadCalled bool
}

func (m *moduleD) Identity() string                   { return "D" }
func (m *moduleD) Load(root *broker.Broker) error       { return nil }
func (m *moduleD) PostLoad(root *broker.Broker) error   { m.postLoadCalled = true; return nil }
func (m *moduleD) Unload(root *broker.Broker) error     { return nil }

// moduleE is attachable to arenas.
type moduleE struct {
	attached map[string]bool
}

func newModuleE() *moduleE { return &moduleE{attached: make(map[string]bool)} }

func (m *moduleE) Identity() string                   { return "E" }
func (m *moduleE) Load(root *broker.Broker) error       { return nil }
func (m *moduleE) Unload(root *broker.Broker) error     { return nil }
func (m *moduleE) AttachModule(a *arena.Arena) (bool, error) {
	m.attached[a.ID] = true
	return true, nil
}
func (m *moduleE) DetachModule(a *arena.Arena) error {
	delete(m.attached, a.ID)
	return nil
}
