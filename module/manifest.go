package module

import "github.com/gigamon-dev/SubspaceServer-sub008/broker"

// DependencySpec names one interface a module's constructor needs resolved
// from the root broker before construction.
type DependencySpec struct {
	Kind broker.Kind
	Key  string // "" for the default key
}

// Manifest is an ordered list of dependencies; resolution order follows
// list order, release order is the reverse (spec.md §4.5.8).
type Manifest []DependencySpec

// Constructor builds a Module instance from the providers its resolved
// dependency handles refer to, supplied in manifest order.
type Constructor func(deps []any) (Module, error)

// Candidate is one constructor variant a Registration offers. The manager
// tries candidates in list order and uses the first whose manifest fully
// resolves — callers should list the richest (most-parameters) candidate
// first, mirroring spec.md §4.5.1's "descending parameter count" rule,
// since this replaces a reflective best-fit search with an explicit,
// ordered list the author controls.
type Candidate struct {
	Manifest  Manifest
	Construct Constructor
}

// Registration is everything the manager needs to discover and construct
// one module. Exactly one of Instance or Candidates should be set: Instance
// for a pre-constructed module (no dependency resolution performed),
// Candidates for a discovered-type module the manager constructs itself.
type Registration struct {
	Identity    string
	Description string

	Instance   Module
	Candidates []Candidate

	// PackagePath, when non-empty, marks this registration as sourced from
	// an isolated plug-in package rather than a built-in type.
	PackagePath string
}
