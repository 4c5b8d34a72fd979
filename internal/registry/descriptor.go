package registry

import (
	"context"

	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// AdapterRequest carries the context an adapter factory needs to build a node
// for one specific connection.
type AdapterRequest struct {
	From       nodeid.PortKey
	To         nodeid.PortKey
	SourceType cty.Type
	TargetType cty.Type
}

// AdapterFactory materializes an adapter node. The returned node must expose
// the descriptor's InPort and OutPort.
type AdapterFactory func(ctx context.Context, req AdapterRequest) (*model.Node, error)

// Descriptor is a registered conversion rule plus the factory for the adapter
// node that performs it.
type Descriptor struct {
	Name   string
	Source cty.Type
	Target cty.Type

	// CanApply optionally narrows the rule beyond its declared type pair.
	CanApply func(from, to cty.Type) bool
	// CreateAdapterNode builds the adapter inserted between the two ports.
	CreateAdapterNode AdapterFactory

	// InPort and OutPort name the adapter node's Value ports that receive the
	// source value and produce the converted value.
	InPort  nodeid.PortID
	OutPort nodeid.PortID
}

// Matches reports whether the descriptor can convert a value of type from into
// one acceptable as to.
func (d *Descriptor) Matches(c *typesys.Catalog, from, to cty.Type) bool {
	if !c.Implements(from, d.Source) || !c.Implements(d.Target, to) {
		return false
	}
	if d.CanApply != nil && !d.CanApply(from, to) {
		return false
	}
	return true
}

// String renders the descriptor as `name (source -> target)`.
func (d *Descriptor) String() string {
	return d.Name + " (" + typesys.Name(d.Source) + " -> " + typesys.Name(d.Target) + ")"
}
