package config

import (
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a graph document:
// the named types it declares, its nodes and the connections between them.
type Model struct {
	Types       []*TypeDefinition
	Nodes       []*NodeDefinition
	Connections []*ConnectionDefinition
}

// TypeDefinition declares a named type and the types it implements.
type TypeDefinition struct {
	Name       string
	Implements []string
}

// NodeDefinition is the format-agnostic representation of a `node` block.
type NodeDefinition struct {
	ID        nodeid.ID
	Type      string
	Label     string
	Reentrant bool
	Reroute   bool
	// Ports keeps declaration order within each side.
	Ports []*PortDefinition
}

// PortDefinition defines a single port of a node.
type PortDefinition struct {
	ID        nodeid.PortID
	Kind      model.Kind
	Direction model.Direction
	Label     string

	// Type is cty.NilType for flow ports and cty.DynamicPseudoType when a
	// value port declares no type.
	Type cty.Type
	// Accepts narrows the output types an input will take. Empty means the
	// declared Type decides.
	Accepts []cty.Type
	// Default is the raw literal for an input, converted to Type on build.
	Default *cty.Value
}

// ConnectionDefinition is one declared edge. From and To may be given in
// either drag order, as the edge manager normalises them.
type ConnectionDefinition struct {
	From nodeid.PortKey
	To   nodeid.PortKey
	// Proxy, when set, pins the presentation of the edge.
	Proxy *bool
}
