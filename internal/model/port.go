// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// Port is one connection point of a node.
type Port struct {
	ID        nodeid.PortID
	Node      nodeid.ID
	Kind      Kind
	Direction Direction
	Label     string

	// Type is the declared value type. Flow ports are untyped (cty.NilType).
	Type cty.Type
	// Filter restricts the output types an Input Value port accepts. When it
	// is open the declared Type is used instead.
	Filter typesys.Filter

	// Value is the literal held by an unconnected Value Input port, or the
	// last produced value of a Value Output port. cty.NilVal means no value.
	Value cty.Value

	// Ref is the connection reference. Only ports for which StoresReference
	// is true ever hold one.
	Ref nodeid.PortKey
	// Proxy marks the edge owned by this port as a collapsed presentation of
	// a longer chain. ProxyPinned records that a user forced the state, which
	// automatic policies must not override.
	Proxy       bool
	ProxyPinned bool
}

// ValueIn creates an Input Value port.
func ValueIn(id nodeid.PortID, t cty.Type) *Port {
	return &Port{ID: id, Kind: Value, Direction: Input, Type: t, Value: typesys.DefaultLiteral(t)}
}

// ValueOut creates an Output Value port.
func ValueOut(id nodeid.PortID, t cty.Type) *Port {
	return &Port{ID: id, Kind: Value, Direction: Output, Type: t, Value: cty.NilVal}
}

// FlowIn creates the Input Flow port of a node.
func FlowIn(id nodeid.PortID) *Port {
	return &Port{ID: id, Kind: Flow, Direction: Input, Type: cty.NilType}
}

// FlowOut creates a named Output Flow port (a branch).
func FlowOut(id nodeid.PortID) *Port {
	return &Port{ID: id, Kind: Flow, Direction: Output, Type: cty.NilType}
}

// WithFilter sets the accepted types of an input port and returns it.
func (p *Port) WithFilter(f typesys.Filter) *Port {
	p.Filter = f
	return p
}

// WithLabel sets the display label and returns the port.
func (p *Port) WithLabel(label string) *Port {
	p.Label = label
	return p
}

// Key returns the fully qualified address of the port.
func (p *Port) Key() nodeid.PortKey {
	return nodeid.Key(p.Node, p.ID)
}

// StoresReference reports whether this port is the owning side of its edges.
func (p *Port) StoresReference() bool {
	return StoresReference(p.Kind, p.Direction)
}

// Connected reports whether the port currently holds a reference.
func (p *Port) Connected() bool {
	return !p.Ref.IsZero()
}

// AcceptedTypes returns the filter used to validate incoming connections.
func (p *Port) AcceptedTypes() typesys.Filter {
	if !p.Filter.IsOpen() {
		return p.Filter
	}
	if p.Type == cty.NilType || p.Type.Equals(cty.DynamicPseudoType) {
		return typesys.Filter{}
	}
	return typesys.Accepting(p.Type)
}

// DisplayName returns the label, falling back to the port id.
func (p *Port) DisplayName() string {
	if p.Label != "" {
		return p.Label
	}
	return string(p.ID)
}

// Clone returns a copy of the port. cty values are immutable and shared.
func (p *Port) Clone() *Port {
	cp := *p
	return &cp
}
