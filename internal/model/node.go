// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"

	"github.com/vk/nodesync/internal/nodeid"
)

// Node is a vertex of the document with ordered input and output ports.
type Node struct {
	ID    nodeid.ID
	Type  string
	Label string

	Inputs  []*Port
	Outputs []*Port

	// Reentrant marks nodes that tolerate being re-entered by their own flow
	// (for example nodes that suspend). Flow cycles through them are allowed.
	Reentrant bool
	// Reroute marks pass-through nodes whose edges are drawn collapsed.
	Reroute bool
}

// NewNode creates an empty node.
func NewNode(id nodeid.ID, nodeType string) *Node {
	return &Node{ID: id, Type: nodeType}
}

// AddPort appends a port to the matching side of the node. Port ids must be
// unique within the node and a node has at most one Input Flow port.
func (n *Node) AddPort(p *Port) error {
	if err := nodeid.ValidateSegment(string(p.ID)); err != nil {
		return fmt.Errorf("node '%s': %w", n.ID, err)
	}
	if _, exists := n.Port(p.ID); exists {
		return fmt.Errorf("node '%s': duplicate port id '%s'", n.ID, p.ID)
	}
	if p.Kind == Flow && p.Direction == Input && n.FlowInput() != nil {
		return fmt.Errorf("node '%s': a node can have at most one flow input, found second '%s'", n.ID, p.ID)
	}

	p.Node = n.ID
	switch p.Direction {
	case Input:
		n.Inputs = append(n.Inputs, p)
	case Output:
		n.Outputs = append(n.Outputs, p)
	}
	return nil
}

// MustAddPort is like AddPort but panics on error. Returns the node for chaining.
func (n *Node) MustAddPort(ports ...*Port) *Node {
	for _, p := range ports {
		if err := n.AddPort(p); err != nil {
			panic(err)
		}
	}
	return n
}

// Port finds a port by id on either side.
func (n *Node) Port(id nodeid.PortID) (*Port, bool) {
	for _, p := range n.Inputs {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range n.Outputs {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Ports returns inputs followed by outputs, in declaration order.
func (n *Node) Ports() []*Port {
	all := make([]*Port, 0, len(n.Inputs)+len(n.Outputs))
	all = append(all, n.Inputs...)
	return append(all, n.Outputs...)
}

// FlowInput returns the node's Input Flow port, if any.
func (n *Node) FlowInput() *Port {
	for _, p := range n.Inputs {
		if p.Kind == Flow {
			return p
		}
	}
	return nil
}

// FlowOutputs returns the node's branches.
func (n *Node) FlowOutputs() []*Port {
	var out []*Port
	for _, p := range n.Outputs {
		if p.Kind == Flow {
			out = append(out, p)
		}
	}
	return out
}

// IsFlowNode reports whether the node takes part in control flow.
func (n *Node) IsFlowNode() bool {
	return n.FlowInput() != nil || len(n.FlowOutputs()) > 0
}

// DisplayName returns the label, falling back to the node id.
func (n *Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return string(n.ID)
}

// Clone returns a deep copy of the node and its ports.
func (n *Node) Clone() *Node {
	cp := *n
	cp.Inputs = make([]*Port, len(n.Inputs))
	for i, p := range n.Inputs {
		cp.Inputs[i] = p.Clone()
	}
	cp.Outputs = make([]*Port, len(n.Outputs))
	for i, p := range n.Outputs {
		cp.Outputs[i] = p.Clone()
	}
	return &cp
}
