// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"github.com/vk/nodesync/internal/nodeid"
)

// Edge is the derived view of a single connection reference. From is always
// the output end and To the input end, regardless of which side stores the
// reference.
type Edge struct {
	From  nodeid.PortKey
	To    nodeid.PortKey
	Kind  Kind
	Proxy bool
}

// EdgeFromOwner derives the edge represented by a port's reference. It returns
// false when the port does not own a reference.
func EdgeFromOwner(owner *Port) (Edge, bool) {
	if !owner.StoresReference() || !owner.Connected() {
		return Edge{}, false
	}
	e := Edge{Kind: owner.Kind, Proxy: owner.Proxy}
	switch owner.Direction {
	case Input:
		e.From, e.To = owner.Ref, owner.Key()
	case Output:
		e.From, e.To = owner.Key(), owner.Ref
	}
	return e, true
}

// ID is a stable identifier for the edge, `from->to`.
func (e Edge) ID() string {
	return e.From.String() + "->" + e.To.String()
}

// Owner returns the endpoint that stores the reference.
func (e Edge) Owner() nodeid.PortKey {
	if e.Kind == Flow {
		return e.From
	}
	return e.To
}

// Target returns the endpoint the reference points at.
func (e Edge) Target() nodeid.PortKey {
	if e.Kind == Flow {
		return e.To
	}
	return e.From
}

// Touches reports whether either endpoint belongs to node id.
func (e Edge) Touches(id nodeid.ID) bool {
	return e.From.Node == id || e.To.Node == id
}

// Less orders edges by their endpoints.
func (e Edge) Less(other Edge) bool {
	if e.From != other.From {
		return e.From.Less(other.From)
	}
	return e.To.Less(other.To)
}
