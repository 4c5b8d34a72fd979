package edges

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/typesys"
)

// Status is the outcome of a connect request.
type Status int

const (
	Rejected Status = iota
	Connected
)

func (s Status) String() string {
	if s == Connected {
		return "connected"
	}
	return "rejected"
}

// Reason explains a rejection.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonPortNotFound
	ReasonSameNode
	ReasonSameDirection
	ReasonKindMismatch
	ReasonTypeMismatch
	ReasonIllegalCycle
	ReasonAdapterFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonPortNotFound:
		return "port_not_found"
	case ReasonSameNode:
		return "same_node"
	case ReasonSameDirection:
		return "same_direction"
	case ReasonKindMismatch:
		return "kind_mismatch"
	case ReasonTypeMismatch:
		return "type_mismatch"
	case ReasonIllegalCycle:
		return "illegal_cycle"
	case ReasonAdapterFailed:
		return "adapter_failed"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Sentinel errors matched by RejectError.
var (
	ErrPortNotFound  = errors.New("port not found")
	ErrSameNode      = errors.New("ports belong to the same node")
	ErrSameDirection = errors.New("ports have the same direction")
	ErrKindMismatch  = errors.New("cannot connect flow and value ports")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrIllegalCycle  = errors.New("illegal flow cycle")
	ErrAdapterFailed = errors.New("converter adapter could not be inserted")
	ErrEdgeNotFound  = errors.New("edge not found")
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonPortNotFound:
		return ErrPortNotFound
	case ReasonSameNode:
		return ErrSameNode
	case ReasonSameDirection:
		return ErrSameDirection
	case ReasonKindMismatch:
		return ErrKindMismatch
	case ReasonTypeMismatch:
		return ErrTypeMismatch
	case ReasonIllegalCycle:
		return ErrIllegalCycle
	case ReasonAdapterFailed:
		return ErrAdapterFailed
	default:
		return nil
	}
}

// Result describes the outcome of Connect, ConnectVia or Check.
type Result struct {
	Status Status
	Reason Reason
	Detail string

	// Edge is the edge ending at the requested input port.
	Edge model.Edge
	// Edges lists every edge created, in creation order. It holds two edges
	// when a converter adapter was inserted.
	Edges []model.Edge
	// Replaced lists edges that were displaced from single-reference ports.
	Replaced []model.Edge

	// Coercion is set when the value is converted by a built-in coercion.
	Coercion *typesys.Coercion
	// Adapter and Converter are set when an adapter node was inserted.
	Adapter   *model.Node
	Converter *registry.Descriptor
	// Candidates lists the converters the caller may choose from after a
	// TypeMismatch caused by an ambiguous or non-automatic conversion.
	Candidates []*registry.Descriptor
	// Cycle is the offending control-flow path of an IllegalCycle rejection.
	Cycle []nodeid.ID
}

// Ok reports whether the connection was made (or, for Check, would be made).
func (r Result) Ok() bool {
	return r.Status == Connected
}

// Err returns nil for a successful result and a *RejectError otherwise.
func (r Result) Err() error {
	if r.Ok() {
		return nil
	}
	return &RejectError{Reason: r.Reason, Detail: r.Detail, Candidates: r.Candidates}
}

func reject(reason Reason, format string, args ...any) Result {
	return Result{Status: Rejected, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// RejectError is the error form of a rejected connect request.
type RejectError struct {
	Reason     Reason
	Detail     string
	Candidates []*registry.Descriptor
}

// Error implements the error interface.
func (e *RejectError) Error() string {
	var sb strings.Builder
	sb.WriteString("connection rejected: ")
	if s := e.Reason.sentinel(); s != nil {
		sb.WriteString(s.Error())
	} else {
		sb.WriteString(e.Reason.String())
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if len(e.Candidates) > 0 {
		names := make([]string, len(e.Candidates))
		for i, c := range e.Candidates {
			names[i] = c.Name
		}
		sb.WriteString(" (candidates: ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the sentinel error matching the reason.
func (e *RejectError) Unwrap() error {
	return e.Reason.sentinel()
}
