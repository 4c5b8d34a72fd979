package resolver

import (
	"fmt"

	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// Status is the outcome class of a resolution.
type Status int

const (
	Incompatible Status = iota
	Compatible
	Coerced
	Convertible
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Incompatible:
		return "incompatible"
	case Compatible:
		return "compatible"
	case Coerced:
		return "coerced"
	case Convertible:
		return "convertible"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Resolution is the full answer for one (output type, input filter) pair.
type Resolution struct {
	Status Status
	// Coercion is set when Status is Coerced.
	Coercion *typesys.Coercion
	// Converter is the first matching descriptor when Status is Convertible.
	Converter *registry.Descriptor
	// Candidates holds the first descriptor for each distinct reachable target
	// type, in registry order. It has one entry when Convertible and several
	// when Ambiguous.
	Candidates []*registry.Descriptor
}

// Direct reports whether the connection can be made without inserting an
// adapter node.
func (r Resolution) Direct() bool {
	return r.Status == Compatible || r.Status == Coerced
}

// TargetTypes returns the target types reachable through the candidates.
func (r Resolution) TargetTypes() []cty.Type {
	out := make([]cty.Type, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Target
	}
	return out
}
