// Package converters registers the standard value converters: number to
// text, bool to text, text to number and int to float.
package converters

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Adapter port names shared by every standard converter.
const (
	InPort  nodeid.PortID = "in"
	OutPort nodeid.PortID = "out"
)

// Register adds the standard descriptors in priority order.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Descriptor("number-to-text", "Number to Text", cty.Number, cty.String))
	r.Register(Descriptor("bool-to-text", "Bool to Text", cty.Bool, cty.String))
	r.Register(Descriptor("text-to-number", "Text to Number", cty.String, cty.Number))
	r.Register(Descriptor("int-to-float", "Int to Float", typesys.Int, typesys.Float))
}

// Descriptor builds a converter whose adapter node has a single input and
// output of the given types.
func Descriptor(name, label string, from, to cty.Type) *registry.Descriptor {
	return &registry.Descriptor{
		Name:   name,
		Source: from,
		Target: to,
		CreateAdapterNode: adapterFactory(name, label, from, to),
		InPort:            InPort,
		OutPort:           OutPort,
	}
}

func adapterFactory(name, label string, from, to cty.Type) registry.AdapterFactory {
	return func(ctx context.Context, req registry.AdapterRequest) (*model.Node, error) {
		id := nodeid.ID(fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]))
		n := model.NewNode(id, "convert."+name)
		n.Label = label
		if err := n.AddPort(model.ValueIn(InPort, from)); err != nil {
			return nil, err
		}
		if err := n.AddPort(model.ValueOut(OutPort, to)); err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Adapter node created.", "converter", name, "node", id, "from", req.From, "to", req.To)
		return n, nil
	}
}
