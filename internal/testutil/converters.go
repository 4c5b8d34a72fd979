package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// CountingConverter is a converter descriptor whose factory counts its calls.
type CountingConverter struct {
	Descriptor *registry.Descriptor
	calls      atomic.Int32
}

// NewCountingConverter builds a descriptor converting from -> to whose adapter
// nodes are named `<name>-<n>`.
func NewCountingConverter(name string, from, to cty.Type) *CountingConverter {
	c := &CountingConverter{}
	c.Descriptor = &registry.Descriptor{
		Name:   name,
		Source: from,
		Target: to,
		CreateAdapterNode: func(ctx context.Context, req registry.AdapterRequest) (*model.Node, error) {
			n := c.calls.Add(1)
			node := model.NewNode(nodeid.ID(fmt.Sprintf("%s-%d", name, n)), "convert."+name)
			node.Label = name
			node.MustAddPort(model.ValueIn("in", from), model.ValueOut("out", to))
			return node, nil
		},
		InPort:  "in",
		OutPort: "out",
	}
	return c
}

// Calls returns how many adapter nodes the factory created.
func (c *CountingConverter) Calls() int {
	return int(c.calls.Load())
}
