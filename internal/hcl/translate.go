package hcl

import (
	"context"
	"fmt"

	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// translateType converts the HCL-specific type schema into the agnostic model.
func translateType(t *typeBlock) *config.TypeDefinition {
	return &config.TypeDefinition{Name: t.Name, Implements: t.Implements}
}

// translateNode converts a node block. Flow ports come before value ports on
// each side of the node.
func (l *Loader) translateNode(ctx context.Context, n *nodeBlock) (*config.NodeDefinition, error) {
	def := &config.NodeDefinition{
		ID:        nodeid.ID(n.ID),
		Type:      n.Type,
		Label:     n.Label,
		Reentrant: n.Reentrant,
		Reroute:   n.Reroute,
	}

	for _, p := range n.FlowIn {
		def.Ports = append(def.Ports, flowPort(p, model.Input))
	}
	for _, p := range n.Inputs {
		pd, err := l.translateValuePort(ctx, p, model.Input)
		if err != nil {
			return nil, fmt.Errorf("in node '%s', input '%s': %w", n.ID, p.ID, err)
		}
		def.Ports = append(def.Ports, pd)
	}
	for _, p := range n.FlowOut {
		def.Ports = append(def.Ports, flowPort(p, model.Output))
	}
	for _, p := range n.Outputs {
		pd, err := l.translateValuePort(ctx, p, model.Output)
		if err != nil {
			return nil, fmt.Errorf("in node '%s', output '%s': %w", n.ID, p.ID, err)
		}
		def.Ports = append(def.Ports, pd)
	}
	return def, nil
}

func flowPort(p *flowPortBlock, dir model.Direction) *config.PortDefinition {
	return &config.PortDefinition{
		ID:        nodeid.PortID(p.ID),
		Kind:      model.Flow,
		Direction: dir,
		Label:     p.Label,
		Type:      cty.NilType,
	}
}

// translateValuePort handles the type, accepted types and default of a
// single value port.
func (l *Loader) translateValuePort(ctx context.Context, p *valuePortBlock, dir model.Direction) (*config.PortDefinition, error) {
	pd := &config.PortDefinition{
		ID:        nodeid.PortID(p.ID),
		Kind:      model.Value,
		Direction: dir,
		Label:     p.Label,
		Type:      cty.DynamicPseudoType,
	}

	if isExprDefined(ctx, p.Type, "type") {
		t, err := typeExprToCtyType(ctx, l.catalog, p.Type)
		if err != nil {
			return nil, err
		}
		pd.Type = t
	}

	if isExprDefined(ctx, p.Accepts, "accepts") {
		if dir != model.Input {
			return nil, fmt.Errorf("only inputs can declare accepted types")
		}
		types, err := typeListExpr(ctx, l.catalog, p.Accepts)
		if err != nil {
			return nil, fmt.Errorf("invalid accepts list: %w", err)
		}
		pd.Accepts = types
	}

	if isExprDefined(ctx, p.Default, "default") {
		if dir != model.Input {
			return nil, fmt.Errorf("only inputs can declare a default")
		}
		val, diags := p.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid default value: %w", diags)
		}
		if !val.IsNull() {
			pd.Default = &val
		}
	}
	return pd, nil
}

// translateConnection parses the port addresses of a connect block.
func translateConnection(c *connectBlock) (*config.ConnectionDefinition, error) {
	from, err := nodeid.Parse(c.From)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid 'from': %w", c.DeclRange, err)
	}
	to, err := nodeid.Parse(c.To)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid 'to': %w", c.DeclRange, err)
	}
	return &config.ConnectionDefinition{From: from, To: to, Proxy: c.Proxy}, nil
}
