package config

import (
	"context"
	"fmt"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// DeclareTypes registers the named types in the catalog. Definitions may
// appear in any order; a type is declared once all of its supertypes are
// known. Unknown supertypes and circular declarations are errors.
func DeclareTypes(c *typesys.Catalog, defs []*TypeDefinition) error {
	pending := make([]*TypeDefinition, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if seen[def.Name] {
			return fmt.Errorf("type %q is declared more than once", def.Name)
		}
		seen[def.Name] = true
		pending = append(pending, def)
	}

	for len(pending) > 0 {
		var next []*TypeDefinition
		for _, def := range pending {
			if !supertypesKnown(c, def) {
				next = append(next, def)
				continue
			}
			if _, err := c.Declare(def.Name, def.Implements...); err != nil {
				return err
			}
		}
		if len(next) == len(pending) {
			def := next[0]
			for _, s := range def.Implements {
				if _, ok := c.Lookup(s); !ok && !seen[s] {
					return fmt.Errorf("type %q: unknown supertype %q", def.Name, s)
				}
			}
			return fmt.Errorf("type %q: circular implements declaration", def.Name)
		}
		pending = next
	}
	return nil
}

func supertypesKnown(c *typesys.Catalog, def *TypeDefinition) bool {
	for _, s := range def.Implements {
		if _, ok := c.Lookup(s); !ok {
			return false
		}
	}
	return true
}

// BuildNodes turns the node definitions into model nodes. Literal defaults
// are converted to the port type.
func (m *Model) BuildNodes() ([]*model.Node, error) {
	nodes := make([]*model.Node, 0, len(m.Nodes))
	for _, def := range m.Nodes {
		n := model.NewNode(def.ID, def.Type)
		n.Label = def.Label
		n.Reentrant = def.Reentrant
		n.Reroute = def.Reroute
		for _, pd := range def.Ports {
			p, err := pd.build()
			if err != nil {
				return nil, fmt.Errorf("node '%s': %w", def.ID, err)
			}
			if err := n.AddPort(p); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// BuildDocument creates an in-memory document holding every node of the
// model. Connections are left to the caller.
func (m *Model) BuildDocument(ctx context.Context) (*document.Memory, error) {
	logger := ctxlog.FromContext(ctx)

	nodes, err := m.BuildNodes()
	if err != nil {
		return nil, err
	}
	doc := document.NewMemory()
	for _, n := range nodes {
		if err := doc.AddNode(n); err != nil {
			return nil, err
		}
	}
	logger.Debug("Document built from definition.", "nodes", len(nodes), "declared_connections", len(m.Connections))
	return doc, nil
}

func (p *PortDefinition) build() (*model.Port, error) {
	var port *model.Port
	switch p.Kind {
	case model.Flow:
		if len(p.Accepts) > 0 || p.Default != nil {
			return nil, fmt.Errorf("flow port '%s' cannot declare accepted types or a default", p.ID)
		}
		if p.Direction == model.Input {
			port = model.FlowIn(p.ID)
		} else {
			port = model.FlowOut(p.ID)
		}
	case model.Value:
		t := p.Type
		if t == cty.NilType {
			t = cty.DynamicPseudoType
		}
		if p.Direction == model.Input {
			port = model.ValueIn(p.ID, t)
		} else {
			port = model.ValueOut(p.ID, t)
		}
		if len(p.Accepts) > 0 {
			if p.Direction != model.Input {
				return nil, fmt.Errorf("output '%s' cannot declare accepted types", p.ID)
			}
			port.Filter = typesys.Accepting(p.Accepts...)
		}
		if p.Default != nil {
			if p.Direction != model.Input {
				return nil, fmt.Errorf("output '%s' cannot declare a default", p.ID)
			}
			v, err := typesys.FromLiteral(t, *p.Default)
			if err != nil {
				return nil, fmt.Errorf("default for input '%s': %w", p.ID, err)
			}
			port.Value = v
		}
	default:
		return nil, fmt.Errorf("port '%s' has unknown kind %s", p.ID, p.Kind)
	}
	port.Label = p.Label
	return port, nil
}
