// Package preview renders a graph document as Mermaid text.
package preview

import (
	"fmt"
	"strings"

	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
)

// ToMermaid exports the document to Mermaid flowchart syntax. Flow edges are
// drawn thick, value edges are labelled with their ports and proxy edges are
// dotted. References that do not resolve are left out.
func ToMermaid(doc document.Provider) string {
	var sb strings.Builder

	sb.WriteString("graph TD\n")

	nodes := doc.Nodes()
	for _, n := range nodes {
		sb.WriteString(fmt.Sprintf("    %s%s\n", mermaidID(n.ID), shape(n)))
	}

	for _, n := range nodes {
		for _, p := range n.Ports() {
			e, ok := model.EdgeFromOwner(p)
			if !ok || !resolves(doc, e) {
				continue
			}
			sb.WriteString("    " + edgeLine(e) + "\n")
		}
	}

	return sb.String()
}

func shape(n *model.Node) string {
	label := escape(n.DisplayName())
	switch {
	case n.Reroute:
		return fmt.Sprintf("((%q))", label)
	case n.Reentrant:
		return fmt.Sprintf("{{%q}}", label)
	case n.IsFlowNode():
		return fmt.Sprintf("[%q]", label)
	default:
		return fmt.Sprintf("(%q)", label)
	}
}

func edgeLine(e model.Edge) string {
	from, to := mermaidID(e.From.Node), mermaidID(e.To.Node)
	switch {
	case e.Proxy:
		return fmt.Sprintf("%s -.-> %s", from, to)
	case e.Kind == model.Flow:
		return fmt.Sprintf("%s ==> %s", from, to)
	default:
		return fmt.Sprintf("%s -->|%s:%s| %s", from, e.From.Port, e.To.Port, to)
	}
}

func resolves(doc document.Provider, e model.Edge) bool {
	_, okFrom := doc.Port(e.From)
	_, okTo := doc.Port(e.To)
	return okFrom && okTo
}

// mermaidID keeps ids usable as Mermaid node names; `-` is legal, but ids
// that collide with keywords are prefixed.
func mermaidID(id nodeid.ID) string {
	switch s := string(id); s {
	case "end", "graph", "subgraph", "style", "class":
		return "n_" + s
	default:
		return s
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}
