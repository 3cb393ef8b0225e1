// Package dot renders component graphs to Graphviz DOT and raster formats.
//
// Node styling reflects the lifecycle analysis: shareable components get a
// filled box, per-use components a plain one, and unresolved placeholders a
// dashed red outline. Transient dependency edges are dashed.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gantry/pkg/assemble"
	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
)

// Options configures DOT rendering.
type Options struct {
	// Detailed includes cache policy and full type names in node labels.
	// When false, only the short type name is shown.
	Detailed bool

	// Meta supplies type-level defaults for the lifecycle styling.
	// When nil, only nodes with explicit rules and policies are
	// classified as shareable.
	Meta component.Metadata
}

// ToDOT converts a component graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(root *graph.Node, opts Options) string {
	meta := opts.Meta
	if meta == nil {
		meta = component.DefaultRegistry()
	}

	shareable := make(map[*graph.Node]bool)
	for _, n := range assemble.ShareableNodes(root, meta) {
		shareable[n] = true
	}

	nodes := graph.Sorted(root)
	ids := make(map[*graph.Node]string, len(nodes))
	for i, n := range nodes {
		ids[n] = fmt.Sprintf("n%d", i)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph components {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label, shareable[n])
		fmt.Fprintf(&buf, "  %s [%s];\n", ids[n], strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, e := range n.Outgoing() {
			fmt.Fprintf(&buf, "  %s -> %s%s;\n", ids[n], ids[e.Target()], edgeAttrs(e))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	c := n.Label()
	if component.IsRoot(c) {
		return "root"
	}

	name := component.TypeName(c.Rule.ProducedType())
	if !detailed {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return name + "\n" + c.Rule.String() + "\npolicy: " + c.Policy.String()
}

func fmtAttrs(n *graph.Node, label string, shareable bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case component.IsRoot(n.Label()):
		attrs = append(attrs, "shape=point", "width=0.15")
	case isPlaceholder(n):
		attrs = append(attrs, "style=\"rounded,dashed\"", "color=red", "fontcolor=red")
	case shareable:
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

func isPlaceholder(n *graph.Node) bool {
	_, ok := n.Label().Rule.(component.Placeholder)
	return ok
}

func edgeAttrs(e graph.Edge) string {
	var parts []string
	if q := e.Requirement().Qualifier; q != "" {
		parts = append(parts, fmt.Sprintf("label=%q", q))
	}
	if e.Requirement().Transient {
		parts = append(parts, "style=dashed")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
