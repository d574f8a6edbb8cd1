package cayley

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/shortword/pkg/perm"
)

// Edge is a Cayley graph edge labelled by a generator letter.
type Edge struct {
	From, To int
	Letter   perm.Letter
}

// Graph is the part of a Cayley graph within some radius of the identity.
// Vertex 0 is the identity.
type Graph struct {
	Vertices []perm.Elem
	Edges    []Edge
}

// Ball collects every element within radius letters of the identity, and
// the edges between them for the positive generator letters.
func Ball(gens *perm.GeneratorSet, radius int) *Graph {
	g := &Graph{}
	index := make(map[string]int)

	ex := NewDepthLimited(gens, radius)
	for {
		e, ok := ex.Next()
		if !ok {
			break
		}
		index[e.Perm.Key()] = len(g.Vertices)
		g.Vertices = append(g.Vertices, e)
	}

	for from, v := range g.Vertices {
		for i := 0; i < gens.Len(); i++ {
			l := perm.Letter(2 * i)
			to, ok := index[perm.Compose(gens.Perm(l), v.Perm).Key()]
			if !ok {
				continue
			}
			g.Edges = append(g.Edges, Edge{From: from, To: to, Letter: l})
		}
	}
	return g
}

// ToDOT returns a Graphviz digraph of g. Vertices are labelled with their
// words in move notation, "e" for the identity, and edges with the
// generator name.
func (g *Graph) ToDOT(gens *perm.GeneratorSet) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Cayley {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, shape=box, style=\"filled,rounded\", fillcolor=white];\n")
	buf.WriteString("  edge [fontname=\"SF Mono, Menlo, monospace\", fontsize=10];\n\n")

	for i, v := range g.Vertices {
		label := gens.Render(v.Word)
		if label == "" {
			label = "e"
		}
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", i, label)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", e.From, e.To, gens.Name(e.Letter))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT document to SVG with the embedded Graphviz
// library.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
