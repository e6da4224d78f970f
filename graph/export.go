package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/conceptmap/core"
)

// Document is the serializable form of a graph: a node list and an edge
// list, suitable for force-directed layout.
type Document struct {
	Directed bool           `json:"directed"`
	Nodes    []NodeDocument `json:"nodes"`
	Edges    []EdgeDocument `json:"edges"`
}

// NodeDocument is a serialized node.
type NodeDocument struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

// EdgeDocument is a serialized edge.
type EdgeDocument struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Weight   int    `json:"weight"`
	Directed bool   `json:"directed"`
}

// NewDocument converts a graph to its serializable form.
func NewDocument(g *core.Graph) Document {
	doc := Document{
		Directed: g.Directed(),
		Nodes:    make([]NodeDocument, 0, g.NodeCount()),
		Edges:    make([]EdgeDocument, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeDocument{ID: n.ID, Size: n.Size})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeDocument{
			Source:   e.Source,
			Target:   e.Target,
			Weight:   e.Weight,
			Directed: e.Directed,
		})
	}
	return doc
}

// WriteJSON writes the graph as an indented JSON document.
func WriteJSON(w io.Writer, g *core.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(g))
}

// WriteDOT writes the graph in Graphviz DOT syntax.
// Node width follows node size and pen width follows edge weight.
func WriteDOT(w io.Writer, g *core.Graph) error {
	kind, arrow := "graph", "--"
	if g.Directed() {
		kind, arrow = "digraph", "->"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s conceptmap {\n", kind)
	b.WriteString("  node [shape=ellipse, style=filled, fillcolor=skyblue];\n")
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  %s [width=%.2f];\n", quote(n.ID), float64(n.Size)/DefaultScale)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s %s %s [weight=%d, penwidth=%d];\n",
			quote(e.Source), arrow, quote(e.Target), e.Weight, e.Weight)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(id string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(id) + `"`
}
