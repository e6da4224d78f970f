package core

// Relation connects two concept keys with an accumulated weight.
// In dependency mode Source and Target are ordered; in co-occurrence mode
// they are the orientation in which the pair was first observed.
type Relation struct {
	Source string
	Target string
	Weight int
}

// RelationList is an ordered sequence of relations.
type RelationList []Relation

// TotalWeight returns the sum of all relation weights.
func (rl RelationList) TotalWeight() int {
	total := 0
	for _, r := range rl {
		total += r.Weight
	}
	return total
}

// Node is a graph vertex. Size is derived from the concept count.
type Node struct {
	ID   string
	Size int
}

// Edge is a weighted graph edge.
type Edge struct {
	Source   string
	Target   string
	Weight   int
	Directed bool
}

// edgeKey identifies an edge. Undirected edges use a canonical ordering.
type edgeKey struct {
	a, b string
}

// Graph is a weighted concept graph. Nodes and edges keep insertion order.
//
// The zero value is not usable; create graphs with NewGraph.
type Graph struct {
	directed  bool
	nodes     []Node
	nodeIndex map[string]int
	edges     []Edge
	edgeIndex map[edgeKey]int
}

// NewGraph creates an empty graph.
func NewGraph(directed bool) *Graph {
	return &Graph{
		directed:  directed,
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// Directed reports whether edges are directed.
func (g *Graph) Directed() bool {
	return g.directed
}

// AddNode inserts a node if it is not present yet.
// It reports whether the node was inserted.
func (g *Graph) AddNode(id string, size int) bool {
	if _, ok := g.nodeIndex[id]; ok {
		return false
	}
	g.nodeIndex[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Size: size})
	return true
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// AddEdgeWeight adds weight to the edge between source and target,
// inserting the edge if it does not exist. Endpoints must already be nodes.
func (g *Graph) AddEdgeWeight(source, target string, weight int) {
	key := g.key(source, target)
	if idx, ok := g.edgeIndex[key]; ok {
		g.edges[idx].Weight += weight
		return
	}
	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, Edge{
		Source:   source,
		Target:   target,
		Weight:   weight,
		Directed: g.directed,
	})
}

// Edge returns the edge between source and target, respecting directedness.
func (g *Graph) Edge(source, target string) (Edge, bool) {
	idx, ok := g.edgeIndex[g.key(source, target)]
	if !ok {
		return Edge{}, false
	}
	return g.edges[idx], true
}

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// TotalWeight returns the sum of all edge weights.
func (g *Graph) TotalWeight() int {
	total := 0
	for _, e := range g.edges {
		total += e.Weight
	}
	return total
}

func (g *Graph) key(source, target string) edgeKey {
	if !g.directed && target < source {
		return edgeKey{a: target, b: source}
	}
	return edgeKey{a: source, b: target}
}
