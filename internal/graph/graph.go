package graph

import "fmt"

// Graph is a directed graph over nodes of one kind ("task" or
// "container"). An edge from A to B means B cannot proceed until A is
// satisfied: a prerequisite task before its dependent, a dependency
// container before the container that needs it.
type Graph struct {
	kind  string
	nodes map[string]*node
}

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph for nodes of the
// given kind.
func New(kind string) *Graph {
	return &Graph{kind: kind, nodes: make(map[string]*node)}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge creates a directed edge from the `fromID` node to the `toID`
// node, meaning `toID` depends on `fromID`. An error is returned if
// either node does not exist or if the edge would be self-referential.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	return deps, nil
}

// DetectCycles checks the graph for any cycles. It returns a
// CyclicDependencyError naming a member of the first cycle found.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited, known not to be part of a cycle.
	// temporary: currently on the recursion stack.
	// unvisited: everything else.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			// A node already on the recursion stack means we came back
			// around to it: a cycle.
			return &CyclicDependencyError{Kind: g.kind, Node: n.id}
		}

		temporary[n.id] = true
		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, n := range g.nodes {
		if !permanent[n.id] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
