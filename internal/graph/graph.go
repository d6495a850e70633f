// Package graph provides the dependency graph backing task coordination.
package graph

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCycle indicates a circular dependency was found in the graph.
var ErrCycle = errors.New("circular dependency detected")

// Graph is a directed acyclic graph of task dependencies. Nodes are
// task IDs and edges point from a task to the tasks it depends on.
// Nodes are added incrementally as tasks are created.
type Graph struct {
	mu sync.RWMutex
	// nodes holds every known task ID.
	nodes map[string]bool
	// edges maps a task ID to the IDs it depends on.
	edges map[string][]string
	// completed tracks which tasks have been marked complete.
	completed map[string]bool
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]bool),
		edges:     make(map[string][]string),
		completed: make(map[string]bool),
	}
}

// Add registers a node and its dependency edges. Edges to IDs not in
// the graph are recorded as-is; callers decide whether dangling
// references are an error.
func (g *Graph) Add(id string, dependsOn []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes[id] = true
	g.edges[id] = append([]string(nil), dependsOn...)
}

// WouldCycle reports whether adding a node with the given dependencies
// would close a cycle anywhere in the graph, including transitively.
// The graph is not modified.
func (g *Graph) WouldCycle(id string, dependsOn []string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes[id] = true
	prev, hadEdges := g.edges[id]
	g.edges[id] = append(append([]string(nil), prev...), dependsOn...)

	cyclic := g.hasCycleLocked()

	if hadEdges {
		g.edges[id] = prev
	} else {
		delete(g.edges, id)
		delete(g.nodes, id)
	}
	return cyclic
}

// HasCycle returns true if the graph contains a circular dependency.
func (g *Graph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasCycleLocked()
}

// hasCycleLocked runs depth-first search with tri-coloring to find back
// edges. Caller must hold g.mu.
func (g *Graph) hasCycleLocked() bool {
	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for id := range g.nodes {
		if colors[id] == 0 && visit(id) {
			return true
		}
	}
	return false
}

// MarkComplete records a node as completed, affecting Ready.
func (g *Graph) MarkComplete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed[id] = true
}

// Completed returns true if the node has been marked complete.
func (g *Graph) Completed(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.completed[id]
}

// Ready returns node IDs that are not complete and whose every
// dependency is complete. Dependencies on unknown IDs count as unmet.
func (g *Graph) Ready() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []string
	for id := range g.nodes {
		if g.completed[id] {
			continue
		}
		met := true
		for _, depID := range g.edges[id] {
			if !g.completed[depID] {
				met = false
				break
			}
		}
		if met {
			ready = append(ready, id)
		}
	}
	return ready
}

// Dependencies returns the IDs the given node depends on.
func (g *Graph) Dependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.edges[id]...)
}

// Dependents returns the IDs of nodes that depend on the given node.
func (g *Graph) Dependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for nodeID, deps := range g.edges {
		for _, depID := range deps {
			if depID == id {
				dependents = append(dependents, nodeID)
				break
			}
		}
	}
	return dependents
}

// Size returns the number of nodes in the graph.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// TopologicalSort returns node IDs ordered so every dependency comes
// before the nodes that depend on it. Returns ErrCycle if the graph is
// cyclic, and an error if an edge references an unknown node.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.hasCycleLocked() {
		return nil, ErrCycle
	}

	for id, deps := range g.edges {
		for _, depID := range deps {
			if !g.nodes[depID] {
				return nil, fmt.Errorf("node %s depends on unknown node %s", id, depID)
			}
		}
	}

	visited := make(map[string]bool, len(g.nodes))
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, depID := range g.edges[id] {
			visit(depID)
		}
		result = append(result, id)
	}

	for id := range g.nodes {
		visit(id)
	}
	return result, nil
}
