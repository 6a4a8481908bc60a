// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological
// sorting, stage layering and cycle detection. The transform pipeline uses it
// to order transform stages that declare "runs before" relationships.
package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the sentinel wrapped by every CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle names the nodes that are part of, or blocked by, the cycle
		// (enough to identify the problem, in insertion order).
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Edges represent "must run before" relationships: an edge from A to B
	// means A must complete before B starts.
	Graph[K comparable] struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[K][]K
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []K
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[K]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{
		adjacency: make(map[K][]K),
		nodeSet:   make(map[K]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph[K]) AddNode(node K) {
	if g.nodeSet[node] {
		return
	}
	g.nodeSet[node] = true
	g.nodes = append(g.nodes, node)
}

// AddEdge adds a directed edge from -> to, meaning "from" must run before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Has reports whether node was added.
func (g *Graph[K]) Has(node K) bool { return g.nodeSet[node] }

// Len returns the number of nodes.
func (g *Graph[K]) Len() int { return len(g.nodes) }

// TopologicalSort returns a valid execution order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph[K]) TopologicalSort() ([]K, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var result []K
	for _, level := range levels {
		result = append(result, level...)
	}
	return result, nil
}

// Levels groups nodes into stages: every node's predecessors sit in an
// earlier stage. Nodes within a stage keep insertion order.
// Returns CycleError if the graph contains a cycle.
func (g *Graph[K]) Levels() ([][]K, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[K]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	// Seed with nodes that have no incoming edges, in insertion order.
	var current []K
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			current = append(current, node)
		}
	}

	var levels [][]K
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		released := make(map[K]bool)
		for _, node := range current {
			for _, neighbor := range g.adjacency[node] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					released[neighbor] = true
				}
			}
		}
		var next []K
		for _, node := range g.nodes {
			if released[node] {
				next = append(next, node)
			}
		}
		current = next
	}

	if placed != len(g.nodes) {
		// Remaining nodes with non-zero in-degree form or follow the cycle.
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, fmt.Sprint(node))
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return levels, nil
}
