// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh provides the nodes and multilinear elements over which
// finite element fields are defined and evaluated.
package mesh

import (
	"fmt"
	"slices"
	"sync"
)

// Node is a discrete point of a mesh, identified by a number
// that is unique within its [Mesh].
type Node struct {
	Identifier int
}

func (n *Node) String() string {
	if n == nil {
		return "node(nil)"
	}
	return fmt.Sprintf("node(%d)", n.Identifier)
}

// Element is a multilinear Lagrange element of the given dimension
// (1 to 3), with 2^Dimension nodes ordered with xi1 varying fastest.
type Element struct {
	Identifier int
	Dimension  int
	Nodes      []*Node
}

func (e *Element) String() string {
	if e == nil {
		return "element(nil)"
	}
	return fmt.Sprintf("element(%d, %dD)", e.Identifier, e.Dimension)
}

// NumNodes returns the number of nodes of a multilinear element of
// the given dimension.
func NumNodes(dimension int) int {
	return 1 << dimension
}

// Mesh is an ordered collection of nodes and elements.
// It is safe for concurrent use.
type Mesh struct {
	mu       sync.RWMutex
	nodes    []*Node
	nodeIDs  map[int]*Node
	elements []*Element
	elemIDs  map[int]*Element
}

// New returns a new empty mesh.
func New() *Mesh {
	return &Mesh{nodeIDs: map[int]*Node{}, elemIDs: map[int]*Element{}}
}

// AddNode adds a new node with the given identifier.
func (m *Mesh) AddNode(id int) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, has := m.nodeIDs[id]; has {
		return nil, fmt.Errorf("mesh.AddNode: node %d already exists", id)
	}
	n := &Node{Identifier: id}
	m.nodes = append(m.nodes, n)
	m.nodeIDs[id] = n
	return n, nil
}

// AddElement adds a new element of the given dimension using the
// nodes with the given identifiers, which must already exist.
func (m *Mesh) AddElement(id, dimension int, nodeIDs ...int) (*Element, error) {
	if dimension < 1 || dimension > 3 {
		return nil, fmt.Errorf("mesh.AddElement: invalid dimension %d", dimension)
	}
	if len(nodeIDs) != NumNodes(dimension) {
		return nil, fmt.Errorf("mesh.AddElement: %dD element needs %d nodes, not %d", dimension, NumNodes(dimension), len(nodeIDs))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, has := m.elemIDs[id]; has {
		return nil, fmt.Errorf("mesh.AddElement: element %d already exists", id)
	}
	el := &Element{Identifier: id, Dimension: dimension, Nodes: make([]*Node, len(nodeIDs))}
	for i, nid := range nodeIDs {
		n, ok := m.nodeIDs[nid]
		if !ok {
			return nil, fmt.Errorf("mesh.AddElement: element %d: node %d not found", id, nid)
		}
		el.Nodes[i] = n
	}
	m.elements = append(m.elements, el)
	m.elemIDs[id] = el
	return el, nil
}

// Node returns the node with the given identifier, or nil.
func (m *Mesh) Node(id int) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodeIDs[id]
}

// Element returns the element with the given identifier, or nil.
func (m *Mesh) Element(id int) *Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.elemIDs[id]
}

// Nodes returns the nodes in the order they were added.
func (m *Mesh) Nodes() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.nodes)
}

// Elements returns the elements in the order they were added.
func (m *Mesh) Elements() []*Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.elements)
}
