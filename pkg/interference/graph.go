// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package interference

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/liveness"
)

// Graph is an undirected interference graph over the general purpose registers
// and variables of a function.  Two nodes are adjacent if they cannot share a
// register.  The adjacency of each node is a bitset over the function's
// liveness universe, and is kept symmetric and free of self-edges.
type Graph struct {
	universe  *liveness.Universe
	adjacency []*bitset.BitSet
}

// NewGraph constructs a graph without edges over the given universe.
func NewGraph(universe *liveness.Universe) *Graph {
	var adjacency = make([]*bitset.BitSet, universe.Len())
	//
	for i := range adjacency {
		adjacency[i] = universe.Empty()
	}
	//
	return &Graph{universe, adjacency}
}

// Universe returns the universe of names over which this graph is defined.
func (p *Graph) Universe() *liveness.Universe {
	return p.universe
}

// Len returns the number of nodes in this graph.
func (p *Graph) Len() uint {
	return uint(len(p.adjacency))
}

// Nodes returns the names of all nodes in this graph, sorted alphabetically.
func (p *Graph) Nodes() []string {
	var names = slices.Clone(p.universe.Names())
	//
	slices.Sort(names)
	//
	return names
}

// Row returns the neighbours of the node with the given index.  The returned
// set must not be modified.
func (p *Graph) Row(node uint) *bitset.BitSet {
	return p.adjacency[node]
}

// Neighbours returns the names of all nodes adjacent to a given node, sorted
// alphabetically.  Unknown names have no neighbours.
func (p *Graph) Neighbours(name string) []string {
	if i, ok := p.universe.Index(name); ok {
		return p.universe.Sorted(p.adjacency[i])
	}
	//
	return nil
}

// Degree returns the number of nodes adjacent to a given node.
func (p *Graph) Degree(name string) uint {
	if i, ok := p.universe.Index(name); ok {
		return p.adjacency[i].Count()
	}
	//
	return 0
}

// Interferes checks whether two nodes are adjacent.
func (p *Graph) Interferes(lhs string, rhs string) bool {
	i, ok1 := p.universe.Index(lhs)
	j, ok2 := p.universe.Index(rhs)
	//
	return ok1 && ok2 && p.adjacency[i].Test(j)
}

// AddEdge adds an edge between two nodes, identified by index.  Self-edges are
// ignored.
func (p *Graph) AddEdge(i uint, j uint) {
	if i != j {
		p.adjacency[i].Set(j)
		p.adjacency[j].Set(i)
	}
}

// AddClique adds an edge between every distinct pair of nodes in a given set.
func (p *Graph) AddClique(nodes *bitset.BitSet) {
	for i, ok := nodes.NextSet(0); ok; i, ok = nodes.NextSet(i + 1) {
		p.adjacency[i].InPlaceUnion(nodes)
		p.adjacency[i].Clear(i)
	}
}

// AddBiclique adds an edge between every node of one set and every distinct
// node of another.
func (p *Graph) AddBiclique(lhs *bitset.BitSet, rhs *bitset.BitSet) {
	for i, ok := lhs.NextSet(0); ok; i, ok = lhs.NextSet(i + 1) {
		p.adjacency[i].InPlaceUnion(rhs)
		p.adjacency[i].Clear(i)
	}
	//
	for j, ok := rhs.NextSet(0); ok; j, ok = rhs.NextSet(j + 1) {
		p.adjacency[j].InPlaceUnion(lhs)
		p.adjacency[j].Clear(j)
	}
}

// String renders this graph with one line per node, giving the node's name
// followed by its neighbours, with both nodes and neighbours sorted
// alphabetically.
func (p *Graph) String() string {
	var builder strings.Builder
	//
	for _, n := range p.Nodes() {
		builder.WriteString(n)
		//
		for _, m := range p.Neighbours(n) {
			builder.WriteString(" ")
			builder.WriteString(m)
		}
		//
		builder.WriteString("\n")
	}
	//
	return builder.String()
}

// IsRegister checks whether the node with the given index is a (pre-coloured)
// machine register.
func (p *Graph) IsRegister(node uint) bool {
	return l2.IsGeneralPurpose(p.universe.Name(node))
}
