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
package coloring

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-l2/pkg/interference"
	"github.com/consensys/go-l2/pkg/l2"
)

// Heuristic determines which node is removed when simplification finds no
// node with fewer neighbours than there are registers.  All heuristics are
// deterministic.
type Heuristic uint8

const (
	// HIGHEST_DEGREE removes the node with the most remaining neighbours,
	// which frees the most constraints on the rest of the graph.  Ties are
	// broken alphabetically.
	HIGHEST_DEGREE Heuristic = iota
	// FIRST_SEEN removes the variable occurring first in the function.
	FIRST_SEEN
)

// Options configures a colouring attempt.
type Options struct {
	// Heuristic for choosing spill candidates.
	Heuristic Heuristic
	// Variables which must not be spilled, typically because they were
	// introduced by earlier spilling.
	Unspillable []string
}

// Result is the outcome of a single colouring attempt.  Exactly one of
// Colouring or Spills is non-empty (unless the function has no variables).
type Result struct {
	// Assignment of registers to variables, when every variable was coloured.
	Colouring map[string]string
	// Variables chosen for spilling, sorted alphabetically.
	Spills []string
	// Number of nodes removed optimistically during simplification.
	Optimistic uint
}

// Colour attempts to colour the variables of a given interference graph using
// the general purpose registers, which act as pre-coloured nodes.  This uses
// the simplify / select approach: nodes with fewer than K remaining
// neighbours are removed onto a stack (preferring the lowest degree), falling
// back on the heuristic when no such node exists; then nodes are popped in
// reverse order and given the first register (in colour order) not already
// taken by a neighbour.  Nodes which cannot be coloured are returned as the
// spill set, in which case no colouring is returned.
func Colour(function string, graph *interference.Graph, options Options) (*Result, error) {
	var (
		k          = l2.NumGeneralPurpose()
		universe   = graph.Universe()
		present    = universe.Empty()
		remaining  []uint
		stack      stack
		optimistic uint
	)
	//
	for i := uint(0); i < graph.Len(); i++ {
		present.Set(i)
		//
		if !graph.IsRegister(i) {
			remaining = append(remaining, i)
		}
	}
	// Simplify
	for len(remaining) > 0 {
		node, degree := pickLowNode(graph, present, remaining, k)
		//
		if degree >= k {
			node, degree = pickHighNode(graph, present, remaining, options)
			optimistic++
		}
		//
		stack.Push(entry{node, degree >= k, degree})
		present.Clear(node)
		remaining = slices.DeleteFunc(remaining, func(n uint) bool { return n == node })
	}
	// Select
	var (
		colours = make([]int, graph.Len())
		failed  []string
	)
	//
	for i := range colours {
		colours[i] = registerColour(universe.Name(uint(i)))
	}
	//
	for !stack.IsEmpty() {
		e := stack.Pop()
		//
		if c := firstFreeColour(graph.Row(e.node), colours, k); c >= 0 {
			colours[e.node] = c
		} else if e.optimistic {
			failed = append(failed, universe.Name(e.node))
		} else {
			return nil, &InvariantError{function, universe.Name(e.node), e.degree}
		}
	}
	//
	if len(failed) > 0 {
		return spillResult(function, failed, options, optimistic)
	}
	//
	colouring := make(map[string]string)
	//
	for i := uint(0); i < graph.Len(); i++ {
		if !graph.IsRegister(i) {
			colouring[universe.Name(i)] = l2.GENERAL_PURPOSE_REGISTERS[colours[i]]
		}
	}
	//
	return &Result{colouring, nil, optimistic}, nil
}

// Identify the remaining node with the lowest degree, breaking ties
// alphabetically.
func pickLowNode(graph *interference.Graph, present *bitset.BitSet, remaining []uint, k uint) (uint, uint) {
	var (
		best       = remaining[0]
		bestDegree = degree(graph, present, best)
	)
	//
	for _, n := range remaining[1:] {
		d := degree(graph, present, n)
		//
		if d < bestDegree || (d == bestDegree && before(graph, n, best)) {
			best, bestDegree = n, d
		}
	}
	//
	return best, bestDegree
}

// Identify a node to remove optimistically, using the configured heuristic.
// Spillable nodes are always preferred over unspillable ones.
func pickHighNode(graph *interference.Graph, present *bitset.BitSet, remaining []uint,
	options Options) (uint, uint) {
	var (
		best      = remaining[0]
		bestScore = score(graph, present, best, options)
	)
	//
	for _, n := range remaining[1:] {
		s := score(graph, present, n, options)
		//
		if s.better(bestScore) || (s == bestScore && before(graph, n, best)) {
			best, bestScore = n, s
		}
	}
	//
	return best, bestScore.degree
}

type candidate struct {
	spillable bool
	rank      uint
	degree    uint
}

func score(graph *interference.Graph, present *bitset.BitSet, node uint, options Options) candidate {
	var (
		name = graph.Universe().Name(node)
		d    = degree(graph, present, node)
		rank = d
	)
	//
	if options.Heuristic == FIRST_SEEN {
		// Earlier variables have higher rank.
		rank = graph.Len() - node
	}
	//
	return candidate{!slices.Contains(options.Unspillable, name), rank, d}
}

func (p candidate) better(other candidate) bool {
	if p.spillable != other.spillable {
		return p.spillable
	}
	//
	return p.rank > other.rank
}

func spillResult(function string, failed []string, options Options, optimistic uint) (*Result, error) {
	var spills []string
	//
	for _, n := range failed {
		if !slices.Contains(options.Unspillable, n) {
			spills = append(spills, n)
		}
	}
	//
	if len(spills) == 0 {
		slices.Sort(failed)
		return nil, &UnsatisfiableError{function, failed}
	}
	//
	slices.Sort(spills)
	//
	return &Result{nil, spills, optimistic}, nil
}

// Determine the first colour not used by any coloured neighbour, or -1 if
// there is none.
func firstFreeColour(neighbours *bitset.BitSet, colours []int, k uint) int {
	var used = bitset.New(k)
	//
	for i, ok := neighbours.NextSet(0); ok; i, ok = neighbours.NextSet(i + 1) {
		if colours[i] >= 0 {
			used.Set(uint(colours[i]))
		}
	}
	//
	if c, ok := used.NextClear(0); ok && c < k {
		return int(c)
	}
	//
	return -1
}

// Registers are pre-coloured with their position in the colour order, whilst
// variables start uncoloured.
func registerColour(name string) int {
	return slices.Index(l2.GENERAL_PURPOSE_REGISTERS, name)
}

// Count the neighbours of a node which are still present in the graph.
func degree(graph *interference.Graph, present *bitset.BitSet, node uint) uint {
	return graph.Row(node).IntersectionCardinality(present)
}

func before(graph *interference.Graph, lhs uint, rhs uint) bool {
	var universe = graph.Universe()
	//
	return universe.Name(lhs) < universe.Name(rhs)
}
