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
package liveness

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-l2/pkg/l2"
)

// Sets holds the liveness sets of a single instruction.  These satisfy, at the
// fixed point, In = Gen ∪ (Out \ Kill) and Out = ∪ In[s] over every successor
// s of the instruction.
type Sets struct {
	Gen  *bitset.BitSet
	Kill *bitset.BitSet
	In   *bitset.BitSet
	Out  *bitset.BitSet
}

// Result provides the liveness sets for every instruction of a function, keyed
// by instruction index.  Observe that any rewriting of the function
// invalidates these indices, hence the analysis must be rerun from scratch.
type Result struct {
	function   *l2.Function
	universe   *Universe
	labels     map[string]uint
	successors [][]uint
	sets       []Sets
	passes     uint
}

// Analyse computes the liveness sets for every instruction of a given
// function.  This iterates backwards over the instructions, recomputing the in
// and out sets of each, until a complete pass makes no change.  An error is
// returned if a branch targets an undefined label (or a label is defined
// twice), if an instruction refers to an unknown register, or if the fixed
// point is not reached within the theoretical bound on the number of passes.
func Analyse(fn *l2.Function) (*Result, error) {
	var (
		universe = NewUniverse(fn)
		n        = uint(len(fn.Code))
		sets     = make([]Sets, n)
	)
	//
	labels, err := Labels(fn)
	if err != nil {
		return nil, err
	}
	//
	successors, err := Successors(fn, labels)
	if err != nil {
		return nil, err
	}
	//
	for i, insn := range fn.Code {
		gen, kill := Effects(insn)
		//
		for _, name := range append(slices.Clone(gen), kill...) {
			if _, ok := universe.Index(name); !ok {
				return nil, &RegisterError{fn.Name, uint(i), name}
			}
		}
		//
		sets[i] = Sets{universe.Set(gen...), universe.Set(kill...), universe.Empty(), universe.Empty()}
	}
	// Each pass which makes a change adds at least one name to some in or out
	// set, hence the number of passes is bounded.
	var (
		bound  = 2*n*universe.Len() + 2
		passes uint
	)
	//
	for changed := true; changed; {
		if passes == bound {
			return nil, &ConvergenceError{fn.Name, passes}
		}
		//
		changed = false
		passes++
		//
		for i := int(n) - 1; i >= 0; i-- {
			ith := &sets[i]
			out := universe.Empty()
			//
			for _, s := range successors[i] {
				out.InPlaceUnion(sets[s].In)
			}
			//
			in := out.Difference(ith.Kill)
			in.InPlaceUnion(ith.Gen)
			//
			if !equal(in, ith.In) || !equal(out, ith.Out) {
				changed = true
				ith.In, ith.Out = in, out
			}
		}
	}
	//
	return &Result{fn, universe, labels, successors, sets, passes}, nil
}

// Function returns the function over which this analysis was performed.
func (p *Result) Function() *l2.Function {
	return p.function
}

// Universe returns the names over which the liveness sets range.
func (p *Result) Universe() *Universe {
	return p.universe
}

// Len returns the number of instructions analysed.
func (p *Result) Len() uint {
	return uint(len(p.sets))
}

// Passes returns the number of backwards passes required to reach the fixed
// point (including the final pass which made no change).
func (p *Result) Passes() uint {
	return p.passes
}

// Labels returns the mapping from labels to the indices of the instructions
// defining them.
func (p *Result) Labels() map[string]uint {
	return p.labels
}

// Successors returns the control-flow successors of the ith instruction.
func (p *Result) Successors(i uint) []uint {
	return p.successors[i]
}

// Sets returns the liveness sets of the ith instruction.
func (p *Result) Sets(i uint) Sets {
	return p.sets[i]
}

// Gen returns the names read by the ith instruction, sorted alphabetically.
func (p *Result) Gen(i uint) []string {
	return p.universe.Sorted(p.sets[i].Gen)
}

// Kill returns the names written by the ith instruction, sorted alphabetically.
func (p *Result) Kill(i uint) []string {
	return p.universe.Sorted(p.sets[i].Kill)
}

// In returns the names live on entry to the ith instruction, sorted
// alphabetically.
func (p *Result) In(i uint) []string {
	return p.universe.Sorted(p.sets[i].In)
}

// Out returns the names live on exit from the ith instruction, sorted
// alphabetically.
func (p *Result) Out(i uint) []string {
	return p.universe.Sorted(p.sets[i].Out)
}

// String renders the in and out sets of every instruction, one parenthesised
// and alphabetically sorted set per line, suitable for golden-file
// comparison.
func (p *Result) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(\n(in\n")
	//
	for i := uint(0); i < p.Len(); i++ {
		writeSet(&builder, p.In(i))
	}
	//
	builder.WriteString(")\n\n(out\n")
	//
	for i := uint(0); i < p.Len(); i++ {
		writeSet(&builder, p.Out(i))
	}
	//
	builder.WriteString(")\n\n)\n")
	//
	return builder.String()
}

func writeSet(builder *strings.Builder, names []string) {
	builder.WriteString("(")
	builder.WriteString(strings.Join(names, " "))
	builder.WriteString(")\n")
}

func equal(lhs *bitset.BitSet, rhs *bitset.BitSet) bool {
	return lhs.SymmetricDifferenceCardinality(rhs) == 0
}
