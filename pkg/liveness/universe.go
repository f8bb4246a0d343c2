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

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-l2/pkg/l2"
)

// Universe is the finite set of names over which the liveness sets of a given
// function range.  It consists of the general purpose registers, followed by
// the function's variables in order of first occurrence.  Every name is
// identified by its index, and sets of names are represented as bitsets over
// these indices.
type Universe struct {
	names []string
	index map[string]uint
}

// NewUniverse constructs the universe of names for a given function.
func NewUniverse(fn *l2.Function) *Universe {
	var (
		names = slices.Clone(l2.GENERAL_PURPOSE_REGISTERS)
		index = make(map[string]uint)
	)
	//
	for _, v := range fn.Variables() {
		names = append(names, l2.NewVariable(v).String())
	}
	//
	for i, n := range names {
		index[n] = uint(i)
	}
	//
	return &Universe{names, index}
}

// Len returns the number of names in this universe.
func (p *Universe) Len() uint {
	return uint(len(p.names))
}

// Name returns the name with the given index.
func (p *Universe) Name(i uint) string {
	return p.names[i]
}

// Index returns the index of a given name, or false if it is not part of this
// universe.
func (p *Universe) Index(name string) (uint, bool) {
	i, ok := p.index[name]
	return i, ok
}

// Names returns all names in this universe, in index order.
func (p *Universe) Names() []string {
	return p.names
}

// Empty returns an empty set over this universe.
func (p *Universe) Empty() *bitset.BitSet {
	return bitset.New(p.Len())
}

// Set constructs the set containing the given names.  Names outside this
// universe cause a panic, since Analyse rejects them beforehand.
func (p *Universe) Set(names ...string) *bitset.BitSet {
	var set = p.Empty()
	//
	for _, n := range names {
		i, ok := p.index[n]
		if !ok {
			panic("unknown name " + n)
		}
		//
		set.Set(i)
	}
	//
	return set
}

// Sorted returns the names held in a given set, sorted alphabetically.
func (p *Universe) Sorted(set *bitset.BitSet) []string {
	var names = make([]string, 0, set.Count())
	//
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		names = append(names, p.names[i])
	}
	//
	slices.Sort(names)
	//
	return names
}
