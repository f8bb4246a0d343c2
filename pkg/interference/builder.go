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

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/liveness"
)

// Build constructs the interference graph of a function from its liveness
// sets.  For every instruction: all names in its in set interfere; all names
// in its out set interfere; and every name it kills interferes with every name
// in its out set.  Furthermore, the general purpose registers all interfere
// with each other, and a variable (or register) used as a shift amount
// interferes with every general purpose register other than rcx.
func Build(result *liveness.Result) *Graph {
	var (
		fn        = result.Function()
		universe  = result.Universe()
		graph     = NewGraph(universe)
		registers = universe.Set(l2.GENERAL_PURPOSE_REGISTERS...)
		shiftable = universe.Set(withoutRcx()...)
	)
	//
	graph.AddClique(registers)
	//
	for i := uint(0); i < result.Len(); i++ {
		sets := result.Sets(i)
		//
		graph.AddClique(sets.In)
		graph.AddClique(sets.Out)
		graph.AddBiclique(sets.Kill, sets.Out)
		//
		if shift, ok := fn.Code[i].(*l2.Shift); ok && l2.IsContributor(shift.Src) {
			amount := universe.Set(l2.LivenessName(shift.Src))
			graph.AddBiclique(amount, shiftable)
		}
	}
	//
	return graph
}

// The registers which cannot hold a shift amount.
func withoutRcx() []string {
	return slices.DeleteFunc(slices.Clone(l2.GENERAL_PURPOSE_REGISTERS), func(r string) bool {
		return r == l2.RCX
	})
}
