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
package regalloc

import (
	"fmt"

	"github.com/consensys/go-l2/pkg/coloring"
	"github.com/consensys/go-l2/pkg/interference"
	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/liveness"
	"github.com/consensys/go-l2/pkg/spill"
	"github.com/consensys/go-l2/pkg/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Allocation is the outcome of allocating registers for every function of a
// program.
type Allocation struct {
	// Program with all spilling applied.
	Program *l2.Program
	// Allocation of each function, keyed by function name.
	Functions map[string]*FunctionAllocation
}

// FunctionAllocation is the outcome of allocating registers for a single
// function.
type FunctionAllocation struct {
	// Function with all spilling applied.
	Function *l2.Function
	// Assignment of registers to every variable of the rewritten function.
	Colouring map[string]string
	// Number of colouring rounds required.
	Rounds uint
	// Variables of the original function which were spilled, in order of
	// spilling.
	Spilled []string
}

// Allocate registers for every function in a given program.  Functions are
// allocated one after another, sharing a single name generator so that
// temporaries introduced by spilling are unique across the whole program.
func Allocate(program *l2.Program, config Config) (*Allocation, error) {
	var (
		names     = spill.NewNameGenerator(config.SpillPrefix, program.Variables()...)
		functions = make([]*l2.Function, len(program.Functions))
		allocs    = make(map[string]*FunctionAllocation)
	)
	//
	for i, fn := range program.Functions {
		alloc, err := AllocateFunction(fn, names, config)
		//
		if err != nil {
			return nil, errors.Wrapf(err, "allocating @%s", fn.Name)
		}
		//
		functions[i] = alloc.Function
		allocs[fn.Name] = alloc
	}
	//
	return &Allocation{&l2.Program{Entry: program.Entry, Functions: functions}, allocs}, nil
}

// AllocateFunction allocates registers for a single function.  Each round
// analyses liveness, builds the interference graph and attempts to colour it.
// When colouring fails, the chosen variables are spilled and the next round
// starts again from scratch on the rewritten function.  Temporaries introduced
// by spilling are never themselves spilled.
func AllocateFunction(fn *l2.Function, names *spill.NameGenerator, config Config) (*FunctionAllocation, error) {
	var (
		stats       = util.NewPerfStats()
		unspillable []string
		spilled     []string
	)
	//
	for round := uint(1); ; round++ {
		if config.MaxRounds != 0 && round > config.MaxRounds {
			return nil, &RoundLimitError{fn.Name, config.MaxRounds}
		}
		//
		result, err := liveness.Analyse(fn)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d", round)
		}
		//
		graph := interference.Build(result)
		options := coloring.Options{Heuristic: config.Heuristic, Unspillable: unspillable}
		//
		colouring, err := coloring.Colour(fn.Name, graph, options)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d", round)
		}
		//
		stats.Step()
		log.Debugf("@%s round %d: %d nodes, %d passes, spilling %v", fn.Name, round, graph.Len(),
			result.Passes(), colouring.Spills)
		//
		if len(colouring.Spills) == 0 {
			stats.Log(fmt.Sprintf("Allocating @%s", fn.Name))
			//
			return &FunctionAllocation{fn, colouring.Colouring, round, spilled}, nil
		}
		//
		var temps []string
		//
		fn, temps = spill.Rewrite(fn, colouring.Spills, names)
		unspillable = append(unspillable, temps...)
		spilled = append(spilled, colouring.Spills...)
	}
}
