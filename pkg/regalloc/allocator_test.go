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
	"strings"
	"testing"

	"github.com/consensys/go-l2/pkg/coloring"
	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/liveness"
	"github.com/consensys/go-l2/pkg/spill"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two functions, each holding a variable live across a call.
const acrossCalls = `(@main
	(@main 0
		(%x <- 1)
		(mem rsp -8 <- :r1)
		(call @f 0)
		:r1
		(rax += %x)
		(return))
	(@f 0
		(%y <- 2)
		(call input 0)
		(rax += %y)
		(return)))`

func Test_DefaultConfig(t *testing.T) {
	config := DefaultConfig()
	//
	assert.Equal(t, uint(0), config.MaxRounds)
	assert.Equal(t, "%S", config.SpillPrefix)
	assert.Equal(t, coloring.HIGHEST_DEGREE, config.Heuristic)
}

func Test_Allocate_NoSpill(t *testing.T) {
	program := parse(t, "(@main (@main 1 (%a <- rdi) (%a *= 2) (rax <- %a) (return)))")
	//
	alloc, err := Allocate(program, DefaultConfig())
	require.NoError(t, err)
	//
	main := alloc.Functions["main"]
	assert.Equal(t, uint(1), main.Rounds)
	assert.Empty(t, main.Spilled)
	assert.Same(t, program.Functions[0], main.Function)
	// Only interferes with the callee saved registers.
	assert.Equal(t, "rdi", main.Colouring["%a"])
}

func Test_Allocate_AcrossCalls(t *testing.T) {
	program := parse(t, acrossCalls)
	//
	alloc, err := Allocate(program, DefaultConfig())
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"%x"}, alloc.Functions["main"].Spilled)
	assert.Equal(t, []string{"%y"}, alloc.Functions["f"].Spilled)
	assert.Equal(t, uint(2), alloc.Functions["main"].Rounds)
	// Temporaries are unique across the whole program
	seen := make(map[string]string)
	//
	for _, fn := range alloc.Program.Functions {
		for _, v := range fn.Variables() {
			if strings.HasPrefix(v, "S") {
				other, ok := seen[v]
				assert.False(t, ok, "%s used in both @%s and @%s", v, other, fn.Name)
				seen[v] = fn.Name
			}
		}
		//
		checkColouring(t, fn, alloc.Functions[fn.Name].Colouring)
	}
	//
	assert.Len(t, seen, 4)
	// Original program untouched
	assert.Equal(t, 6, len(program.Function("main").Code))
}

func Test_Allocate_PrefixCollision(t *testing.T) {
	program := parse(t, "(@main (@main 0 (%S0 <- 1) (mem rsp -8 <- :r) (call @main 0) :r (rax += %S0) (return)))")
	//
	alloc, err := Allocate(program, DefaultConfig())
	require.NoError(t, err)
	//
	fn := alloc.Program.Function("main")
	assert.Equal(t, []string{"%S0"}, alloc.Functions["main"].Spilled)
	assert.NotContains(t, fn.Variables(), "S0")
	assert.Contains(t, fn.Variables(), "S1")
}

func Test_Allocate_RoundLimit(t *testing.T) {
	program := parse(t, acrossCalls)
	//
	_, err := Allocate(program, Config{1, "%S", coloring.HIGHEST_DEGREE})
	//
	var limit *RoundLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "main", limit.Function)
	assert.Equal(t, uint(1), limit.Rounds)
	assert.Contains(t, err.Error(), "allocating @main")
}

func Test_Allocate_LabelError(t *testing.T) {
	program := parse(t, "(@main (@main 0 (goto :nowhere)))")
	//
	_, err := Allocate(program, DefaultConfig())
	//
	var labelErr *liveness.LabelError
	require.ErrorAs(t, err, &labelErr)
	assert.Equal(t, "allocating @main: round 1: @main[0]: unknown label :nowhere", err.Error())
}

func Test_AllocateFunction_SharedNames(t *testing.T) {
	var (
		program = parse(t, acrossCalls)
		names   = spill.NewNameGenerator("%T")
	)
	//
	main, err := AllocateFunction(program.Function("main"), names, DefaultConfig())
	require.NoError(t, err)
	//
	f, err := AllocateFunction(program.Function("f"), names, DefaultConfig())
	require.NoError(t, err)
	//
	assert.Contains(t, main.Function.Variables(), "T0")
	assert.NotContains(t, f.Function.Variables(), "T0")
	assert.Equal(t, uint(4), names.Issued())
}

func checkColouring(t *testing.T, fn *l2.Function, colouring map[string]string) {
	result, err := liveness.Analyse(fn)
	require.NoError(t, err)
	//
	for i := uint(0); i < result.Len(); i++ {
		// Simultaneously live variables never share a register
		registers := make(map[string]string)
		//
		for _, n := range result.Out(i) {
			r := n
			if l2.IsVariableName(n) {
				r = colouring[n]
			}
			//
			other, clash := registers[r]
			assert.False(t, clash, "%s and %s share %s in @%s", n, other, r, fn.Name)
			registers[r] = n
		}
	}
}

func parse(t *testing.T, text string) *l2.Program {
	program, errs := parser.Parse(source.NewSourceFile("test.l2", []byte(text)))
	require.Empty(t, errs)
	//
	return program
}
