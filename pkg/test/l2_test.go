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
package test

import (
	"testing"

	"github.com/consensys/go-l2/pkg/coloring"
	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/regalloc"
	"github.com/consensys/go-l2/pkg/test/util"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================================================================
// Liveness Tests
// ===================================================================

func Test_Liveness_Straight_01(t *testing.T) {
	util.CheckLiveness(t, "straight_01")
}

func Test_Liveness_Branch_01(t *testing.T) {
	util.CheckLiveness(t, "branch_01")
}

func Test_Liveness_Call_01(t *testing.T) {
	util.CheckLiveness(t, "call_01")
}

// ===================================================================
// Interference Tests
// ===================================================================

func Test_Interference_Simple_01(t *testing.T) {
	util.CheckInterference(t, "simple_01")
}

func Test_Interference_Shift_01(t *testing.T) {
	util.CheckInterference(t, "shift_01")
}

// ===================================================================
// Spill Tests
// ===================================================================

func Test_Spill_01(t *testing.T) {
	util.CheckSpill(t, "spill_01")
}

// ===================================================================
// Allocation Tests
// ===================================================================

func Test_Allocate_Call_01(t *testing.T) {
	alloc := util.CheckAllocation(t, "call_01", regalloc.DefaultConfig())
	//
	assert.Equal(t, []string{"%keep"}, alloc.Functions["main"].Spilled)
	assert.Equal(t, uint(1), alloc.Program.Function("main").Locals)
	assert.Empty(t, alloc.Functions["double"].Spilled)
	assert.Equal(t, uint(1), alloc.Functions["double"].Rounds)
}

func Test_Allocate_Loop_01(t *testing.T) {
	alloc := util.CheckAllocation(t, "loop_01", regalloc.DefaultConfig())
	//
	assert.Empty(t, alloc.Functions["sum"].Spilled)
}

func Test_Allocate_Memory_01(t *testing.T) {
	util.CheckAllocation(t, "memory_01", regalloc.DefaultConfig())
}

func Test_Allocate_Pressure_01(t *testing.T) {
	alloc := util.CheckAllocation(t, "pressure_01", regalloc.DefaultConfig())
	//
	assert.NotEmpty(t, alloc.Functions["main"].Spilled)
	assert.Greater(t, alloc.Functions["main"].Rounds, uint(1))
}

func Test_Allocate_Pressure_02(t *testing.T) {
	config := regalloc.DefaultConfig()
	config.Heuristic = coloring.FIRST_SEEN
	//
	alloc := util.CheckAllocation(t, "pressure_01", config)
	//
	assert.NotEmpty(t, alloc.Functions["main"].Spilled)
}

func Test_Allocate_Shift_01(t *testing.T) {
	alloc := util.CheckAllocation(t, "shift_01", regalloc.DefaultConfig())
	//
	assert.Equal(t, "rcx", alloc.Functions["main"].Colouring["%n"])
}

func Test_Allocate_RoundLimit(t *testing.T) {
	var (
		srcfile = source.NewSourceFile("test.l2", []byte(
			"(@main (@main 0 (%x <- 1) (mem rsp -8 <- :r) (call @main 0) :r (rax <- %x) (return)))"))
		config = regalloc.DefaultConfig()
	)
	//
	program, errs := parser.Parse(srcfile)
	require.Empty(t, errs)
	//
	config.MaxRounds = 1
	_, err := regalloc.Allocate(program, config)
	//
	var limit *regalloc.RoundLimitError
	//
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "main", limit.Function)
}

// ===================================================================
// Invalid Tests
// ===================================================================

func Test_Invalid_Entry_01(t *testing.T) {
	util.CheckInvalid(t, "entry_01", parseProgram)
}

func Test_Invalid_Memory_01(t *testing.T) {
	util.CheckInvalid(t, "memory_01", parseProgram)
}

func Test_Invalid_Operator_01(t *testing.T) {
	util.CheckInvalid(t, "operator_01", parseProgram)
}

func Test_Invalid_Shift_01(t *testing.T) {
	util.CheckInvalid(t, "shift_01", parseProgram)
}

func parseProgram(srcfile *source.File) []source.SyntaxError {
	_, errs := parser.Parse(srcfile)
	return errs
}
