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
package util

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/consensys/go-l2/pkg/coloring"
	"github.com/consensys/go-l2/pkg/interference"
	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/liveness"
	"github.com/consensys/go-l2/pkg/regalloc"
	"github.com/consensys/go-l2/pkg/spill"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the L2 test files and their expected outputs are found.
const TestDir = "../../testdata"

// CheckLiveness checks the liveness sets computed for a given function match
// those expected.  The function is read from "liveness/test.l2", and the
// expected sets from "liveness/test.live".
func CheckLiveness(t *testing.T, test string) {
	t.Parallel()
	//
	fn := readFunction(t, "liveness", test)
	result, err := liveness.Analyse(fn)
	require.NoError(t, err)
	//
	assert.Equal(t, readExpected(t, "liveness", test, "live"), result.String())
}

// CheckInterference checks the interference graph computed for a given
// function matches that expected.  The function is read from
// "interference/test.l2", and the expected graph from
// "interference/test.graph".
func CheckInterference(t *testing.T, test string) {
	t.Parallel()
	//
	fn := readFunction(t, "interference", test)
	result, err := liveness.Analyse(fn)
	require.NoError(t, err)
	//
	assert.Equal(t, readExpected(t, "interference", test, "graph"), interference.Build(result).String())
}

// CheckSpill checks that spilling a given variable of a function produces the
// function expected.  The spill request is read from "spill/test.l2", and the
// expected function from "spill/test.spill".
func CheckSpill(t *testing.T, test string) {
	t.Parallel()
	//
	var (
		filename = fmt.Sprintf("%s/spill/%s.l2", TestDir, test)
		srcfile  = readSourceFile(t, filename)
	)
	//
	request, errs := parser.ParseSpillRequest(srcfile)
	requireNoSyntaxErrors(t, errs)
	//
	names := spill.NewNameGenerator(request.Prefix.String(), request.Function.Variables()...)
	rewritten, _ := spill.Rewrite(request.Function, []string{request.Variable.String()}, names)
	//
	assert.Equal(t, strings.TrimSpace(readExpected(t, "spill", test, "spill")), rewritten.String())
}

// CheckAllocation allocates registers for a given program, and checks the
// resulting colouring is valid for every function.  That is, no two
// interfering nodes share a register, and every register is assigned to
// itself.  The program is read from "allocate/test.l2".
func CheckAllocation(t *testing.T, test string, config regalloc.Config) *regalloc.Allocation {
	var filename = fmt.Sprintf("%s/allocate/%s.l2", TestDir, test)
	//
	program, errs := parser.Parse(readSourceFile(t, filename))
	requireNoSyntaxErrors(t, errs)
	//
	allocation, err := regalloc.Allocate(program, config)
	require.NoError(t, err)
	// Rewritten program should still be valid L2
	reparsed, errs := parser.Parse(source.NewSourceFile(filename, []byte(allocation.Program.String())))
	requireNoSyntaxErrors(t, errs)
	require.Equal(t, allocation.Program.String(), reparsed.String())
	//
	for _, fn := range allocation.Program.Functions {
		CheckColouring(t, fn, allocation.Functions[fn.Name].Colouring)
	}
	//
	return allocation
}

// CheckColouring checks a given colouring is valid for a given function.
func CheckColouring(t *testing.T, fn *l2.Function, colouring map[string]string) {
	result, err := liveness.Analyse(fn)
	require.NoError(t, err)
	//
	graph := interference.Build(result)
	colour := func(n string) string {
		if l2.IsVariableName(n) {
			return colouring[n]
		}
		//
		return n
	}
	//
	for _, v := range fn.Variables() {
		name := l2.NewVariable(v).String()
		require.Contains(t, colouring, name, "@%s: %s not coloured", fn.Name, name)
		require.NotEqual(t, l2.RSP, colouring[name])
	}
	//
	for _, n := range graph.Nodes() {
		for _, m := range graph.Neighbours(n) {
			assert.NotEqual(t, colour(n), colour(m), "@%s: %s and %s interfere", fn.Name, n, m)
		}
	}
}

// CheckColourable checks a colouring attempt on a given graph either succeeds
// with a valid colouring, or returns a non-empty set of spills.
func CheckColourable(t *testing.T, graph *interference.Graph) *coloring.Result {
	result, err := coloring.Colour("test", graph, coloring.Options{})
	require.NoError(t, err)
	//
	if len(result.Spills) == 0 {
		for _, n := range graph.Nodes() {
			for _, m := range graph.Neighbours(n) {
				if l2.IsVariableName(n) && l2.IsVariableName(m) {
					assert.NotEqual(t, result.Colouring[n], result.Colouring[m])
				} else if l2.IsVariableName(n) {
					assert.NotEqual(t, result.Colouring[n], m)
				}
			}
		}
	}
	//
	return result
}

func readFunction(t *testing.T, dir string, test string) *l2.Function {
	var filename = fmt.Sprintf("%s/%s/%s.l2", TestDir, dir, test)
	//
	fn, errs := parser.ParseFunction(readSourceFile(t, filename))
	requireNoSyntaxErrors(t, errs)
	//
	return fn
}

func readExpected(t *testing.T, dir string, test string, ext string) string {
	bytes, err := os.ReadFile(fmt.Sprintf("%s/%s/%s.%s", TestDir, dir, test, ext))
	require.NoError(t, err)
	//
	return string(bytes)
}

func requireNoSyntaxErrors(t *testing.T, errs []source.SyntaxError) {
	for _, err := range errs {
		t.Error(errorToString(err))
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
}
