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
	"testing"

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/liveness"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var functions = []string{
	"(@f 0 (%a <- 1) (%b <- 2) (%a += %b) (rax <- %a) (return))",
	"(@f 0 (%n <- 3) (rax <- 1) (rax <<= %n) (return))",
	"(@f 1 (%i <- 0) :top (cjump rdi <= %i :done) (%i++) (goto :top) :done (rax <- %i) (return))",
	"(@f 2 (%x <- rdi) (%y <- rsi) (rdi <- %y) (call @g 1) (rax += %x) (return))",
	"(@f 0 (%unused <- 1) (return))",
}

func Test_Interference_Symmetric(t *testing.T) {
	for _, text := range functions {
		graph := build(t, text)
		//
		for _, n := range graph.Nodes() {
			assert.NotContains(t, graph.Neighbours(n), n, "%s in %s", n, text)
			//
			for _, m := range graph.Neighbours(n) {
				assert.True(t, graph.Interferes(m, n), "%s / %s in %s", n, m, text)
			}
		}
	}
}

func Test_Interference_RegisterClique(t *testing.T) {
	for _, text := range functions {
		graph := build(t, text)
		//
		for _, r := range l2.GENERAL_PURPOSE_REGISTERS {
			for _, s := range l2.GENERAL_PURPOSE_REGISTERS {
				assert.Equal(t, r != s, graph.Interferes(r, s))
			}
		}
	}
}

func Test_Interference_Shift(t *testing.T) {
	graph := build(t, functions[1])
	//
	for _, r := range l2.GENERAL_PURPOSE_REGISTERS {
		assert.Equal(t, r != l2.RCX, graph.Interferes("%n", r), r)
	}
}

func Test_Interference_Simple(t *testing.T) {
	graph := build(t, functions[0])
	//
	assert.True(t, graph.Interferes("%a", "%b"))
	assert.True(t, graph.Interferes("%a", "rbx"))
	assert.False(t, graph.Interferes("%a", "rax"))
	assert.False(t, graph.Interferes("%b", "rdi"))
	assert.Equal(t, uint(7), graph.Degree("%a"))
	assert.Equal(t, l2.NumGeneralPurpose()+2, graph.Len())
}

func Test_Interference_AcrossCall(t *testing.T) {
	graph := build(t, functions[3])
	// %x is live across the call, so interferes with every register.
	for _, r := range l2.GENERAL_PURPOSE_REGISTERS {
		assert.True(t, graph.Interferes("%x", r), r)
	}
	// %y dies before the call.
	assert.False(t, graph.Interferes("%y", "r10"))
	assert.True(t, graph.Interferes("%x", "%y"))
}

func Test_Interference_Isolated(t *testing.T) {
	graph := build(t, functions[4])
	// Dead definitions still interfere with whatever is live after them.
	assert.Equal(t, []string{"r12", "r13", "r14", "r15", "rax", "rbp", "rbx"}, graph.Neighbours("%unused"))
	assert.Empty(t, graph.Neighbours("%missing"))
	assert.Equal(t, uint(0), graph.Degree("%missing"))
}

func Test_Interference_String(t *testing.T) {
	var (
		graph = build(t, functions[0])
		lines = 0
	)
	//
	for _, c := range graph.String() {
		if c == '\n' {
			lines++
		}
	}
	//
	assert.Equal(t, int(graph.Len()), lines)
	assert.Contains(t, graph.String(), "%a %b r12 r13 r14 r15 rbp rbx\n")
}

func build(t *testing.T, text string) *Graph {
	fn, errs := parser.ParseFunction(source.NewSourceFile("test.l2", []byte(text)))
	require.Empty(t, errs)
	//
	result, err := liveness.Analyse(fn)
	require.NoError(t, err)
	//
	return Build(result)
}
