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
package spill

import (
	"testing"

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/liveness"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NameGenerator(t *testing.T) {
	names := NewNameGenerator("%S", "S1", "%S3")
	//
	assert.Equal(t, "S", names.Prefix())
	assert.Equal(t, "%S0", names.Fresh().String())
	assert.Equal(t, "%S2", names.Fresh().String())
	assert.Equal(t, "%S4", names.Fresh().String())
	assert.Equal(t, uint(5), names.Issued())
}

func Test_NameGenerator_Unique(t *testing.T) {
	var (
		names = NewNameGenerator("t")
		seen  = make(map[string]bool)
	)
	//
	for i := 0; i < 1000; i++ {
		n := names.Fresh().String()
		require.False(t, seen[n], n)
		seen[n] = true
	}
}

func Test_Rewrite_ReadWrite(t *testing.T) {
	fn := parse(t, "(@f 0 (%a <- 1) (%a += 2) (rax <- %a) (return))")
	//
	rewritten, temps := Rewrite(fn, []string{"%a"}, NewNameGenerator("%S", fn.Variables()...))
	//
	assert.Equal(t, []string{"%S0", "%S1", "%S2"}, temps)
	assert.Equal(t, uint(1), rewritten.Locals)
	assert.Equal(t, []string{
		"(%S0 <- 1)",
		"(mem rsp 0 <- %S0)",
		"(%S1 <- mem rsp 0)",
		"(%S1 += 2)",
		"(mem rsp 0 <- %S1)",
		"(%S2 <- mem rsp 0)",
		"(rax <- %S2)",
		"(return)",
	}, render(rewritten))
	// Original is untouched
	assert.Len(t, fn.Code, 4)
	assert.Equal(t, uint(0), fn.Locals)
}

func Test_Rewrite_MemoryBase(t *testing.T) {
	fn := parse(t, "(@f 1 (%p <- rdi) (mem %p 8 <- 3) (%p += mem %p 0) (return))")
	//
	rewritten, _ := Rewrite(fn, []string{"%p"}, NewNameGenerator("%S"))
	//
	assert.Equal(t, []string{
		"(%S0 <- rdi)",
		"(mem rsp 0 <- %S0)",
		"(%S1 <- mem rsp 0)",
		"(mem %S1 8 <- 3)",
		"(%S2 <- mem rsp 0)",
		"(%S2 += mem %S2 0)",
		"(mem rsp 0 <- %S2)",
		"(return)",
	}, render(rewritten))
}

func Test_Rewrite_Slots(t *testing.T) {
	// A slot is already in use by an earlier round
	fn := parse(t, "(@f 0 (%a <- 1) (%b <- 2) (mem rsp 0 <- %b) (%a += %b) (%c <- 3) (rax <- %a) (return))")
	require.Equal(t, uint(1), fn.Locals)
	//
	rewritten, temps := Rewrite(fn, []string{"%b", "%a", "%unused"}, NewNameGenerator("%S"))
	// Slots allocated in order of first occurrence, after existing locals
	assert.Equal(t, uint(3), rewritten.Locals)
	assert.Len(t, temps, 6)
	assert.Equal(t, []string{
		"(%S0 <- 1)",
		"(mem rsp 8 <- %S0)",
		"(%S1 <- 2)",
		"(mem rsp 16 <- %S1)",
		"(%S2 <- mem rsp 16)",
		"(mem rsp 0 <- %S2)",
		"(%S3 <- mem rsp 8)",
		"(%S4 <- mem rsp 16)",
		"(%S3 += %S4)",
		"(mem rsp 8 <- %S3)",
		"(%c <- 3)",
		"(%S5 <- mem rsp 8)",
		"(rax <- %S5)",
		"(return)",
	}, render(rewritten))
}

func Test_Rewrite_Unchanged(t *testing.T) {
	fn := parse(t, "(@f 0 (%a <- 1) :L (cjump %a < 2 :L) (call print 1) (return))")
	//
	rewritten, temps := Rewrite(fn, []string{"%b"}, NewNameGenerator("%S"))
	//
	assert.Empty(t, temps)
	assert.Equal(t, fn.Code, rewritten.Code)
	assert.Equal(t, fn.Locals, rewritten.Locals)
}

func Test_Rewrite_AllInstructions(t *testing.T) {
	fn := parse(t, `(@f 0
		(%x <- stack-arg 8)
		(%x <<= %x)
		(mem %x 0 -= %x)
		(%c <- %x <= %x)
		(cjump %x = 1 :L)
		:L
		(call %x 1)
		(%x--)
		(%x @ %x %x 2)
		(return))`)
	//
	rewritten, _ := Rewrite(fn, []string{"%x"}, NewNameGenerator("%t", fn.Variables()...))
	// Spilled variable no longer occurs
	assert.NotContains(t, rewritten.Variables(), "x")
	// Rewritten function is still analysable
	_, err := liveness.Analyse(rewritten)
	require.NoError(t, err)
	// Every temporary is defined or loaded before it is used
	defined := make(map[string]bool)
	//
	for _, insn := range rewritten.Code {
		gen, kill := liveness.Effects(insn)
		//
		for _, g := range gen {
			if l2.IsVariableName(g) {
				assert.True(t, defined[g], "%s used before definition in %s", g, insn)
			}
		}
		//
		for _, k := range kill {
			defined[k] = true
		}
	}
}

func parse(t *testing.T, text string) *l2.Function {
	fn, errs := parser.ParseFunction(source.NewSourceFile("test.l2", []byte(text)))
	require.Empty(t, errs)
	//
	return fn
}

func render(fn *l2.Function) []string {
	var lines []string
	//
	for _, insn := range fn.Code {
		lines = append(lines, insn.String())
	}
	//
	return lines
}
