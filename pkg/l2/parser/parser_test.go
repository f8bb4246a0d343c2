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
package parser

import (
	"strings"
	"testing"

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Instructions(t *testing.T) {
	tests := []struct {
		input    string
		expected l2.Instruction
	}{
		{"(rax <- 1)", &l2.Assign{Dst: l2.NewRegister("rax"), Src: l2.NewNumber(1)}},
		{"(%x <- :L)", &l2.Assign{Dst: l2.NewVariable("x"), Src: l2.NewLabel("L")}},
		{"(%x <- @f)", &l2.Assign{Dst: l2.NewVariable("x"), Src: l2.NewFunctionName("f")}},
		{"(%x <- mem rsp 8)", &l2.Assign{Dst: l2.NewVariable("x"), Src: l2.NewMemory(l2.NewRegister("rsp"), 8)}},
		{"(mem %p -16 <- rdi)", &l2.Assign{Dst: l2.NewMemory(l2.NewVariable("p"), -16), Src: l2.NewRegister("rdi")}},
		{"(%x <- stack-arg 0)", &l2.StackArg{Dst: l2.NewVariable("x"), Offset: l2.NewNumber(0)}},
		{"(%x *= %y)", &l2.Arith{Op: l2.MUL_ASSIGN, Dst: l2.NewVariable("x"), Src: l2.NewVariable("y")}},
		{"(%x &= 1)", &l2.Arith{Op: l2.AND_ASSIGN, Dst: l2.NewVariable("x"), Src: l2.NewNumber(1)}},
		{"(%x <<= rcx)", &l2.Shift{Op: l2.SHL_ASSIGN, Dst: l2.NewVariable("x"), Src: l2.NewRegister("rcx")}},
		{"(%x >>= 3)", &l2.Shift{Op: l2.SHR_ASSIGN, Dst: l2.NewVariable("x"), Src: l2.NewNumber(3)}},
		{"(mem %p 8 += 1)", &l2.MemArith{Op: l2.ADD_ASSIGN, Lhs: l2.NewMemory(l2.NewVariable("p"), 8), Rhs: l2.NewNumber(1)}},
		{"(%x -= mem %p 0)", &l2.MemArith{Op: l2.SUB_ASSIGN, Lhs: l2.NewVariable("x"), Rhs: l2.NewMemory(l2.NewVariable("p"), 0)}},
		{"(%c <- %x = 2)", &l2.Compare{Dst: l2.NewVariable("c"), Op: l2.EQ, Lhs: l2.NewVariable("x"), Rhs: l2.NewNumber(2)}},
		{"(cjump %x < 3 :L)", &l2.CJump{Op: l2.LT, Lhs: l2.NewVariable("x"), Rhs: l2.NewNumber(3), Target: l2.NewLabel("L")}},
		{":L", &l2.DefineLabel{Label: l2.NewLabel("L")}},
		{"(goto :L)", &l2.Goto{Target: l2.NewLabel("L")}},
		{"(return)", &l2.Return{}},
		{"(call @g 2)", &l2.Call{Kind: l2.USER_CALL, Callee: l2.NewFunctionName("g"), Args: l2.NewNumber(2)}},
		{"(call %fp 0)", &l2.Call{Kind: l2.USER_CALL, Callee: l2.NewVariable("fp"), Args: l2.NewNumber(0)}},
		{"(call input 0)", &l2.Call{Kind: l2.INPUT_CALL, Args: l2.NewNumber(0)}},
		{"(call tuple-error 3)", &l2.Call{Kind: l2.TUPLE_ERROR_CALL, Args: l2.NewNumber(3)}},
		{"(%x++)", &l2.IncDec{Dst: l2.NewVariable("x"), Increment: true}},
		{"(rdi--)", &l2.IncDec{Dst: l2.NewRegister("rdi"), Increment: false}},
		{"(%a @ %b %c 4)", &l2.Lea{Dst: l2.NewVariable("a"), Base: l2.NewVariable("b"), Index: l2.NewVariable("c"),
			Scale: l2.NewNumber(4)}},
	}
	//
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fn := parseFunction(t, "(@f 0 "+tt.input+")")
			//
			require.Len(t, fn.Code, 1)
			assert.Equal(t, tt.expected, fn.Code[0])
			// Rendering should give back the original text
			assert.Equal(t, tt.input, fn.Code[0].String())
		})
	}
}

func Test_Parse_Program(t *testing.T) {
	var text = `
	;; entry point
	(@main
	  (@main 0
	    (rdi <- 5)
	    (call @f 1)
	    (return))
	  (@f 1
	    (rax <- rdi)
	    (return)))`
	//
	program, errs := Parse(source.NewSourceFile("test.l2", []byte(text)))
	require.Empty(t, errs)
	//
	assert.Equal(t, "main", program.Entry)
	require.Len(t, program.Functions, 2)
	assert.Equal(t, int64(1), program.Function("f").Arity)
	// Rendered programs can be parsed again
	reparsed, errs := Parse(source.NewSourceFile("test.l2", []byte(program.String())))
	require.Empty(t, errs)
	assert.Equal(t, program, reparsed)
}

func Test_Parse_Errors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"(@main (@main 0 (return)) (@main 0 (return)))", "duplicate function"},
		{"(@main (@f 0 (return)))", "unknown entry function"},
		{"(@main (@main 0 (rsp <- 1)))", "expected register or variable"},
		{"(@main (@main 0 (%x <- mem %y 3)))", "offset must be a multiple of 8"},
		{"(@main (@main 0 (%x @ %y %z 3)))", "scale must be 1, 2, 4 or 8"},
		{"(@main (@main 0 (%x <<= rax)))", "shift amount must be rcx, a variable or a number"},
		{"(@main (@main 0 (cjump %x > 1 :L)))", "expected comparison"},
		{"(@main (@main 0 (call rsp 0)))", "invalid callee"},
		{"(@main (@main 0 (goto L)))", "expected label"},
		{"(@main (@main 0 (return))", "unexpected end-of-file"},
		{"(@main (@main 0 (return))))", "unexpected remainder"},
	}
	//
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, errs := Parse(source.NewSourceFile("test.l2", []byte(tt.input)))
			//
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.message, errs[0].Message())
		})
	}
}

func Test_Parse_SpillRequest(t *testing.T) {
	var text = "(@f 0 (%x <- 1) (rax <- %x) (return))\n%x %S"
	//
	request, errs := ParseSpillRequest(source.NewSourceFile("test.l2", []byte(text)))
	require.Empty(t, errs)
	//
	assert.Equal(t, "f", request.Function.Name)
	assert.Equal(t, "%x", request.Variable.String())
	assert.Equal(t, "%S", request.Prefix.String())
	//
	_, errs = ParseSpillRequest(source.NewSourceFile("test.l2", []byte("(@f 0 (return)) %x")))
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0].Error(), "test.l2:1:"))
}

func parseFunction(t *testing.T, text string) *l2.Function {
	fn, errs := ParseFunction(source.NewSourceFile("test.l2", []byte(text)))
	//
	for _, err := range errs {
		t.Error(err.Error())
	}
	//
	require.Empty(t, errs)
	//
	return fn
}
