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
package sexp

import (
	"testing"

	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Symbol(t *testing.T) {
	term := parse(t, "  rax ")
	//
	require.NotNil(t, term.AsSymbol())
	assert.Nil(t, term.AsList())
	assert.Equal(t, "rax", term.String())
}

func Test_Parse_Nested(t *testing.T) {
	term := parse(t, "(%a <- (mem  rsp\n8))")
	//
	list := term.AsList()
	require.NotNil(t, list)
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, "%a", list.Symbol(0))
	assert.Equal(t, "", list.Symbol(2))
	assert.Equal(t, "(%a <- (mem rsp 8))", term.String())
}

func Test_Parse_Comments(t *testing.T) {
	term := parse(t, ";; header\n(a ; first\n b) ; trailing")
	//
	assert.Equal(t, "(a b)", term.String())
}

func Test_Parse_Empty(t *testing.T) {
	checkError(t, "", "unexpected end-of-file", 0)
	checkError(t, " ; nothing", "unexpected end-of-file", 10)
}

func Test_Parse_Unterminated(t *testing.T) {
	checkError(t, "(a (b)", "unexpected end-of-file", 6)
}

func Test_Parse_Unbalanced(t *testing.T) {
	checkError(t, ")", "unexpected end-of-list", 0)
	checkError(t, "(a))", "unexpected remainder", 3)
}

func Test_Parse_SourceMap(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("  (a (b c))"))
	//
	term, srcmap, err := Parse(srcfile)
	require.Nil(t, err)
	//
	outer := srcmap.Get(term)
	assert.Equal(t, 2, outer.Start())
	assert.Equal(t, 11, outer.End())
	//
	inner := srcmap.Get(term.AsList().Get(1))
	assert.Equal(t, 5, inner.Start())
	assert.Equal(t, 10, inner.End())
}

func Test_ParseAll(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("(a) b\n(c d)\n"))
	//
	terms, _, err := ParseAll(srcfile)
	require.Nil(t, err)
	require.Len(t, terms, 3)
	assert.Equal(t, "(a)", terms[0].String())
	assert.Equal(t, "b", terms[1].String())
	assert.Equal(t, "(c d)", terms[2].String())
}

func Test_ParseAll_Error(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("(a) (b"))
	//
	terms, _, err := ParseAll(srcfile)
	assert.Nil(t, terms)
	require.NotNil(t, err)
	assert.Equal(t, "unexpected end-of-file", err.Message())
}

func Test_MatchSymbols(t *testing.T) {
	list := parse(t, "(call @f 2)").AsList()
	//
	assert.True(t, list.MatchSymbols(3, map[int]string{0: "call"}))
	assert.True(t, list.MatchSymbols(3, map[int]string{0: "call", 2: "2"}))
	assert.False(t, list.MatchSymbols(2, map[int]string{0: "call"}))
	assert.False(t, list.MatchSymbols(3, map[int]string{1: "@g"}))
}

func Test_Symbol_Int(t *testing.T) {
	var tests = map[string]bool{"0": true, "-8": true, "+3": true, "8a": false, "rsp": false, "": false}
	//
	for text, expected := range tests {
		_, ok := NewSymbol(text).Int()
		assert.Equal(t, expected, ok, text)
	}
	//
	n, _ := NewSymbol("-9223372036854775808").Int()
	assert.Equal(t, int64(-9223372036854775808), n)
}

func parse(t *testing.T, text string) SExp {
	term, _, err := Parse(source.NewSourceFile("test", []byte(text)))
	require.Nil(t, err)
	//
	return term
}

func checkError(t *testing.T, text string, msg string, start int) {
	_, _, err := Parse(source.NewSourceFile("test", []byte(text)))
	require.NotNil(t, err, text)
	//
	span := err.Span()
	assert.Equal(t, msg, err.Message())
	assert.Equal(t, start, span.Start(), text)
}
