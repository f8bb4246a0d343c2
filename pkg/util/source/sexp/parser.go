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
	"unicode"

	"github.com/consensys/go-l2/pkg/util/source"
)

// Parse a given source file into exactly one S-expression, or return an error
// if the file is malformed.  A source map is also returned for reporting
// errors against individual terms.
func Parse(srcfile *source.File) (SExp, *source.Map[SExp], *source.SyntaxError) {
	p := newParser(srcfile)
	// Parse the input
	term, err := p.parse()
	// Sanity check everything was parsed
	if err == nil && term == nil {
		return nil, nil, p.error("unexpected end-of-file")
	} else if err == nil && p.skipWhiteSpace() != len(p.text) {
		return nil, nil, p.error("unexpected remainder")
	}
	// Done
	return term, p.srcmap, err
}

// ParseAll converts a given source file into zero or more S-expressions, or
// returns an error if the file is malformed.  The key distinction from Parse
// is that this function continues parsing after the first S-expression is
// encountered.
func ParseAll(srcfile *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	var (
		p     = newParser(srcfile)
		terms []SExp
	)
	//
	for {
		term, err := p.parse()
		//
		if err != nil {
			return nil, nil, err
		} else if term == nil {
			// EOF reached
			return terms, p.srcmap, nil
		}
		//
		terms = append(terms, term)
	}
}

// A parser in the process of parsing a given string into one or more
// S-expressions.
type parser struct {
	// Source file being parsed
	srcfile *source.File
	// Cache (for simplicity)
	text []rune
	// Determine current position within text
	index int
	// Mapping from constructed S-Expressions to their spans in the original text.
	srcmap *source.Map[SExp]
}

// Construct a new parser for a given source file.
func newParser(srcfile *source.File) *parser {
	return &parser{
		srcfile: srcfile,
		text:    srcfile.Contents(),
		index:   0,
		srcmap:  source.NewSourceMap[SExp](srcfile),
	}
}

// Parse the next S-Expression, returning nil at the end of the input.
func (p *parser) parse() (SExp, *source.SyntaxError) {
	var term SExp
	// Skip over any whitespace to get the correct starting point for this
	// term.
	start := p.skipWhiteSpace()
	// Extract next token from the stream
	token := p.next()
	//
	switch {
	case token == nil:
		return nil, nil
	case len(token) == 1 && token[0] == ')':
		p.index-- // backup
		return nil, p.error("unexpected end-of-list")
	case len(token) == 1 && token[0] == '(':
		elements, err := p.parseList()
		// Check for error
		if err != nil {
			return nil, err
		}
		//
		term = &List{elements}
	default:
		term = &Symbol{string(token)}
	}
	// Register item in source map
	p.srcmap.Put(term, source.NewSpan(start, p.index))
	// Done
	return term, nil
}

// Skip over any whitespace, including comments, returning the
// resulting position.
func (p *parser) skipWhiteSpace() int {
	for p.index < len(p.text) && (unicode.IsSpace(p.text[p.index]) || p.text[p.index] == ';') {
		if p.text[p.index] == ';' {
			// Skip comment up to (and including) end-of-line
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		} else {
			p.index++
		}
	}
	//
	return p.index
}

// Extract the next token from the stream, or nil at the end of the input.
func (p *parser) next() []rune {
	p.skipWhiteSpace()
	// Catch end-of-file
	if p.index == len(p.text) {
		return nil
	}
	// Check what we have
	if c := p.text[p.index]; c == '(' || c == ')' {
		p.index++
		return p.text[p.index-1 : p.index]
	}
	// Symbol
	start := p.index
	//
	for p.index < len(p.text) && isSymbolLetter(p.text[p.index]) {
		p.index++
	}
	//
	return p.text[start:p.index]
}

func (p *parser) parseList() ([]SExp, *source.SyntaxError) {
	var elements []SExp
	//
	for {
		p.skipWhiteSpace()
		//
		if p.index == len(p.text) {
			return nil, p.error("unexpected end-of-file")
		} else if p.text[p.index] == ')' {
			// Consume terminator
			p.index++
			return elements, nil
		}
		// Parse next element
		element, err := p.parse()
		if err != nil {
			return nil, err
		}
		//
		elements = append(elements, element)
	}
}

// Construct a parser error at the current position in the input stream.
func (p *parser) error(msg string) *source.SyntaxError {
	span := source.NewSpan(p.index, min(p.index+1, len(p.text)))
	return p.srcfile.SyntaxError(span, msg)
}
