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
package termio

import (
	"fmt"
)

// TERM_RED represents red
const TERM_RED = uint(1)

// TERM_GREEN represents green
const TERM_GREEN = uint(2)

// TERM_YELLOW represents yellow
const TERM_YELLOW = uint(3)

// TERM_BLUE represents blue
const TERM_BLUE = uint(4)

// TERM_CYAN represents cyan
const TERM_CYAN = uint(6)

// AnsiEscape represents an ANSI escape code used for formatting text in a
// terminal.  Escapes are built up from zero or more attributes.
type AnsiEscape struct {
	attributes []uint
}

// NewAnsiEscape construct an empty escape
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{nil}
}

// Construct a reset term.
func resetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{0}}
}

// Bold adds the bold attribute to this escape.
func (p AnsiEscape) Bold() AnsiEscape {
	return p.with(1)
}

// Underline adds the underline attribute to this escape.
func (p AnsiEscape) Underline() AnsiEscape {
	return p.with(4)
}

// FgColour sets the foreground colour
func (p AnsiEscape) FgColour(col uint) AnsiEscape {
	return p.with(30 + col)
}

// Wrap a given piece of text in this escape, resetting afterwards.  When
// escapes are disabled, the text is returned as is.
func (p AnsiEscape) Wrap(text string, enable bool) string {
	if !enable || len(p.attributes) == 0 {
		return text
	}
	//
	return fmt.Sprintf("%s%s%s", p.Build(), text, resetAnsiEscape().Build())
}

// Build constructs the final escape
func (p AnsiEscape) Build() string {
	var escape = "\033["
	//
	for i, attr := range p.attributes {
		if i != 0 {
			escape += ";"
		}
		//
		escape += fmt.Sprintf("%d", attr)
	}
	//
	return escape + "m"
}

func (p AnsiEscape) with(attr uint) AnsiEscape {
	var attributes = make([]uint, len(p.attributes), len(p.attributes)+1)
	//
	copy(attributes, p.attributes)
	//
	return AnsiEscape{append(attributes, attr)}
}
