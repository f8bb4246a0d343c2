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
	"fmt"
	"strings"

	"github.com/consensys/go-l2/pkg/l2"
)

// NameGenerator produces fresh variable names of the form PREFIXn, for
// increasing n.  A single generator is threaded through every spill round of
// every function in a program, such that no temporary name is ever issued
// twice and no temporary collides with a variable already in use.
type NameGenerator struct {
	// Prefix without the variable sigil.
	prefix string
	// Next counter value to try.
	next uint
	// Names (without sigil) which must never be issued.
	taken map[string]bool
}

// NewNameGenerator constructs a generator for a given prefix (with or without
// a leading "%"), avoiding any of the given names (again with or without
// sigils).
func NewNameGenerator(prefix string, taken ...string) *NameGenerator {
	var names = make(map[string]bool)
	//
	for _, n := range taken {
		names[strings.TrimPrefix(n, "%")] = true
	}
	//
	return &NameGenerator{strings.TrimPrefix(prefix, "%"), 0, names}
}

// Prefix returns the prefix (without sigil) of names issued by this generator.
func (p *NameGenerator) Prefix() string {
	return p.prefix
}

// Issued returns the number of counter values consumed so far.
func (p *NameGenerator) Issued() uint {
	return p.next
}

// Fresh returns a variable whose name has never been issued before, and which
// does not clash with any name this generator was told to avoid.
func (p *NameGenerator) Fresh() l2.Variable {
	for {
		name := fmt.Sprintf("%s%d", p.prefix, p.next)
		p.next++
		//
		if !p.taken[name] {
			p.taken[name] = true
			return l2.NewVariable(name)
		}
	}
}
