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
package coloring

import (
	"fmt"
	"strings"
)

// InvariantError reports a node which failed to colour despite having been
// removed with fewer neighbours than there are registers.  This cannot happen
// when degrees are tracked correctly, and signals an internal failure.
type InvariantError struct {
	// Function being allocated.
	Function string
	// Node which could not be coloured.
	Node string
	// Degree of the node when it was removed.
	Degree uint
}

func (p *InvariantError) Error() string {
	return fmt.Sprintf("@%s: %s removed with degree %d but could not be coloured", p.Function, p.Node, p.Degree)
}

// UnsatisfiableError reports that the only nodes which failed to colour cannot
// be spilled (because they were themselves introduced by spilling).  Hence,
// the register constraints of the function cannot be met.
type UnsatisfiableError struct {
	// Function being allocated.
	Function string
	// Nodes which could not be coloured.
	Nodes []string
}

func (p *UnsatisfiableError) Error() string {
	return fmt.Sprintf("@%s: cannot colour unspillable variables %s", p.Function, strings.Join(p.Nodes, ", "))
}
