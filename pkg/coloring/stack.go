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

// entry records a node removed from the graph during simplification, along
// with whether it was removed optimistically (i.e. whilst its degree was not
// below the number of available registers) and its degree on removal.
type entry struct {
	node       uint
	optimistic bool
	degree     uint
}

// stack is the LIFO stack of removed nodes, popped in reverse removal order
// during selection.
type stack struct {
	items []entry
}

// IsEmpty checks whether or not there are still items on the stack
func (p *stack) IsEmpty() bool {
	return len(p.items) == 0
}

// Len returns the number of items on the stack.
func (p *stack) Len() uint {
	return uint(len(p.items))
}

// Push a new item onto the stack
func (p *stack) Push(item entry) {
	p.items = append(p.items, item)
}

// Pop the last item off the stack
func (p *stack) Pop() entry {
	var n = len(p.items)
	//
	if n == 0 {
		panic("cannot pop from empty stack")
	}
	// Get last item
	item := p.items[n-1]
	// Remove last item
	p.items = p.items[:n-1]
	// Done
	return item
}
