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
package l2

import "fmt"

// Item represents an operand of an instruction.  This is a closed set of
// variants: Register, Variable, Memory, Number, Label and FunctionName.  Of
// these, only registers, variables and memory operands participate in
// liveness and colouring (see IsContributor).
type Item interface {
	fmt.Stringer
	// Marker restricting the set of variants to this package.
	item()
}

// Register is a machine register, such as rax or r12.
type Register struct {
	Name string
}

// Variable is a symbolic (i.e. not yet allocated) variable.  The name is held
// without its "%" sigil.
type Variable struct {
	Name string
}

// Memory is a memory operand "mem x M", where x is a register or variable
// holding the base address and M is a byte offset.
type Memory struct {
	Base   Item
	Offset int64
}

// Number is an integer literal.
type Number struct {
	Value int64
}

// Label is a code label, held without its ":" sigil.
type Label struct {
	Name string
}

// FunctionName identifies a function by name, held without its "@" sigil.
type FunctionName struct {
	Name string
}

// NewRegister constructs a register operand.
func NewRegister(name string) Register { return Register{name} }

// NewVariable constructs a variable operand from a name given without its
// sigil.
func NewVariable(name string) Variable { return Variable{name} }

// NewMemory constructs a memory operand.  The base must be a register or a
// variable.
func NewMemory(base Item, offset int64) Memory {
	switch base.(type) {
	case Register, Variable:
		return Memory{base, offset}
	default:
		panic(fmt.Sprintf("invalid memory base \"%s\"", base.String()))
	}
}

// NewNumber constructs an integer literal.
func NewNumber(value int64) Number { return Number{value} }

// NewLabel constructs a label from a name given without its sigil.
func NewLabel(name string) Label { return Label{name} }

// NewFunctionName constructs a function name from a name given without its
// sigil.
func NewFunctionName(name string) FunctionName { return FunctionName{name} }

func (p Register) item()     {}
func (p Variable) item()     {}
func (p Memory) item()       {}
func (p Number) item()       {}
func (p Label) item()        {}
func (p FunctionName) item() {}

func (p Register) String() string { return p.Name }

func (p Variable) String() string { return "%" + p.Name }

func (p Memory) String() string { return fmt.Sprintf("mem %s %d", p.Base.String(), p.Offset) }

func (p Number) String() string { return fmt.Sprintf("%d", p.Value) }

func (p Label) String() string { return ":" + p.Name }

func (p FunctionName) String() string { return "@" + p.Name }

// IsContributor determines whether a given item participates in liveness
// analysis.  Registers (other than the stack pointer), variables, and memory
// operands whose base address is held in such a register or variable all
// contribute.
func IsContributor(item Item) bool {
	switch item := item.(type) {
	case Register:
		return item.Name != RSP
	case Variable:
		return true
	case Memory:
		return IsContributor(item.Base)
	default:
		return false
	}
}

// LivenessName returns the name under which an item is tracked by liveness
// analysis.  For a memory operand this is the name of its base, since that is
// the value actually read.  Items which do not contribute to liveness return
// the empty string.
func LivenessName(item Item) string {
	if !IsContributor(item) {
		return ""
	}
	//
	switch item := item.(type) {
	case Memory:
		return LivenessName(item.Base)
	default:
		return item.String()
	}
}

// IsVariableName checks whether a liveness name denotes a variable (rather than
// a register).
func IsVariableName(name string) bool {
	return len(name) > 1 && name[0] == '%'
}
