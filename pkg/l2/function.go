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

import (
	"fmt"
	"slices"
	"strings"
)

// Function is an ordered sequence of instructions together with the function's
// identity.  Instructions are addressed by their position within Code, and any
// data computed per instruction (e.g. liveness sets) is keyed by that
// position.
type Function struct {
	// Name of this function, without its "@" sigil.
	Name string
	// Number of arguments this function accepts.
	Arity int64
	// Number of 8-byte stack slots allocated for spilled variables.  Slot k
	// lives at "mem rsp 8k".
	Locals uint
	// Body of this function.
	Code []Instruction
}

// NewFunction constructs a new function.  The number of locals is inferred
// from any non-negative stack pointer offsets in its body, since these denote
// slots allocated by earlier spilling.
func NewFunction(name string, arity int64, code []Instruction) *Function {
	var locals uint
	//
	for _, insn := range code {
		for _, item := range Operands(insn) {
			if m, ok := item.(Memory); ok && isStackSlot(m) {
				locals = max(locals, uint(m.Offset/8)+1)
			}
		}
	}
	//
	return &Function{name, arity, locals, code}
}

// Clone returns a copy of this function whose instruction list can be modified
// independently of the original.
func (p *Function) Clone() *Function {
	return &Function{p.Name, p.Arity, p.Locals, slices.Clone(p.Code)}
}

// Variables returns the names (without sigils) of all variables used in this
// function, in order of first occurrence.
func (p *Function) Variables() []string {
	var (
		seen  = make(map[string]bool)
		names []string
	)
	//
	for _, insn := range p.Code {
		for _, item := range Operands(insn) {
			if v, ok := variableOf(item); ok && !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		}
	}
	//
	return names
}

func (p *Function) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("(@%s\n\t%d\n", p.Name, p.Arity))
	//
	for _, insn := range p.Code {
		builder.WriteString("\t")
		builder.WriteString(insn.String())
		builder.WriteString("\n")
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// Program is an ordered list of functions, along with the name of the entry
// point.
type Program struct {
	// Name of the entry function, without its "@" sigil.
	Entry string
	// Functions making up this program.
	Functions []*Function
}

// Function returns the function with the given name, or nil if no such
// function exists.
func (p *Program) Function(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	//
	return nil
}

// Variables returns the names (without sigils) of all variables used anywhere
// in this program.
func (p *Program) Variables() []string {
	var (
		seen  = make(map[string]bool)
		names []string
	)
	//
	for _, f := range p.Functions {
		for _, n := range f.Variables() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	//
	return names
}

func (p *Program) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("(@%s\n", p.Entry))
	//
	for _, f := range p.Functions {
		builder.WriteString(f.String())
		builder.WriteString("\n")
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// Operands returns the operand items of a given instruction, in the order they
// appear in its textual form.  Literal operands which form part of the
// instruction's syntax (e.g. stack-arg offsets, call arities, lea scales) are
// included.
func Operands(insn Instruction) []Item {
	switch insn := insn.(type) {
	case *Assign:
		return []Item{insn.Dst, insn.Src}
	case *StackArg:
		return []Item{insn.Dst, insn.Offset}
	case *Arith:
		return []Item{insn.Dst, insn.Src}
	case *Shift:
		return []Item{insn.Dst, insn.Src}
	case *MemArith:
		return []Item{insn.Lhs, insn.Rhs}
	case *Compare:
		return []Item{insn.Dst, insn.Lhs, insn.Rhs}
	case *CJump:
		return []Item{insn.Lhs, insn.Rhs, insn.Target}
	case *DefineLabel:
		return []Item{insn.Label}
	case *Goto:
		return []Item{insn.Target}
	case *Return:
		return nil
	case *Call:
		if insn.Kind == USER_CALL {
			return []Item{insn.Callee, insn.Args}
		}
		//
		return []Item{insn.Args}
	case *IncDec:
		return []Item{insn.Dst}
	case *Lea:
		return []Item{insn.Dst, insn.Base, insn.Index, insn.Scale}
	}
	//
	panic(fmt.Sprintf("unknown instruction \"%s\"", insn.String()))
}

// IsTerminal determines whether control never proceeds from a given
// instruction to any other instruction in the same function.  This holds for
// returns and for calls to runtime functions which never return.
func IsTerminal(insn Instruction) bool {
	switch insn := insn.(type) {
	case *Return:
		return true
	case *Call:
		return !insn.Kind.Returns()
	default:
		return false
	}
}

func variableOf(item Item) (Variable, bool) {
	switch item := item.(type) {
	case Variable:
		return item, true
	case Memory:
		return variableOf(item.Base)
	default:
		return Variable{}, false
	}
}

func isStackSlot(m Memory) bool {
	r, ok := m.Base.(Register)
	//
	return ok && r.Name == RSP && m.Offset >= 0
}
