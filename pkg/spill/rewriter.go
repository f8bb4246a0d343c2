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
	"slices"

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/liveness"
)

// Rewrite spills a given set of variables (named with their "%" sigil) of a
// function into dedicated stack slots.  Every instruction mentioning a spilled
// variable has that variable replaced by a fresh temporary, which is loaded
// from the variable's slot immediately before the instruction (if the
// instruction reads it) and stored back immediately afterwards (if the
// instruction writes it).  Each spilled variable receives one slot in the
// function's frame, appended after any existing locals.  The rewritten
// function is returned together with the temporaries introduced, in order of
// introduction.  The original function is not modified.
func Rewrite(fn *l2.Function, spilled []string, names *NameGenerator) (*l2.Function, []string) {
	var (
		rewritten = &l2.Function{Name: fn.Name, Arity: fn.Arity, Locals: fn.Locals}
		targets   = make(map[string]bool)
		slots     = make(map[string]int64)
		temps     []string
	)
	//
	for _, v := range spilled {
		targets[v] = true
	}
	//
	for _, insn := range fn.Code {
		var (
			gen, kill = liveness.Effects(insn)
			mapping   = make(map[string]l2.Variable)
			loads     []l2.Instruction
			stores    []l2.Instruction
		)
		//
		for _, v := range spilledOperands(insn, targets) {
			offset, ok := slots[v]
			// Allocate slot on first occurrence
			if !ok {
				offset = int64(8 * rewritten.Locals)
				slots[v] = offset
				rewritten.Locals++
			}
			//
			temp := names.Fresh()
			slot := l2.NewMemory(l2.NewRegister(l2.RSP), offset)
			mapping[v] = temp
			temps = append(temps, temp.String())
			//
			if slices.Contains(gen, v) {
				loads = append(loads, &l2.Assign{Dst: temp, Src: slot})
			}
			//
			if slices.Contains(kill, v) {
				stores = append(stores, &l2.Assign{Dst: slot, Src: temp})
			}
		}
		//
		if len(mapping) > 0 {
			insn = substitute(insn, mapping)
		}
		//
		rewritten.Code = append(rewritten.Code, loads...)
		rewritten.Code = append(rewritten.Code, insn)
		rewritten.Code = append(rewritten.Code, stores...)
	}
	//
	return rewritten, temps
}

// Determine the distinct spilled variables mentioned by an instruction, in
// order of occurrence.
func spilledOperands(insn l2.Instruction, targets map[string]bool) []string {
	var names []string
	//
	for _, item := range l2.Operands(insn) {
		if n, ok := variableName(item); ok && targets[n] && !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	//
	return names
}

func variableName(item l2.Item) (string, bool) {
	switch item := item.(type) {
	case l2.Variable:
		return item.String(), true
	case l2.Memory:
		return variableName(item.Base)
	default:
		return "", false
	}
}

// Construct a copy of an instruction where every spilled variable (including
// those used as the base of a memory operand) is replaced by its temporary.
func substitute(insn l2.Instruction, mapping map[string]l2.Variable) l2.Instruction {
	var s = func(item l2.Item) l2.Item { return substituteItem(item, mapping) }
	//
	switch insn := insn.(type) {
	case *l2.Assign:
		return &l2.Assign{Dst: s(insn.Dst), Src: s(insn.Src)}
	case *l2.StackArg:
		return &l2.StackArg{Dst: s(insn.Dst), Offset: insn.Offset}
	case *l2.Arith:
		return &l2.Arith{Op: insn.Op, Dst: s(insn.Dst), Src: s(insn.Src)}
	case *l2.Shift:
		return &l2.Shift{Op: insn.Op, Dst: s(insn.Dst), Src: s(insn.Src)}
	case *l2.MemArith:
		return &l2.MemArith{Op: insn.Op, Lhs: s(insn.Lhs), Rhs: s(insn.Rhs)}
	case *l2.Compare:
		return &l2.Compare{Dst: s(insn.Dst), Op: insn.Op, Lhs: s(insn.Lhs), Rhs: s(insn.Rhs)}
	case *l2.CJump:
		return &l2.CJump{Op: insn.Op, Lhs: s(insn.Lhs), Rhs: s(insn.Rhs), Target: insn.Target}
	case *l2.DefineLabel, *l2.Goto, *l2.Return:
		return insn
	case *l2.Call:
		if insn.Kind == l2.USER_CALL {
			return &l2.Call{Kind: insn.Kind, Callee: s(insn.Callee), Args: insn.Args}
		}
		//
		return insn
	case *l2.IncDec:
		return &l2.IncDec{Dst: s(insn.Dst), Increment: insn.Increment}
	case *l2.Lea:
		return &l2.Lea{Dst: s(insn.Dst), Base: s(insn.Base), Index: s(insn.Index), Scale: insn.Scale}
	}
	//
	panic(fmt.Sprintf("unknown instruction \"%s\"", insn.String()))
}

func substituteItem(item l2.Item, mapping map[string]l2.Variable) l2.Item {
	switch item := item.(type) {
	case l2.Variable:
		if temp, ok := mapping[item.String()]; ok {
			return temp
		}
	case l2.Memory:
		if base, ok := item.Base.(l2.Variable); ok {
			if temp, ok := mapping[base.String()]; ok {
				return l2.NewMemory(temp, item.Offset)
			}
		}
	}
	//
	return item
}
