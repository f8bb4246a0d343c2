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
package liveness

import (
	"fmt"

	"github.com/consensys/go-l2/pkg/l2"
)

// Effects determines the names read (gen) and written (kill) by a given
// instruction.  Only items which contribute to liveness are included, and
// memory operands contribute the name of their base.
func Effects(insn l2.Instruction) (gen []string, kill []string) {
	var e effects
	//
	switch insn := insn.(type) {
	case *l2.Assign:
		e.read(insn.Src)
		// A store reads the address, rather than defining a value.
		if _, ok := insn.Dst.(l2.Memory); ok {
			e.read(insn.Dst)
		} else {
			e.write(insn.Dst)
		}
	case *l2.StackArg:
		e.write(insn.Dst)
	case *l2.Arith:
		e.read(insn.Src)
		e.update(insn.Dst)
	case *l2.Shift:
		e.read(insn.Src)
		e.update(insn.Dst)
	case *l2.MemArith:
		if _, ok := insn.Lhs.(l2.Memory); ok {
			e.read(insn.Lhs)
		} else {
			e.update(insn.Lhs)
		}
		//
		e.read(insn.Rhs)
	case *l2.Compare:
		e.write(insn.Dst)
		e.read(insn.Lhs)
		e.read(insn.Rhs)
	case *l2.CJump:
		e.read(insn.Lhs)
		e.read(insn.Rhs)
	case *l2.DefineLabel, *l2.Goto:
		// control flow only
	case *l2.Return:
		e.gen = append(e.gen, l2.RAX)
		e.gen = append(e.gen, l2.CALLEE_SAVED_REGISTERS...)
	case *l2.Call:
		e.kill = append(e.kill, l2.CALLER_SAVED_REGISTERS...)
		e.gen = append(e.gen, l2.ArgumentRegisters(insn.Args.Value)...)
		//
		if insn.Kind == l2.USER_CALL {
			e.read(insn.Callee)
		}
	case *l2.IncDec:
		e.update(insn.Dst)
	case *l2.Lea:
		e.read(insn.Base)
		e.read(insn.Index)
		e.write(insn.Dst)
	default:
		panic(fmt.Sprintf("unknown instruction \"%s\"", insn.String()))
	}
	//
	return e.gen, e.kill
}

type effects struct {
	gen  []string
	kill []string
}

func (p *effects) read(item l2.Item) {
	if l2.IsContributor(item) {
		p.gen = append(p.gen, l2.LivenessName(item))
	}
}

func (p *effects) write(item l2.Item) {
	if l2.IsContributor(item) {
		p.kill = append(p.kill, l2.LivenessName(item))
	}
}

// An item which is both read and written.
func (p *effects) update(item l2.Item) {
	p.read(item)
	p.write(item)
}
