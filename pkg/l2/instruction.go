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
)

// Instruction represents a single L2 instruction.  The set of instructions is
// closed, and every analysis over them is an exhaustive type switch over the
// following variants: Assign, StackArg, Arith, Shift, MemArith, Compare,
// CJump, DefineLabel, Goto, Return, Call, IncDec and Lea.
type Instruction interface {
	fmt.Stringer
	// Marker restricting the set of variants to this package.
	instruction()
}

// Assign represents "dst <- src", covering register moves, loads (where src is
// a memory operand) and stores (where dst is a memory operand).
type Assign struct {
	Dst Item
	Src Item
}

// StackArg represents "dst <- stack-arg M", which reads an argument passed on
// the stack at offset M of the incoming argument area.
type StackArg struct {
	Dst    Item
	Offset Number
}

// Arith represents an in-place arithmetic operation "dst op= src".
type Arith struct {
	Op  ArithOp
	Dst Item
	Src Item
}

// Shift represents an in-place shift "dst op= src".  When src is not a
// literal, it must end up in rcx.
type Shift struct {
	Op  ShiftOp
	Dst Item
	Src Item
}

// MemArith represents arithmetic directly involving a memory operand, either
// "mem x M op= t" or "w op= mem x M".  Only addition and subtraction are
// permitted.
type MemArith struct {
	Op  ArithOp
	Lhs Item
	Rhs Item
}

// Compare represents "dst <- lhs cmp rhs".
type Compare struct {
	Dst Item
	Op  CmpOp
	Lhs Item
	Rhs Item
}

// CJump represents "cjump lhs cmp rhs :L", which branches to L when the
// comparison holds and otherwise falls through.
type CJump struct {
	Op     CmpOp
	Lhs    Item
	Rhs    Item
	Target Label
}

// DefineLabel marks the position of a label within a function.
type DefineLabel struct {
	Label Label
}

// Goto represents an unconditional branch.
type Goto struct {
	Target Label
}

// Return returns from the enclosing function.
type Return struct{}

// Call represents "call u N", where u is either the callee (for user calls) or
// one of the runtime functions identified by Kind.  Args is the declared arity
// of the call.
type Call struct {
	Kind   CallKind
	Callee Item
	Args   Number
}

// IncDec represents "dst++" or "dst--".
type IncDec struct {
	Dst       Item
	Increment bool
}

// Lea represents the address computation "dst @ base index scale", which
// assigns dst the value base + index * scale.
type Lea struct {
	Dst   Item
	Base  Item
	Index Item
	Scale Number
}

func (p *Assign) instruction()      {}
func (p *StackArg) instruction()    {}
func (p *Arith) instruction()       {}
func (p *Shift) instruction()       {}
func (p *MemArith) instruction()    {}
func (p *Compare) instruction()     {}
func (p *CJump) instruction()       {}
func (p *DefineLabel) instruction() {}
func (p *Goto) instruction()        {}
func (p *Return) instruction()      {}
func (p *Call) instruction()        {}
func (p *IncDec) instruction()      {}
func (p *Lea) instruction()         {}

func (p *Assign) String() string {
	return fmt.Sprintf("(%s <- %s)", p.Dst, p.Src)
}

func (p *StackArg) String() string {
	return fmt.Sprintf("(%s <- stack-arg %s)", p.Dst, p.Offset)
}

func (p *Arith) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Dst, p.Op, p.Src)
}

func (p *Shift) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Dst, p.Op, p.Src)
}

func (p *MemArith) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Lhs, p.Op, p.Rhs)
}

func (p *Compare) String() string {
	return fmt.Sprintf("(%s <- %s %s %s)", p.Dst, p.Lhs, p.Op, p.Rhs)
}

func (p *CJump) String() string {
	return fmt.Sprintf("(cjump %s %s %s %s)", p.Lhs, p.Op, p.Rhs, p.Target)
}

func (p *DefineLabel) String() string {
	return p.Label.String()
}

func (p *Goto) String() string {
	return fmt.Sprintf("(goto %s)", p.Target)
}

func (p *Return) String() string {
	return "(return)"
}

func (p *Call) String() string {
	if p.Kind == USER_CALL {
		return fmt.Sprintf("(call %s %s)", p.Callee, p.Args)
	}
	//
	return fmt.Sprintf("(call %s %s)", p.Kind, p.Args)
}

func (p *IncDec) String() string {
	if p.Increment {
		return fmt.Sprintf("(%s++)", p.Dst)
	}
	//
	return fmt.Sprintf("(%s--)", p.Dst)
}

func (p *Lea) String() string {
	return fmt.Sprintf("(%s @ %s %s %s)", p.Dst, p.Base, p.Index, p.Scale)
}

// ============================================================================
// Operators
// ============================================================================

// ArithOp identifies an in-place arithmetic operator.
type ArithOp uint8

const (
	// ADD_ASSIGN is "+="
	ADD_ASSIGN ArithOp = iota
	// SUB_ASSIGN is "-="
	SUB_ASSIGN
	// MUL_ASSIGN is "*="
	MUL_ASSIGN
	// AND_ASSIGN is "&="
	AND_ASSIGN
)

func (p ArithOp) String() string {
	switch p {
	case ADD_ASSIGN:
		return "+="
	case SUB_ASSIGN:
		return "-="
	case MUL_ASSIGN:
		return "*="
	case AND_ASSIGN:
		return "&="
	}
	//
	panic("unreachable")
}

// ShiftOp identifies an in-place shift operator.
type ShiftOp uint8

const (
	// SHL_ASSIGN is "<<="
	SHL_ASSIGN ShiftOp = iota
	// SHR_ASSIGN is ">>="
	SHR_ASSIGN
)

func (p ShiftOp) String() string {
	if p == SHL_ASSIGN {
		return "<<="
	}
	//
	return ">>="
}

// CmpOp identifies a comparison.
type CmpOp uint8

const (
	// LT is "<"
	LT CmpOp = iota
	// LTEQ is "<="
	LTEQ
	// EQ is "="
	EQ
)

func (p CmpOp) String() string {
	switch p {
	case LT:
		return "<"
	case LTEQ:
		return "<="
	case EQ:
		return "="
	}
	//
	panic("unreachable")
}

// CallKind distinguishes calls to user functions from calls into the runtime.
type CallKind uint8

const (
	// USER_CALL is a call to a function label or to a computed function
	// pointer held in a register or variable.
	USER_CALL CallKind = iota
	// PRINT_CALL is a call to the runtime "print" function.
	PRINT_CALL
	// INPUT_CALL is a call to the runtime "input" function.
	INPUT_CALL
	// ALLOCATE_CALL is a call to the runtime "allocate" function.
	ALLOCATE_CALL
	// TUPLE_ERROR_CALL reports an out-of-bounds tuple access and never returns.
	TUPLE_ERROR_CALL
	// TENSOR_ERROR_CALL reports an out-of-bounds tensor access and never
	// returns.
	TENSOR_ERROR_CALL
)

// RUNTIME_CALLS maps the names of runtime functions to their call kinds.
var RUNTIME_CALLS = map[string]CallKind{
	"print":        PRINT_CALL,
	"input":        INPUT_CALL,
	"allocate":     ALLOCATE_CALL,
	"tuple-error":  TUPLE_ERROR_CALL,
	"tensor-error": TENSOR_ERROR_CALL,
}

// Returns determines whether control can return from a call of this kind.
func (p CallKind) Returns() bool {
	return p != TUPLE_ERROR_CALL && p != TENSOR_ERROR_CALL
}

func (p CallKind) String() string {
	switch p {
	case USER_CALL:
		return "call"
	case PRINT_CALL:
		return "print"
	case INPUT_CALL:
		return "input"
	case ALLOCATE_CALL:
		return "allocate"
	case TUPLE_ERROR_CALL:
		return "tuple-error"
	case TENSOR_ERROR_CALL:
		return "tensor-error"
	}
	//
	panic("unreachable")
}
