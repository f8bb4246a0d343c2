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

import "slices"

// RSP is the stack pointer.  It addresses spill slots and the outgoing argument
// area, hence it is never allocated, never spilled and never contributes to
// liveness.
const RSP = "rsp"

// RCX is the only register which x86-64 permits to hold the amount of a
// variable shift.
const RCX = "rcx"

// RAX holds the return value of a function.
const RAX = "rax"

// MAX_REGISTER_ARGS is the number of call arguments passed in registers.  Any
// further arguments are passed on the stack.
const MAX_REGISTER_ARGS = 6

// GENERAL_PURPOSE_REGISTERS identifies the allocatable registers.  The order
// here is the colour order used by the allocator: caller-saved registers come
// first so that callee-saved registers (which are live throughout a function
// anyway) are only chosen when nothing else is available.
var GENERAL_PURPOSE_REGISTERS = []string{
	"rdi", "rsi", "rdx", "rcx", "r8", "r9", "rax", "r10", "r11",
	"r12", "r13", "r14", "r15", "rbp", "rbx",
}

// ARGUMENT_REGISTERS lists the registers used to pass the first arguments of a
// call, in calling convention order.
var ARGUMENT_REGISTERS = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// CALLER_SAVED_REGISTERS may be clobbered by any call.
var CALLER_SAVED_REGISTERS = []string{"r10", "r11", "r8", "r9", "rax", "rcx", "rdi", "rdx", "rsi"}

// CALLEE_SAVED_REGISTERS must hold their original value when a function
// returns.
var CALLEE_SAVED_REGISTERS = []string{"r12", "r13", "r14", "r15", "rbp", "rbx"}

// IsRegisterName checks whether a given name denotes a machine register,
// including the stack pointer.
func IsRegisterName(name string) bool {
	return name == RSP || IsGeneralPurpose(name)
}

// IsGeneralPurpose checks whether a given name denotes an allocatable
// register.
func IsGeneralPurpose(name string) bool {
	return slices.Contains(GENERAL_PURPOSE_REGISTERS, name)
}

// NumGeneralPurpose returns the number of allocatable registers (i.e. the K
// used for graph colouring).
func NumGeneralPurpose() uint {
	return uint(len(GENERAL_PURPOSE_REGISTERS))
}

// ArgumentRegisters returns the registers used to pass the first n arguments
// of a call.  Observe that n is clipped at MAX_REGISTER_ARGS, since subsequent
// arguments are passed on the stack.
func ArgumentRegisters(n int64) []string {
	n = max(0, min(n, MAX_REGISTER_ARGS))
	//
	return ARGUMENT_REGISTERS[:n]
}
