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
)

// LabelError reports a label which is either referenced without being defined,
// or defined more than once.
type LabelError struct {
	// Function in which the error arose.
	Function string
	// Index of the offending instruction.
	Index uint
	// Name of the label (without its sigil).
	Label string
	// Determines whether the label was defined twice (rather than not at
	// all).
	Duplicate bool
}

func (p *LabelError) Error() string {
	if p.Duplicate {
		return fmt.Sprintf("@%s[%d]: label :%s already defined", p.Function, p.Index, p.Label)
	}
	//
	return fmt.Sprintf("@%s[%d]: unknown label :%s", p.Function, p.Index, p.Label)
}

// RegisterError reports an instruction which refers to a register that is
// neither general purpose nor the stack pointer.  The reader never produces
// such an instruction, but functions constructed directly can.
type RegisterError struct {
	// Function in which the error arose.
	Function string
	// Index of the offending instruction.
	Index uint
	// Name of the unknown register.
	Register string
}

func (p *RegisterError) Error() string {
	return fmt.Sprintf("@%s[%d]: unknown register %s", p.Function, p.Index, p.Register)
}

// ConvergenceError reports that the liveness fixed point was not reached
// within the expected number of passes.  This cannot happen for a correct
// analysis, and signals an internal failure rather than a malformed input.
type ConvergenceError struct {
	// Function being analysed.
	Function string
	// Number of passes executed.
	Passes uint
}

func (p *ConvergenceError) Error() string {
	return fmt.Sprintf("@%s: liveness failed to converge after %d passes", p.Function, p.Passes)
}
