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
	"github.com/consensys/go-l2/pkg/l2"
)

// Labels maps each label defined in a given function to the index of the
// instruction defining it.
func Labels(fn *l2.Function) (map[string]uint, error) {
	var labels = make(map[string]uint)
	//
	for i, insn := range fn.Code {
		if def, ok := insn.(*l2.DefineLabel); ok {
			if _, exists := labels[def.Label.Name]; exists {
				return nil, &LabelError{fn.Name, uint(i), def.Label.Name, true}
			}
			//
			labels[def.Label.Name] = uint(i)
		}
	}
	//
	return labels, nil
}

// Successors determines the control-flow successors of every instruction in a
// given function.  Returns, and calls which never return, have no successors;
// a goto continues only at its target; a cjump continues at its target and at
// the following instruction; every other instruction continues at the
// following instruction (if there is one).
func Successors(fn *l2.Function, labels map[string]uint) ([][]uint, error) {
	var (
		n     = uint(len(fn.Code))
		succs = make([][]uint, n)
	)
	//
	for i, insn := range fn.Code {
		var (
			index = uint(i)
			next  []uint
		)
		//
		if index+1 < n {
			next = []uint{index + 1}
		}
		//
		switch insn := insn.(type) {
		case *l2.Goto:
			target, ok := labels[insn.Target.Name]
			if !ok {
				return nil, &LabelError{fn.Name, index, insn.Target.Name, false}
			}
			//
			succs[i] = []uint{target}
		case *l2.CJump:
			target, ok := labels[insn.Target.Name]
			if !ok {
				return nil, &LabelError{fn.Name, index, insn.Target.Name, false}
			}
			//
			succs[i] = append([]uint{target}, next...)
		default:
			if !l2.IsTerminal(insn) {
				succs[i] = next
			}
		}
	}
	//
	return succs, nil
}
