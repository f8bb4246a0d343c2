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
package regalloc

import (
	"fmt"

	"github.com/consensys/go-l2/pkg/coloring"
)

// DEFAULT_SPILL_PREFIX is the prefix used for temporaries introduced by
// spilling, unless otherwise configured.
const DEFAULT_SPILL_PREFIX = "%S"

// Config determines how registers are allocated.
type Config struct {
	// Maximum number of colouring rounds per function, where zero means
	// unbounded.  Allocation always terminates regardless, since each round
	// spills at least one variable of the original function.
	MaxRounds uint
	// Prefix for temporaries introduced by spilling.
	SpillPrefix string
	// Heuristic for choosing spill candidates.
	Heuristic coloring.Heuristic
}

// DefaultConfig returns the default allocation configuration.
func DefaultConfig() Config {
	return Config{0, DEFAULT_SPILL_PREFIX, coloring.HIGHEST_DEGREE}
}

// RoundLimitError reports that a function could not be coloured within the
// configured number of rounds.
type RoundLimitError struct {
	// Function being allocated.
	Function string
	// Number of rounds attempted.
	Rounds uint
}

func (p *RoundLimitError) Error() string {
	return fmt.Sprintf("@%s: no colouring found within %d round(s)", p.Function, p.Rounds)
}
