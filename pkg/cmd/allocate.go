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
package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/consensys/go-l2/pkg/coloring"
	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/regalloc"
	"github.com/consensys/go-l2/pkg/util/termio"
	"github.com/spf13/cobra"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate [flags] l2_file",
	Short: "allocate registers for every function in a program.",
	Long: `Allocate registers for every variable of a given L2 program,
	spilling variables onto the stack as necessary.  By default, the
	program with all spilling applied is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := regalloc.DefaultConfig()
		config.MaxRounds = GetUint(cmd, "max-rounds")
		config.SpillPrefix = GetString(cmd, "prefix")
		//
		if GetFlag(cmd, "first-seen") {
			config.Heuristic = coloring.FIRST_SEEN
		}
		//
		program := readProgramFile(args[0])
		allocation, err := regalloc.Allocate(program, config)
		//
		if err != nil {
			exitOnError(err)
		}
		//
		if GetFlag(cmd, "colouring") {
			for _, fn := range allocation.Program.Functions {
				printColouring(allocation.Functions[fn.Name])
			}
		} else {
			fmt.Println(allocation.Program.String())
		}
	},
}

// Print the colouring of a function as a table, highlighting callee-saved
// registers (whose use requires saving them in the prologue).
func printColouring(alloc *regalloc.FunctionAllocation) {
	var (
		tp        = termio.NewTablePrinter(2)
		variables []string
		calleeEsc = termio.NewAnsiEscape().FgColour(termio.TERM_YELLOW)
	)
	//
	fmt.Printf("@%s (%d round(s), %d local(s), spilled %v)\n", alloc.Function.Name, alloc.Rounds,
		alloc.Function.Locals, alloc.Spilled)
	//
	for v := range alloc.Colouring {
		variables = append(variables, v)
	}
	//
	slices.Sort(variables)
	//
	for _, v := range variables {
		register := alloc.Colouring[v]
		tp.AddRow(v, register)
		//
		if slices.Contains(l2.CALLEE_SAVED_REGISTERS, register) {
			tp.SetEscape(1, tp.Height()-1, calleeEsc)
		}
	}
	//
	tp.SetMaxWidth(0, termio.Width(os.Stdout, 80)/2)
	tp.AnsiEscapes(termio.IsTerminal(os.Stdout))
	tp.Print(os.Stdout)
}

func init() {
	rootCmd.AddCommand(allocateCmd)
	allocateCmd.Flags().Bool("colouring", false, "print the register assigned to each variable")
	allocateCmd.Flags().Bool("first-seen", false, "spill variables in order of occurrence, rather than by degree")
	allocateCmd.Flags().Uint("max-rounds", envMaxRounds(), "maximum colouring rounds per function (0 is unbounded)")
	allocateCmd.Flags().String("prefix", envSpillPrefix(), "prefix for temporaries introduced by spilling")
}
