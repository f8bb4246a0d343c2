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

	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/spill"
	"github.com/spf13/cobra"
)

var spillCmd = &cobra.Command{
	Use:   "spill [flags] spill_file",
	Short: "spill a single variable of a function.",
	Long: `Spill a single variable of a given L2 function onto the stack,
	printing the rewritten function.  The input file holds the function,
	followed by the variable to spill and the prefix to use for
	temporaries, e.g. "(@f 0 ...) %v %S".`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		request, errs := parser.ParseSpillRequest(readSourceFile(args[0]))
		exitOnSyntaxErrors(errs)
		//
		var (
			fn    = request.Function
			names = spill.NewNameGenerator(request.Prefix.String(), fn.Variables()...)
		)
		//
		rewritten, _ := spill.Rewrite(fn, []string{request.Variable.String()}, names)
		//
		fmt.Println(rewritten.String())
	},
}

func init() {
	rootCmd.AddCommand(spillCmd)
}
