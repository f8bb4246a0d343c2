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

	"github.com/consensys/go-l2/pkg/liveness"
	"github.com/spf13/cobra"
)

var livenessCmd = &cobra.Command{
	Use:   "liveness [flags] l2_file",
	Short: "print the in and out sets of every instruction.",
	Long: `Analyse the liveness of a given L2 function, printing
	the set of names live on entry to (in) and exit from (out) each
	instruction.  Sets are printed in alphabetical order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		for _, fn := range readFunctions(cmd, args[0]) {
			result, err := liveness.Analyse(fn)
			//
			if err != nil {
				exitOnError(err)
			}
			//
			fmt.Print(result.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(livenessCmd)
	livenessCmd.Flags().Bool("program", false, "input is an entire program, rather than a single function")
}
