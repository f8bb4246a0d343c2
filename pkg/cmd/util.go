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
	"strings"

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/l2/parser"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/consensys/go-l2/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned int flag, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Default settings which can be overridden from the environment.
func envVerbose() bool {
	return env.Bool("L2C_VERBOSE")
}

func envMaxRounds() uint {
	return uint(max(0, env.Int("L2C_MAX_ROUNDS", 0)))
}

func envSpillPrefix() string {
	return env.Str("L2C_SPILL_PREFIX", "%S")
}

// Read a given source file, or exit if this fails.
func readSourceFile(filename string) *source.File {
	log.Debug(fmt.Sprintf("reading source file %s", filename))
	//
	srcfile, err := source.ReadFile(filename)
	// Sanity check for errors
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return srcfile
}

// Read an L2 program from a given file, or exit reporting any syntax errors.
func readProgramFile(filename string) *l2.Program {
	program, errs := parser.Parse(readSourceFile(filename))
	//
	exitOnSyntaxErrors(errs)
	//
	return program
}

// Read a single L2 function from a given file, or exit reporting any syntax
// errors.
func readFunctionFile(filename string) *l2.Function {
	fn, errs := parser.ParseFunction(readSourceFile(filename))
	//
	exitOnSyntaxErrors(errs)
	//
	return fn
}

// Read the functions to analyse from a given file, which holds either an
// entire program or a single function.
func readFunctions(cmd *cobra.Command, filename string) []*l2.Function {
	if GetFlag(cmd, "program") {
		return readProgramFile(filename).Functions
	}
	//
	return []*l2.Function{readFunctionFile(filename)}
}

func exitOnSyntaxErrors(errs []source.SyntaxError) {
	if len(errs) == 0 {
		return
	}
	//
	for _, err := range errs {
		printSyntaxError(&err)
	}
	//
	os.Exit(4)
}

// Exit reporting a given error.
func exitOnError(err error) {
	log.Error(err)
	os.Exit(5)
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	var (
		span       = err.Span()
		line       = err.FirstEnclosingLine()
		lineOffset = span.Start() - line.Start()
		escapes    = termio.IsTerminal(os.Stdout)
		highlight  = termio.NewAnsiEscape().Bold().FgColour(termio.TERM_RED)
	)
	// Calculate length (ensures don't overflow line)
	length := max(1, min(line.Length()-lineOffset, span.Length()))
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent (todo: account for tabs)
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight
	fmt.Println(highlight.Wrap(strings.Repeat("^", length), escapes))
}
