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
package termio

import (
	"fmt"
	"io"
	"strings"
)

// TablePrinter is useful for printing tables to the terminal.
type TablePrinter struct {
	widths        []uint
	rows          [][]string
	escapes       [][]AnsiEscape
	enableEscapes bool
}

// NewTablePrinter constructs a new table with a given number of columns and
// no rows.
func NewTablePrinter(width uint) *TablePrinter {
	return &TablePrinter{make([]uint, width), nil, nil, false}
}

// Height returns the number of rows in this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// Get the contents of a given cell in this table
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// AddRow appends a row to this table.
func (p *TablePrinter) AddRow(vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	// Update column widths
	for i, v := range vals {
		p.widths[i] = max(p.widths[i], uint(len(v)))
	}
	//
	p.rows = append(p.rows, vals)
	p.escapes = append(p.escapes, make([]AnsiEscape, len(vals)))
}

// SetEscape sets the escape to use when printing the contents of a given cell
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape
}

// AnsiEscapes enables or disables the use of ANSI escapes (e.g. for showing
// colour).
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidth puts an upper bound on the width of a given column.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = min(p.widths[col], max(width, 3))
}

// Print the table to a given writer.
func (p *TablePrinter) Print(out io.Writer) {
	for i, row := range p.rows {
		var builder strings.Builder
		//
		for j, col := range row {
			width := p.widths[j]
			// Truncate (if applicable)
			if uint(len(col)) > width {
				col = col[0:width-2] + ".."
			}
			//
			cell := fmt.Sprintf(" %-*s", width, col)
			builder.WriteString(p.escapes[i][j].Wrap(cell, p.enableEscapes))
			builder.WriteString(" |")
		}
		//
		fmt.Fprintln(out, builder.String())
	}
}
