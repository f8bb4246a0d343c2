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
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-l2/pkg/util/source"
)

// Extract the expected errors listed at the beginning of a source file, where
// each is given on a line of the form ";;error:X:Y-Z:msg".  Extraction stops
// at the first line which is not of this form.
func extractExpectedErrors(srcfile *source.File) ([]source.SyntaxError, []error) {
	var (
		lines    = srcfile.Lines()
		expected []source.SyntaxError
		errs     []error
	)
	//
	for _, line := range lines {
		contents := line.String()
		//
		if !strings.HasPrefix(contents, ";;error") {
			break
		}
		//
		lineno, start, end, msg, err := parseExpectedErrorLine(contents)
		//
		if err == nil {
			var span source.Span
			//
			if span, err = determineFileSpan(lineno, start, end, lines); err == nil {
				expected = append(expected, *srcfile.SyntaxError(span, msg))
			}
		}
		//
		if err != nil {
			errs = append(errs, err)
		}
	}
	//
	return expected, errs
}

func parseExpectedErrorLine(contents string) (line, start, end int, msg string, err error) {
	var splits = strings.Split(contents, ":")
	//
	if len(splits) < 4 {
		return 0, 0, 0, "", fmt.Errorf("malformed expected error \"%s\", should be e.g. \";;error:X:Y-Z:msg\"", contents)
	}
	// Parse line number
	if line, err = strconv.Atoi(splits[1]); err != nil {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s:%s\" (%s)", splits[1], splits[2], err.Error())
	} else if line == 0 {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s:%s\" (lines numbered from 1)", splits[1], splits[2])
	}
	// Parse columns
	var columns = strings.Split(splits[2], "-")
	//
	if len(columns) != 2 {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s\" (malformed, should be X-Y)", splits[2])
	} else if start, err = strconv.Atoi(columns[0]); err != nil || start == 0 {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s\" (columns numbered from 1)", splits[2])
	} else if end, err = strconv.Atoi(columns[1]); err != nil {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s\" (%s)", splits[2], err.Error())
	}
	//
	return line, start, end, strings.Join(splits[3:], ":"), nil
}

// Determine the span that the the given line and columns correspond to.  We
// need the line offsets so that the computed span includes the starting
// offset of the relevant line.
func determineFileSpan(lineno, start, end int, lines []source.Line) (source.Span, error) {
	if lineno > len(lines) {
		return source.Span{}, fmt.Errorf("invalid span \"%d:%d-%d\" (non-existent line)", lineno, start, end)
	}
	//
	line := lines[lineno-1]
	// Subtract one from each since column numbering starts from 1.
	start--
	end--
	//
	if start >= line.Length() || end > line.Length() {
		return source.Span{}, fmt.Errorf("invalid span \"%d:%d-%d\" (overflows to following line)", lineno, start, end)
	}
	//
	return source.NewSpan(start+line.Start(), end+line.Start()), nil
}
