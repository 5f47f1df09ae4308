/*
 * Copyright 2026 The Mutacore Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package operator implements the mutation operator catalog and engine:
// a minimal C++-aware tokenizer sufficient to reject spans inside
// strings, char literals, comments and preprocessor directives, plus the
// regex-based rewrite rules applied per line.
package operator

import "strings"

// spanKind classifies a byte range of a line for the applicability
// guards. No real C++ lexer is attempted: this is just enough to keep
// the regex-based operators honest.
type spanKind int

const (
	kindCode spanKind = iota
	kindString
	kindChar
	kindLineComment
	kindBlockComment
	kindPreprocessor
)

// Span is a classified byte range within a line.
type Span struct {
	Start int
	End   int
	Kind  spanKind
}

// Classify scans line and returns the spans covering it end-to-end,
// recognising double-quoted strings, single-quoted chars (with
// backslash escapes), "//" line comments, "/* */" block comments
// (assumed to close on the same line; multi-line block comments are a
// known limitation of line-granular mutation) and "#" preprocessor
// lines.
func Classify(line string) []Span {
	if len(line) == 0 {
		return nil
	}

	trimmed := 0
	for trimmed < len(line) && (line[trimmed] == ' ' || line[trimmed] == '\t') {
		trimmed++
	}
	if trimmed < len(line) && line[trimmed] == '#' {
		return []Span{{Start: 0, End: len(line), Kind: kindPreprocessor}}
	}

	var spans []Span
	i := 0
	codeStart := 0
	flushCode := func(end int) {
		if end > codeStart {
			spans = append(spans, Span{Start: codeStart, End: end, Kind: kindCode})
		}
	}

	for i < len(line) {
		switch {
		case line[i] == '/' && i+1 < len(line) && line[i+1] == '/':
			flushCode(i)
			spans = append(spans, Span{Start: i, End: len(line), Kind: kindLineComment})

			return spans
		case line[i] == '/' && i+1 < len(line) && line[i+1] == '*':
			flushCode(i)
			end := indexFrom(line, "*/", i+2)
			if end < 0 {
				end = len(line)
			} else {
				end += 2
			}
			spans = append(spans, Span{Start: i, End: end, Kind: kindBlockComment})
			i = end
			codeStart = i

			continue
		case line[i] == '"':
			flushCode(i)
			end := scanQuoted(line, i, '"')
			spans = append(spans, Span{Start: i, End: end, Kind: kindString})
			i = end
			codeStart = i

			continue
		case line[i] == '\'':
			flushCode(i)
			end := scanQuoted(line, i, '\'')
			spans = append(spans, Span{Start: i, End: end, Kind: kindChar})
			i = end
			codeStart = i

			continue
		}
		i++
	}
	flushCode(len(line))

	return spans
}

// scanQuoted returns the index just past the closing quote matching the
// one at line[start], honouring backslash escapes. If unterminated, it
// returns len(line).
func scanQuoted(line string, start int, quote byte) int {
	i := start + 1
	for i < len(line) {
		if line[i] == '\\' {
			i += 2

			continue
		}
		if line[i] == quote {
			return i + 1
		}
		i++
	}

	return len(line)
}

func indexFrom(s, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := strings.Index(s[from:], sub)
	if idx < 0 {
		return -1
	}

	return idx + from
}

// CodeOnly reports whether the byte range [start,end) of line is a
// mutable span: never on a preprocessor line, and never inside or
// straddling a string, char, or comment span. A non-code span wholly
// contained in the range is allowed, since such a rewrite replaces the
// literal wholesale (a statement comment-out) rather than rewriting its
// content.
func CodeOnly(line string, start, end int) bool {
	spans := Classify(line)
	for _, sp := range spans {
		if sp.Kind == kindCode {
			continue
		}
		if sp.Kind == kindPreprocessor {
			return false
		}
		if !overlaps(sp.Start, sp.End, start, end) {
			continue
		}
		if start <= sp.Start && sp.End <= end {
			continue
		}

		return false
	}

	return true
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
