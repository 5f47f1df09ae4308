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

package arid

import (
	"regexp"
	"strings"

	"github.com/brunoerg/bcore-mutation/internal/source"
)

// compoundHeaderRe recognises the lines that open a compound node: if,
// for, while, switch, or a function body opening brace. Without a real
// parser this is the entire basis for compound detection.
var compoundHeaderRe = regexp.MustCompile(`^\s*(?:\}?\s*else\s+)?\b(?:if|for|while|switch)\b.*\{?\s*$|\{\s*$`)

// Filter decides, for a given file's lines, whether each candidate line
// is arid. It implements the recursive predicate: arid(N) = expert(N)
// for simple nodes, and the conjunction over children for compound
// nodes, approximated through brace balance on the surrounding lines.
type Filter struct {
	rules *Rules
}

// NewFilter returns a Filter using the given expert rule set.
func NewFilter(rules *Rules) *Filter {
	return &Filter{rules: rules}
}

// IsArid reports whether lines[idx] (0-indexed into lines) is arid. When
// the line opens a compound body, the predicate recurses into the
// syntactic children found via brace balance; when uncertain about body
// boundaries, the implementation is conservative and returns false (not
// arid, mutant kept).
func (f *Filter) IsArid(lines []source.Line, idx int) bool {
	if idx < 0 || idx >= len(lines) {
		return false
	}

	line := lines[idx]
	if !isCompoundHeader(line.Text) {
		ok, _ := f.rules.Expert(line.Text)

		return ok
	}

	body, ok := findBody(lines, idx)
	if !ok {
		// Can't confidently bound the body: conservative default.
		return false
	}
	if len(body) == 0 {
		return true
	}

	for _, childIdx := range body {
		if !f.IsArid(lines, childIdx) {
			return false
		}
	}

	return true
}

func isCompoundHeader(text string) bool {
	return compoundHeaderRe.MatchString(text)
}

// findBody approximates the set of line indices that are direct
// syntactic children of the compound node opened at lines[headerIdx], by
// tracking brace depth from the header's opening brace (on the same or a
// following line) until it returns to the header's depth. Returns
// ok=false when the opening brace cannot be located within a small
// lookahead window, or the closing brace is never found.
func findBody(lines []source.Line, headerIdx int) ([]int, bool) {
	const maxLookahead = 4000

	depth := 0
	openFound := false
	var body []int

	for i := headerIdx; i < len(lines) && i-headerIdx < maxLookahead; i++ {
		text := lines[i].Text
		opens := strings.Count(text, "{")
		closes := strings.Count(text, "}")

		if i > headerIdx && openFound {
			body = append(body, i)
		}

		depth += opens - closes
		if opens > 0 {
			openFound = true
		}

		if openFound && depth <= 0 {
			if i == headerIdx {
				return singleLineBody(text)
			}
			body = body[:len(body)-1] // drop the closing-brace line itself

			return body, true
		}
	}

	return nil, false
}

// singleLineBody handles a compound whose braces open and close on the
// header line itself. An empty body ("if (x) {}") is confidently empty;
// anything else ("if (x) { count++; }") would need statement splitting to
// classify, so it is reported as uncertain and the mutant kept.
func singleLineBody(text string) ([]int, bool) {
	open := strings.Index(text, "{")
	closing := strings.LastIndex(text, "}")
	if open < 0 || closing < open {
		return nil, false
	}
	if strings.TrimSpace(text[open+1:closing]) != "" {
		return nil, false
	}

	return nil, true
}
