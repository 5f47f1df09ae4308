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

package operator

import (
	"regexp"

	"github.com/brunoerg/bcore-mutation/internal/mutant"
)

// Rewrite is one concrete replacement an Operator proposes for a matched
// span of a line.
type Rewrite struct {
	ColStart int
	ColEnd   int
	Mutated  string
}

// Operator is a named, stateless, pure rewrite rule over a single line of
// text. Operators never mutate their input; Find only reports spans and
// candidate replacement text, leaving substitution to the engine.
type Operator interface {
	ID() string
	Category() mutant.Category
	// Find returns every match of this operator's predicate against
	// line, each carrying the distinct rewrites it proposes for that
	// span.
	Find(line string) []Match
}

// Match is a single span of a line matched by an Operator's predicate,
// together with the rewrites proposed for it.
type Match struct {
	ColStart int
	ColEnd   int
	Original string
	Rewrites []string
}

// regexOperator implements Operator for the common case: a regexp whose
// capture group 1 is the text to replace, and a table mapping matched
// text to the set of distinct replacements.
type regexOperator struct {
	id       string
	category mutant.Category
	re       *regexp.Regexp
	rewrite  func(matched string) []string
}

func (o regexOperator) ID() string                { return o.id }
func (o regexOperator) Category() mutant.Category { return o.category }

func (o regexOperator) Find(line string) []Match {
	locs := o.re.FindAllStringSubmatchIndex(line, -1)
	if locs == nil {
		return nil
	}

	var matches []Match
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		matched := line[start:end]
		rewrites := o.rewrite(matched)
		if len(rewrites) == 0 {
			continue
		}
		matches = append(matches, Match{
			ColStart: start,
			ColEnd:   end,
			Original: matched,
			Rewrites: rewrites,
		})
	}

	return matches
}

// newSwap builds a regexOperator that replaces any of the literal tokens
// in "from" with every entry in "to" other than itself, using re to find
// match boundaries.
func newSwap(id string, cat mutant.Category, re *regexp.Regexp, table map[string][]string) Operator {
	return regexOperator{
		id:       id,
		category: cat,
		re:       re,
		rewrite: func(matched string) []string {
			return table[matched]
		},
	}
}
