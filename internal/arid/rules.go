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

// Package arid implements the recursive arid-node filter: a
// conservative, parser-free approximation of Google's AST-based rule
// that suppresses mutants landing in untestable statements.
package arid

import "regexp"

// Rule is a named expert predicate over a single line of source.
type Rule struct {
	Name string
	re   *regexp.Regexp
}

// Match reports whether line satisfies the rule.
func (r Rule) Match(line string) bool {
	return r.re.MatchString(line)
}

// BuiltinRules is the ordered, built-in catalog of expert rules. Order
// only matters for reporting which rule fired first; membership is what
// drives the predicate.
var BuiltinRules = []Rule{
	{Name: "container-size-hint", re: regexp.MustCompile(`\b(?:reserve|resize)\s*\(`)},
	{Name: "logging-call", re: regexp.MustCompile(`\b(?:LogPrintf|LogPrint|strprintf)\s*\(|std::cout|std::cerr`)},
	{Name: "timing", re: regexp.MustCompile(`std::chrono::\w*_clock|\w*_time\b|\w*_duration\b`)},
	{Name: "debug-scaffolding", re: regexp.MustCompile(`\bDEBUG_\w+|\w*_debug\b`)},
	{Name: "fuzzing-guard", re: regexp.MustCompile(`\bG_FUZZING\b`)},
	{Name: "raw-allocation", re: regexp.MustCompile(`\b(?:malloc|free|calloc|realloc)\s*\(`)},
	{Name: "thread-primitive", re: regexp.MustCompile(`\b(?:std::thread|std::mutex|std::lock_guard|std::unique_lock|std::condition_variable)\b`)},
	{Name: "comment-or-directive-only", re: regexp.MustCompile(`^\s*(?://|/\*|#|\})`)},
	{Name: "namespace-declaration", re: regexp.MustCompile(`^\s*namespace\s+\w*\s*\{?\s*$`)},
}

// Rules is the active rule set: BuiltinRules plus any appended at
// invocation time via --add-expert-rule. User rules are
// membership-equivalent to built-ins but always ordered after them.
type Rules struct {
	rules []Rule
}

// NewRules returns a Rules seeded with BuiltinRules.
func NewRules() *Rules {
	cp := make([]Rule, len(BuiltinRules))
	copy(cp, BuiltinRules)

	return &Rules{rules: cp}
}

// Append adds a user-supplied rule, compiled from a raw regex pattern.
func (r *Rules) Append(name, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.rules = append(r.rules, Rule{Name: name, re: re})

	return nil
}

// Expert reports whether any rule matches line, and if so, which one
// fired first.
func (r *Rules) Expert(line string) (bool, string) {
	for _, rule := range r.rules {
		if rule.Match(line) {
			return true, rule.Name
		}
	}

	return false, ""
}
