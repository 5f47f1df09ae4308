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
	"sort"

	"github.com/brunoerg/bcore-mutation/internal/mutant"
	"github.com/brunoerg/bcore-mutation/internal/source"
)

// Engine applies a fixed catalog of Operators to source lines, honouring
// the applicability guards and emission rules of the mutation design.
type Engine struct {
	catalog      []Operator
	onlySecurity bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnlySecurity restricts the active catalog to the security
// category.
func WithOnlySecurity(v bool) Option {
	return func(e *Engine) { e.onlySecurity = v }
}

// NewEngine builds an Engine over the built-in Catalog, applying opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{catalog: Catalog}
	for _, opt := range opts {
		opt(e)
	}
	if e.onlySecurity {
		e.catalog = SecurityOnly(e.catalog)
	}

	return e
}

// OperatorIDs returns the IDs of the catalog this Engine is configured
// to run, in catalog order. Used to key the generation history ledger so
// a change in --only-security-mutations invalidates cached skips.
func (e *Engine) OperatorIDs() []string {
	ids := make([]string, len(e.catalog))
	for i, op := range e.catalog {
		ids[i] = op.ID()
	}

	return ids
}

// Generate produces every Candidate for a single Line of file, in
// (column, operator_id) order. A Candidate is only emitted for spans
// that lie entirely within code per the tokenizer guard.
func (e *Engine) Generate(file string, line source.Line) []mutant.Candidate {
	if line.Trivial() {
		return nil
	}

	var out []mutant.Candidate
	for _, op := range e.catalog {
		for _, m := range op.Find(line.Text) {
			if !CodeOnly(line.Text, m.ColStart, m.ColEnd) {
				continue
			}
			for _, rewrite := range m.Rewrites {
				if rewrite == m.Original {
					continue
				}
				mutated := line.Text[:m.ColStart] + rewrite + line.Text[m.ColEnd:]
				out = append(out, mutant.Candidate{
					File:       file,
					Line:       line.Number,
					ColStart:   m.ColStart,
					ColEnd:     m.ColEnd,
					OperatorID: op.ID(),
					Category:   op.Category(),
					Original:   line.Text,
					Mutated:    mutated,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ColStart != out[j].ColStart {
			return out[i].ColStart < out[j].ColStart
		}

		return out[i].OperatorID < out[j].OperatorID
	})

	return out
}
