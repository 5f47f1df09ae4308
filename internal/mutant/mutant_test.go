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

package mutant

import "testing"

func TestCounter_AssignsMonotonicIDs(t *testing.T) {
	c := NewCounter()

	c1 := Candidate{File: "a.cpp", Line: 1, ColStart: 0, ColEnd: 1, OperatorID: "arith.swap", Mutated: "a - b"}
	c2 := Candidate{File: "a.cpp", Line: 2, ColStart: 0, ColEnd: 1, OperatorID: "arith.swap", Mutated: "a - b"}

	m1, ok := c.Accept(1, c1)
	if !ok || m1.MutantID != 1 {
		t.Fatalf("expected first accept to assign id 1, got %+v ok=%v", m1, ok)
	}

	m2, ok := c.Accept(1, c2)
	if !ok || m2.MutantID != 2 {
		t.Fatalf("expected second accept to assign id 2, got %+v ok=%v", m2, ok)
	}
}

func TestCounter_DedupesIdenticalCandidates(t *testing.T) {
	c := NewCounter()
	cand := Candidate{File: "a.cpp", Line: 1, ColStart: 0, ColEnd: 1, OperatorID: "arith.swap", Mutated: "a - b"}

	if _, ok := c.Accept(1, cand); !ok {
		t.Fatalf("expected the first accept to succeed")
	}
	if _, ok := c.Accept(1, cand); ok {
		t.Errorf("expected a duplicate identity tuple to be rejected")
	}
}

func TestCounter_ContentSumIsStableForIdenticalInput(t *testing.T) {
	cand := Candidate{File: "a.cpp", Line: 1, ColStart: 0, ColEnd: 1, OperatorID: "arith.swap", Mutated: "a - b"}

	c1 := NewCounter()
	m1, _ := c1.Accept(1, cand)

	c2 := NewCounter()
	m2, _ := c2.Accept(1, cand)

	if m1.ContentSum != m2.ContentSum {
		t.Errorf("expected identical candidates to hash to the same content sum")
	}
}

func TestCategoryStringRoundTrip(t *testing.T) {
	categories := []Category{Arithmetic, Relational, Logical, Bitwise, Constant, StatementDeletion, Boundary, Security}
	for _, c := range categories {
		if got := ParseCategory(c.String()); got != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), got, c)
		}
	}
}

func TestStatusString(t *testing.T) {
	testCases := map[Status]string{
		Skipped:     "skipped",
		Killed:      "killed",
		Survived:    "survived",
		BuildFailed: "build_failed",
		TimedOut:    "timed_out",
	}
	for s, want := range testCases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
