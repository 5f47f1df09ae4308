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

// Package mutant models the mutation-testing data model shared by
// generation and analysis: Candidate and Accepted mutants, run
// bookkeeping, and the outcome lifecycle.
package mutant

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Category is the broad family an Operator belongs to.
type Category int

// The mutation categories named in the operator catalog.
const (
	Arithmetic Category = iota
	Relational
	Logical
	Bitwise
	Constant
	StatementDeletion
	Boundary
	Security
)

func (c Category) String() string {
	switch c {
	case Arithmetic:
		return "arithmetic"
	case Relational:
		return "relational"
	case Logical:
		return "logical"
	case Bitwise:
		return "bitwise"
	case Constant:
		return "constant"
	case StatementDeletion:
		return "statement_deletion"
	case Boundary:
		return "boundary"
	case Security:
		return "security"
	default:
		return "unknown"
	}
}

// ParseCategory reverses Category.String, used to rebuild a Mutant from
// its materialized mutation.json sidecar. Unknown strings map to
// Arithmetic's zero value.
func ParseCategory(s string) Category {
	switch s {
	case "relational":
		return Relational
	case "logical":
		return Logical
	case "bitwise":
		return Bitwise
	case "constant":
		return Constant
	case "statement_deletion":
		return StatementDeletion
	case "boundary":
		return Boundary
	case "security":
		return Security
	default:
		return Arithmetic
	}
}

// Candidate is a pre-filter mutation proposal produced by the operator
// engine for a single source line. Its identity, per the data model, is
// the 5-tuple (File, Line, ColumnSpan, OperatorID, Mutated); duplicate
// Candidates sharing that tuple are coalesced by the caller before
// acceptance.
type Candidate struct {
	File       string
	Line       int
	ColStart   int
	ColEnd     int
	OperatorID string
	Category   Category
	Original   string
	Mutated    string
}

// key returns the identity tuple used for in-run deduplication.
func (c Candidate) key() string {
	return fmt.Sprintf("%s:%d:%d-%d:%s:%s", c.File, c.Line, c.ColStart, c.ColEnd, c.OperatorID, c.Mutated)
}

// Status is the final disposition assigned to an Accepted Mutant during
// analysis.
type Status int

// The outcome statuses named by the analysis design.
const (
	Skipped Status = iota
	Killed
	Survived
	BuildFailed
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case BuildFailed:
		return "build_failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Mutant is an Accepted Mutant: a Candidate that survived the arid filter
// and one-mutant-per-line dedup, with a stable identity assigned.
type Mutant struct {
	Candidate
	RunID      int
	MutantID   int
	ContentSum string
	Dir        string
}

// Outcome is the result of analysing a single Mutant.
type Outcome struct {
	RunID       int
	MutantID    int
	Status      Status
	Elapsed     time.Duration
	LogExcerpt  string
	FailingTest string
}

// Counter assigns monotonic, run-scoped mutant IDs plus a reproducible
// content hash, guarded against concurrent generation.
type Counter struct {
	mu   sync.Mutex
	next int
	seen map[string]bool
}

// NewCounter returns a Counter ready to accept Candidates, assigning IDs
// from 1.
func NewCounter() *Counter {
	return &Counter{next: 1, seen: map[string]bool{}}
}

// Accept assigns the Candidate a Mutant identity, or returns ok=false if
// an identical Candidate (by identity tuple) was already accepted in this
// run.
func (c *Counter) Accept(runID int, cand Candidate) (Mutant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cand.key()
	if c.seen[k] {
		return Mutant{}, false
	}
	c.seen[k] = true

	id := c.next
	c.next++

	sum := sha256.Sum256([]byte(k))

	return Mutant{
		Candidate:  cand,
		RunID:      runID,
		MutantID:   id,
		ContentSum: hex.EncodeToString(sum[:])[:16],
	}, true
}

// Run is a top-level mutation-generation session.
type Run struct {
	RunID         int
	StartedAt     time.Time
	Params        map[string]any
	Operators     []string
	AcceptedTotal int
}
