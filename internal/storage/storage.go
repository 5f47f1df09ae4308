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

// Package storage persists runs, mutants, and outcomes through a narrow
// interface. The SQLite-backed implementation is optional and disabled
// by default; when disabled, a no-op Adapter is used instead.
package storage

import (
	"github.com/brunoerg/bcore-mutation/internal/mutant"
)

// Adapter is the narrow persistence interface the generation and
// analysis phases depend on. Implementations must be transactional per
// call.
type Adapter interface {
	// BeginRun records a new Run and returns its run_id.
	BeginRun(params map[string]any) (int, error)
	// RecordMutant persists an Accepted Mutant under its run.
	RecordMutant(runID int, m mutant.Mutant) error
	// RecordOutcome persists the Outcome of analysing a mutant.
	RecordOutcome(runID int, o mutant.Outcome) error
	// FinalizeRun records the closing summary of a run (totals, survival
	// rate).
	FinalizeRun(runID int, summary Summary) error
	// Close releases any resources held by the adapter. Idempotent.
	Close() error
}

// Summary is the aggregate recorded when a run is finalized.
type Summary struct {
	Killed       int
	Survived     int
	BuildFailed  int
	TimedOut     int
	Skipped      int
	SurvivalRate float64
}

// NoopAdapter implements Adapter as a set of no-ops, used when storage is
// disabled.
type NoopAdapter struct{}

// BeginRun always returns run_id 1 without persisting anything.
func (NoopAdapter) BeginRun(map[string]any) (int, error) { return 1, nil }

// RecordMutant is a no-op.
func (NoopAdapter) RecordMutant(int, mutant.Mutant) error { return nil }

// RecordOutcome is a no-op.
func (NoopAdapter) RecordOutcome(int, mutant.Outcome) error { return nil }

// FinalizeRun is a no-op.
func (NoopAdapter) FinalizeRun(int, Summary) error { return nil }

// Close is a no-op.
func (NoopAdapter) Close() error { return nil }
