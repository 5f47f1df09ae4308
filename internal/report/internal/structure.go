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

package internal

// OutputResult is the data structure for the --report JSON output format.
type OutputResult struct {
	RunID              int          `json:"run_id"`
	RunToken           string       `json:"run_token"`
	Files              []OutputFile `json:"files"`
	SurvivalRate       float64      `json:"survival_rate"`
	MutantsTotal       int          `json:"mutants_total"`
	MutantsKilled      int          `json:"mutants_killed"`
	MutantsSurvived    int          `json:"mutants_survived"`
	MutantsBuildFail   int          `json:"mutants_build_failed"`
	MutantsTimedOut    int          `json:"mutants_timed_out"`
	MutantsSkipped     int          `json:"mutants_skipped"`
	ElapsedTime        float64      `json:"elapsed_time"`
	CategoryStatistics CategoryType `json:"category_statistics"`
}

// OutputFile represents a single source file in the OutputResult.
type OutputFile struct {
	Filename  string     `json:"file_name"`
	Mutations []Mutation `json:"mutations"`
}

// Mutation represents a single mutant's outcome in the OutputResult.
type Mutation struct {
	Category string `json:"category"`
	Operator string `json:"operator"`
	Status   string `json:"status"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// CategoryType tallies accepted mutants per operator category.
type CategoryType struct {
	Arithmetic        int `json:"arithmetic,omitempty"`
	Relational        int `json:"relational,omitempty"`
	Logical           int `json:"logical,omitempty"`
	Bitwise           int `json:"bitwise,omitempty"`
	Constant          int `json:"constant,omitempty"`
	StatementDeletion int `json:"statement_deletion,omitempty"`
	Boundary          int `json:"boundary,omitempty"`
	Security          int `json:"security,omitempty"`
}
