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

// Package report formats and prints the outcome of an analysis run, and
// optionally writes a machine-readable JSON report.
package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hako/durafmt"

	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/log"
	"github.com/brunoerg/bcore-mutation/internal/mutant"
	"github.com/brunoerg/bcore-mutation/internal/report/internal"
)

var (
	fgRed      = color.New(color.FgRed).SprintFunc()
	fgGreen    = color.New(color.FgGreen).SprintFunc()
	fgHiGreen  = color.New(color.FgHiGreen).SprintFunc()
	fgHiBlack  = color.New(color.FgHiBlack).SprintFunc()
	fgHiYellow = color.New(color.FgYellow).SprintFunc()
)

// Finding pairs an Accepted Mutant with its analysis Outcome.
type Finding struct {
	Mutant  mutant.Mutant
	Outcome mutant.Outcome
}

// Results is the full set of findings from one analysis run.
type Results struct {
	RunID    int
	Findings []Finding
	Elapsed  time.Duration
}

type reportStatus struct {
	files map[string][]internal.Mutation

	elapsed  *durafmt.Durafmt
	runID    int
	runToken string

	killed      int
	survived    int
	buildFailed int
	timedOut    int
	skipped     int

	categoryStatistics internal.CategoryType

	survivalRate float64
}

func newReport(results Results) (*reportStatus, bool) {
	if len(results.Findings) == 0 {
		return nil, false
	}

	rep := &reportStatus{
		runID:    results.RunID,
		runToken: uuid.NewString(),
		elapsed:  durafmt.Parse(results.Elapsed).LimitFirstN(2),
	}
	rep.files = make(map[string][]internal.Mutation)

	for _, f := range results.Findings {
		m := f.Mutant
		rep.files[m.File] = append(rep.files[m.File], internal.Mutation{
			Category: m.Category.String(),
			Operator: m.OperatorID,
			Status:   f.Outcome.Status.String(),
			Line:     m.Line,
			Column:   m.ColStart,
		})

		reportOutcomeStatus(f.Outcome, rep)
		reportCategory(m.Category, rep)
	}

	denom := rep.survived + rep.killed + rep.timedOut
	if denom > 0 {
		rep.survivalRate = float64(rep.survived) / float64(denom)
	}

	return rep, true
}

func reportOutcomeStatus(o mutant.Outcome, rep *reportStatus) {
	switch o.Status {
	case mutant.Killed:
		rep.killed++
	case mutant.Survived:
		rep.survived++
	case mutant.BuildFailed:
		rep.buildFailed++
	case mutant.TimedOut:
		rep.timedOut++
	case mutant.Skipped:
		rep.skipped++
	}
}

func reportCategory(c mutant.Category, rep *reportStatus) {
	switch c {
	case mutant.Arithmetic:
		rep.categoryStatistics.Arithmetic++
	case mutant.Relational:
		rep.categoryStatistics.Relational++
	case mutant.Logical:
		rep.categoryStatistics.Logical++
	case mutant.Bitwise:
		rep.categoryStatistics.Bitwise++
	case mutant.Constant:
		rep.categoryStatistics.Constant++
	case mutant.StatementDeletion:
		rep.categoryStatistics.StatementDeletion++
	case mutant.Boundary:
		rep.categoryStatistics.Boundary++
	case mutant.Security:
		rep.categoryStatistics.Security++
	}
}

func (r *reportStatus) reportFindings() {
	killed := fgHiGreen(r.killed)
	survived := fgRed(r.survived)
	timedOut := fgGreen(r.timedOut)
	buildFailed := fgHiBlack(r.buildFailed)
	skipped := fgHiYellow(r.skipped)
	total := r.killed + r.survived + r.buildFailed + r.timedOut + r.skipped

	log.Infoln("")
	log.Infof("Run token: %s\n", r.runToken)
	log.Infof("Analysis completed in %s\n", r.elapsed.String())
	log.Infof("Mutants evaluated: %s\n", humanize.Comma(int64(total)))
	log.Infof("Killed: %s, Survived: %s, Build failed: %s\n", killed, survived, buildFailed)
	log.Infof("Timed out: %s, Skipped: %s\n", timedOut, skipped)
	log.Infof("Survival rate: %.2f%%\n", r.survivalRate*100)
}

func (r *reportStatus) writeOutput(path string) {
	if path == "" {
		return
	}

	files := make([]internal.OutputFile, 0, len(r.files))
	for fName, mutations := range r.files {
		files = append(files, internal.OutputFile{Filename: fName, Mutations: mutations})
	}

	result := internal.OutputResult{
		RunID:              r.runID,
		RunToken:           r.runToken,
		SurvivalRate:       r.survivalRate,
		MutantsTotal:       r.killed + r.survived + r.buildFailed + r.timedOut + r.skipped,
		MutantsKilled:      r.killed,
		MutantsSurvived:    r.survived,
		MutantsBuildFail:   r.buildFailed,
		MutantsTimedOut:    r.timedOut,
		MutantsSkipped:     r.skipped,
		ElapsedTime:        r.elapsed.Duration().Seconds(),
		CategoryStatistics: r.categoryStatistics,
		Files:              files,
	}

	jsonResult, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Errorf("impossible to marshal report: %s\n", err)

		return
	}

	f, err := os.Create(path)
	if err != nil {
		log.Errorf("impossible to write file: %s\n", err)

		return
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if _, err := f.Write(jsonResult); err != nil {
		log.Errorf("impossible to write file: %s\n", err)
	}
}

func (r *reportStatus) assess(threshold float64) error {
	if threshold < 0 {
		return nil
	}
	if r.survivalRate > threshold {
		return &execution.ThresholdExceeded{SurvivalRate: r.survivalRate, Threshold: threshold}
	}

	return nil
}

// Do prints the terminal summary for results, writes a JSON report to
// outputPath when non-empty, and returns an *execution.ThresholdExceeded
// when the survival rate exceeds threshold. A threshold of zero is a
// valid gate (any survivor fails); a negative threshold disables the
// check entirely. This function uses the log package, so log.Init must
// be called before Do.
func Do(results Results, outputPath string, threshold float64) error {
	rep, ok := newReport(results)
	if !ok {
		log.Infoln("\nNo mutants to report.")

		return nil
	}

	rep.reportFindings()
	rep.writeOutput(outputPath)

	return rep.assess(threshold)
}

// Mutant logs a single finding's status, category and position.
// This function uses the log package, so log.Init must be called before
// Mutant.
func Mutant(f Finding) {
	s := f.Outcome.Status
	status := s.String()
	switch s {
	case mutant.Killed:
		status = fgHiGreen(status)
	case mutant.Survived:
		status = fgRed(status)
	case mutant.TimedOut:
		status = fgGreen(status)
	case mutant.BuildFailed:
		status = fgHiBlack(status)
	case mutant.Skipped:
		status = fgHiYellow(status)
	}
	log.Infof("%s%s %s at %s:%d:%d\n", padding(s), status, f.Mutant.OperatorID, f.Mutant.File, f.Mutant.Line, f.Mutant.ColStart)
}

func padding(s mutant.Status) string {
	var pad string
	padLen := 13 - len(s.String())
	for i := 0; i < padLen; i++ {
		pad += " "
	}

	return pad
}
