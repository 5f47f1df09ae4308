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

// Package orchestrator is the parallel analysis orchestrator: a bounded
// worker pool that builds and tests one mutant at a time per worker,
// classifies the result, and aggregates a survival rate.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/log"
	"github.com/brunoerg/bcore-mutation/internal/materializer"
	"github.com/brunoerg/bcore-mutation/internal/mutant"
	"github.com/brunoerg/bcore-mutation/internal/orchestrator/workdir"
	"github.com/brunoerg/bcore-mutation/internal/orchestrator/workerpool"
	"github.com/brunoerg/bcore-mutation/internal/report"
	"github.com/brunoerg/bcore-mutation/internal/storage"
)

// Options configures a single analysis run.
type Options struct {
	// SourceRoot is the clean checkout the orchestrator overlays mutant
	// files onto.
	SourceRoot string
	// WorkRoot is the scratch directory holding per-worker working
	// copies.
	WorkRoot string
	// Command is the build+test command template, e.g.
	// {"make", "check"} or {"./run-tests.sh"}.
	Command []string
	// Jobs is the worker pool size; 0 falls back to runtime.NumCPU().
	Jobs int
	// Timeout bounds a single mutant's build+test invocation.
	Timeout time.Duration
	// TimedOutCountsAsKilled folds timed_out into the Killed count of the
	// Summary. The survival rate counts timed_out mutants in its
	// denominator either way.
	TimedOutCountsAsKilled bool
	// SurvivalThreshold is the maximum tolerated survival rate in [0,1].
	SurvivalThreshold float64
	// Storage persists mutants/outcomes; storage.NoopAdapter{} disables
	// persistence.
	Storage storage.Adapter
	RunID   int
	// Logger streams each finding to the terminal as its analysis
	// completes. The zero value logs every status.
	Logger report.FindingLogger
}

// Orchestrator runs the materialized mutants found under the directory
// passed to Run through the configured worker pool.
type Orchestrator struct {
	opts Options
}

// New returns an Orchestrator configured by opts.
func New(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts}
}

// MutantUnit pairs a materialized mutant directory with its metadata,
// the unit of work submitted to the pool.
type MutantUnit struct {
	Dir  string
	Meta materializer.Metadata
}

// Mutant rebuilds the Accepted Mutant record from the unit's sidecar
// metadata, so reporting can show file/line/operator context instead of
// bare outcome statuses.
func (u MutantUnit) Mutant() mutant.Mutant {
	return mutant.Mutant{
		Candidate: mutant.Candidate{
			File:       u.Meta.File,
			Line:       u.Meta.Line,
			ColStart:   u.Meta.ColStart,
			ColEnd:     u.Meta.ColEnd,
			OperatorID: u.Meta.OperatorID,
			Category:   mutant.ParseCategory(u.Meta.Category),
			Original:   u.Meta.Original,
			Mutated:    u.Meta.Mutated,
		},
		RunID:      u.Meta.RunID,
		MutantID:   u.Meta.MutantID,
		ContentSum: u.Meta.ContentSum,
		Dir:        u.Dir,
	}
}

// Discover loads the mutation.json sidecar for every muts-* directory
// directly under dir.
func Discover(dir string) ([]MutantUnit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, execution.New(execution.Io, err)
	}

	var units []MutantUnit
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "muts-") {
			continue
		}
		mdPath := filepath.Join(dir, e.Name(), "mutation.json")
		data, err := os.ReadFile(mdPath)
		if err != nil {
			return nil, execution.New(execution.Io, err).WithLocation(mdPath, 0, "")
		}
		var md materializer.Metadata
		if err := json.Unmarshal(data, &md); err != nil {
			return nil, execution.New(execution.Parse, err).WithLocation(mdPath, 0, "")
		}
		units = append(units, MutantUnit{Dir: filepath.Join(dir, e.Name()), Meta: md})
	}

	sort.Slice(units, func(i, j int) bool {
		if units[i].Meta.File != units[j].Meta.File {
			return units[i].Meta.File < units[j].Meta.File
		}
		if units[i].Meta.Line != units[j].Meta.Line {
			return units[i].Meta.Line < units[j].Meta.Line
		}

		return units[i].Meta.MutantID < units[j].Meta.MutantID
	})

	return units, nil
}

// Result is the outcome of analysing every mutant in a run.
type Result struct {
	Units    []MutantUnit
	Outcomes []mutant.Outcome
	Summary  storage.Summary
}

// Run schedules every unit found in mutantDirRoot onto the bounded pool,
// blocking until all are processed or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, mutantDirRoot string) (Result, error) {
	units, err := Discover(mutantDirRoot)
	if err != nil {
		return Result{}, err
	}

	dealer := workdir.NewCachedDealer(o.opts.WorkRoot, o.opts.SourceRoot)
	defer dealer.Clean()

	pool := workerpool.Initialize("analysis", o.opts.Jobs)
	pool.Start()

	var (
		mu       sync.Mutex
		outcomes []mutant.Outcome
	)

	var wg sync.WaitGroup
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		for _, u := range units {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			wg.Add(1)
			u := u
			pool.AppendJob(&mutantJob{
				ctx:     ctx,
				unit:    u,
				opts:    o.opts,
				dealer:  dealer,
				wg:      &wg,
				collect: func(oc mutant.Outcome) {
					mu.Lock()
					outcomes = append(outcomes, oc)
					mu.Unlock()
					o.opts.Logger.Mutant(report.Finding{Mutant: u.Mutant(), Outcome: oc})
					if o.opts.Storage != nil {
						if err := o.opts.Storage.RecordOutcome(o.opts.RunID, oc); err != nil {
							log.Errorf("could not record outcome for mutant %d: %s\n", oc.MutantID, err)
						}
					}
				},
			})
		}

		return nil
	})

	waitDone := make(chan struct{})
	go func() {
		// wg only counts jobs already appended, so wait for the producer
		// to finish enqueuing before waiting on the jobs themselves.
		_ = group.Wait()
		wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		<-waitDone
	}
	pool.Stop()

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return Result{}, err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].MutantID < outcomes[j].MutantID })

	summary := aggregate(outcomes, o.opts.TimedOutCountsAsKilled)

	return Result{Units: units, Outcomes: outcomes, Summary: summary}, nil
}

// aggregate computes the survival-rate summary. The denominator is
// always survived+killed+timed_out, with build_failed and skipped
// excluded but still reported; when timedOutAsKilled is set, timed_out
// mutants are additionally folded into the Killed bucket for reporting.
func aggregate(outcomes []mutant.Outcome, timedOutAsKilled bool) storage.Summary {
	var s storage.Summary
	for _, o := range outcomes {
		switch o.Status {
		case mutant.Killed:
			s.Killed++
		case mutant.Survived:
			s.Survived++
		case mutant.BuildFailed:
			s.BuildFailed++
		case mutant.TimedOut:
			s.TimedOut++
		case mutant.Skipped:
			s.Skipped++
		}
	}

	denom := s.Survived + s.Killed + s.TimedOut
	if denom > 0 {
		s.SurvivalRate = float64(s.Survived) / float64(denom)
	}

	if timedOutAsKilled {
		s.Killed += s.TimedOut
		s.TimedOut = 0
	}

	return s
}

// mutantJob is the workerpool.Job implementation for a single mutant
// build+test cycle.
type mutantJob struct {
	ctx     context.Context
	unit    MutantUnit
	opts    Options
	dealer  *workdir.CachedDealer
	wg      *sync.WaitGroup
	collect func(mutant.Outcome)
}

func (j *mutantJob) Start(w *workerpool.Worker) {
	defer j.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.Name, w.ID)
	root, err := j.dealer.Get(workerName)
	if err != nil {
		log.Errorf("could not acquire working copy for %s: %s\n", workerName, err)
		j.collect(mutant.Outcome{MutantID: j.unit.Meta.MutantID, Status: mutant.Skipped})

		return
	}

	if err := j.dealer.Overlay(root, j.unit.Dir); err != nil {
		log.Errorf("could not overlay mutant %d: %s\n", j.unit.Meta.MutantID, err)
		j.collect(mutant.Outcome{MutantID: j.unit.Meta.MutantID, Status: mutant.Skipped})

		return
	}

	start := time.Now()
	status, excerpt := j.runCommand(j.ctx, root)

	oc := mutant.Outcome{
		MutantID:   j.unit.Meta.MutantID,
		Status:     status,
		Elapsed:    time.Since(start),
		LogExcerpt: excerpt,
	}
	if status == mutant.Killed {
		oc.FailingTest = failingTest(excerpt)
	}
	j.collect(oc)
}

// failingTestRes match the failure markers of the test harnesses a
// build+test command template typically drives: Boost.Test unit suites,
// ctest, and the functional test runner.
var failingTestRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)error in "([^"]+)"`),
	regexp.MustCompile(`(?m)^\s*\d+\s*-\s*(\S+)\s+\(\w*Failed\w*\)`),
	regexp.MustCompile(`(?m)^(\S+\.py)[^\n]*failed`),
}

// failingTest scans a build/test log excerpt for the name of the test
// that caught the mutation. Returns "" when no harness marker is
// recognised.
func failingTest(out string) string {
	for _, re := range failingTestRes {
		if m := re.FindStringSubmatch(out); m != nil {
			return m[1]
		}
	}

	return ""
}

const logExcerptLimit = 4096

func (j *mutantJob) runCommand(parent context.Context, dir string) (mutant.Status, string) {
	if len(j.opts.Command) == 0 {
		return mutant.Skipped, "no build/test command configured"
	}

	ctx, cancel := context.WithTimeout(parent, j.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, j.opts.Command[0], j.opts.Command[1:]...)
	cmd.Dir = dir
	setupProcessGroup(cmd)

	out, err := cmd.CombinedOutput()
	excerpt := truncate(string(out), logExcerptLimit)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		_ = killProcessGroup(cmd)

		return mutant.TimedOut, excerpt
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		_ = killProcessGroup(cmd)

		return mutant.Skipped, excerpt
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitStatus(exitErr.ExitCode()), excerpt
	}
	if err != nil {
		return mutant.BuildFailed, excerpt
	}

	return mutant.Survived, excerpt
}

// exitStatus maps the build+test command's exit code to a classification.
// Exit code 2 is the convention (mirrored from the Go toolchain's own
// "invalid arguments" vs "build failed" split) the project's command
// template is expected to use for "build failed, tests never ran";
// anything else non-zero means the tests ran and caught the mutation.
func exitStatus(code int) mutant.Status {
	if code == buildFailedExitCode {
		return mutant.BuildFailed
	}

	return mutant.Killed
}

const buildFailedExitCode = 2

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
