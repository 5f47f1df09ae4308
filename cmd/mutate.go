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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/brunoerg/bcore-mutation/cmd/internal/flags"
	"github.com/brunoerg/bcore-mutation/internal/arid"
	"github.com/brunoerg/bcore-mutation/internal/configuration"
	"github.com/brunoerg/bcore-mutation/internal/coverage"
	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/git"
	"github.com/brunoerg/bcore-mutation/internal/history"
	"github.com/brunoerg/bcore-mutation/internal/log"
	"github.com/brunoerg/bcore-mutation/internal/materializer"
	"github.com/brunoerg/bcore-mutation/internal/mutant"
	"github.com/brunoerg/bcore-mutation/internal/operator"
	"github.com/brunoerg/bcore-mutation/internal/repo"
	"github.com/brunoerg/bcore-mutation/internal/selection"
	"github.com/brunoerg/bcore-mutation/internal/source"
	"github.com/brunoerg/bcore-mutation/internal/storage"
)

type mutateCmd struct {
	cmd *cobra.Command
}

const (
	mutateCommandName = "mutate"

	paramPR            = "pr"
	paramFile          = "file"
	paramRange         = "range"
	paramCov           = "cov"
	paramSkipLines     = "skip-lines"
	paramOneMutant     = "one-mutant"
	paramTestOnly      = "test-only"
	paramOnlySecurity  = "only-security-mutations"
	paramDisableArid   = "disable-ast-filtering"
	paramAddExpertRule = "add-expert-rule"
	paramSQLite        = "sqlite"
	paramRunHistory    = "run-history"
)

// rangeValue implements pflag.Value for a "<lo>,<hi>" inclusive line
// range, the closest idiomatic pflag equivalent of a two-argument flag.
type rangeValue struct {
	lo, hi int
	set    bool
}

func (r *rangeValue) String() string {
	if !r.set {
		return ""
	}

	return fmt.Sprintf("%d,%d", r.lo, r.hi)
}

func (r *rangeValue) Set(s string) error {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("range must be \"<lo>,<hi>\", got %q", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid range lo: %w", err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid range hi: %w", err)
	}
	r.lo, r.hi, r.set = lo, hi, true

	return nil
}

func (*rangeValue) Type() string { return "lo,hi" }

func newMutateCmd(ctx context.Context) (*mutateCmd, error) {
	var rv rangeValue

	c := &cobra.Command{
		Use:   fmt.Sprintf("%s [path]", mutateCommandName),
		Args:  cobra.MaximumNArgs(1),
		Short: "Generate mutants for a C++ repository",
		Long:  mutateLongExplainer(),
		RunE:  runMutate(ctx, &rv),
	}

	c.Flags().VarP(&rv, paramRange, "r", "inclusive line range \"lo,hi\" (requires --file)")

	if err := setMutateFlags(c); err != nil {
		return nil, err
	}

	return &mutateCmd{cmd: c}, nil
}

func mutateLongExplainer() string {
	return heredoc.Doc(`
		Generates mutants over a C++ repository: it narrows the repository down
		to a set of mutable lines (via a PR diff or a single file, optionally
		narrowed by a line range or a coverage trace), applies the mutation operator
		catalog, drops arid candidates, and materializes the survivors as
		self-contained muts-* directories ready for "mutacore analyze".
	`)
}

func setMutateFlags(cmd *cobra.Command) error {
	cmd.Flags().SortFlags = false
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fls := []*flags.Flag{
		{Name: paramPR, CfgKey: configuration.MutatePRKey, Shorthand: "p", DefaultV: "", Usage: "diff against this ref's merge base"},
		{Name: paramFile, CfgKey: configuration.MutateFileKey, Shorthand: "f", DefaultV: "", Usage: "restrict generation to this repository-relative file"},
		{Name: paramCov, CfgKey: configuration.MutateCoverageKey, Shorthand: "c", DefaultV: "", Usage: "LCOV coverage trace restricting generation to covered lines"},
		{Name: paramSkipLines, CfgKey: configuration.MutateSkipLinesKey, DefaultV: "", Usage: "JSON file mapping path to excluded 1-indexed line numbers"},
		{Name: paramOneMutant, CfgKey: configuration.MutateOneMutantKey, DefaultV: false, Usage: "retain only the first Accepted Mutant per (file, line)"},
		{Name: paramTestOnly, CfgKey: configuration.MutateTestOnlyKey, Shorthand: "t", DefaultV: false, Usage: "restrict generation to recognised test files"},
		{Name: paramOnlySecurity, CfgKey: configuration.MutateOnlySecurityKey, Shorthand: "s", DefaultV: false, Usage: "restrict the operator catalog to the security category"},
		{Name: paramDisableArid, CfgKey: configuration.MutateDisableAridKey, DefaultV: false, Usage: "disable the arid node filter"},
		{Name: paramAddExpertRule, CfgKey: configuration.MutateExpertRulesKey, DefaultV: []string(nil), Usage: "additional arid expert rule regex (repeatable)"},
		{Name: paramSQLite, CfgKey: configuration.MutateSQLiteKey, DefaultV: "", Usage: "persist runs/mutants to this SQLite database"},
		{Name: paramRunHistory, CfgKey: configuration.MutateRunHistoryKey, DefaultV: "", Usage: "JSON history ledger used to skip unchanged files"},
	}

	for _, f := range fls {
		if err := flags.Set(cmd, f); err != nil {
			return err
		}
	}

	return nil
}

func runMutate(ctx context.Context, rv *rangeValue) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		log.Infoln("Starting mutant generation...")

		path, _ := os.Getwd()
		if len(args) > 0 {
			path = args[0]
		}
		r, err := repo.Init(path)
		if err != nil {
			return execution.New(execution.InvalidInput, err)
		}

		crit, scope, err := buildCriteria(rv)
		if err != nil {
			return err
		}

		adapter, err := openStorage(configuration.Get[string](configuration.MutateSQLiteKey))
		if err != nil {
			return err
		}
		defer adapter.Close()

		var hist *history.Store
		if hp := configuration.Get[string](configuration.MutateRunHistoryKey); hp != "" {
			hist, err = history.Open(hp)
			if err != nil {
				return err
			}
		}

		return generate(ctx, r, crit, scope, adapter, hist)
	}
}

func buildCriteria(rv *rangeValue) (selection.Criteria, materializer.Scope, error) {
	crit := selection.Criteria{
		PRRef:    configuration.Get[string](configuration.MutatePRKey),
		File:     configuration.Get[string](configuration.MutateFileKey),
		TestOnly: configuration.Get[bool](configuration.MutateTestOnlyKey),
	}
	if rv.set {
		crit.RangeLo, crit.RangeHi = rv.lo, rv.hi
	}

	if cov := configuration.Get[string](configuration.MutateCoverageKey); cov != "" {
		f, err := os.Open(cov)
		if err != nil {
			return selection.Criteria{}, "", execution.New(execution.Io, err)
		}
		defer f.Close()

		profile, err := coverage.Parse(f)
		if err != nil {
			return selection.Criteria{}, "", execution.New(execution.Parse, err).WithLocation(cov, 0, "")
		}
		crit.Coverage = profile
	}

	if skipPath := configuration.Get[string](configuration.MutateSkipLinesKey); skipPath != "" {
		skip, err := loadSkipLines(skipPath)
		if err != nil {
			return selection.Criteria{}, "", err
		}
		crit.SkipLines = skip
	}

	scope := materializer.ScopeRange
	switch {
	case crit.PRRef != "":
		scope = materializer.ScopePR
	case rv.set:
		scope = materializer.ScopeRange
	case crit.File != "":
		scope = materializer.ScopeFile
	}

	return crit, scope, nil
}

func loadSkipLines(path string) (map[string][]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, execution.New(execution.Io, err)
	}

	var m map[string][]int
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, execution.New(execution.Parse, err).WithLocation(path, 0, "")
	}

	return m, nil
}

func openStorage(dsn string) (storage.Adapter, error) {
	if dsn == "" {
		return storage.NoopAdapter{}, nil
	}

	a, err := storage.Open(dsn)
	if err != nil {
		return nil, err
	}

	return a, nil
}

func generate(ctx context.Context, r repo.Repo, crit selection.Criteria, scope materializer.Scope, adapter storage.Adapter, hist *history.Store) error {
	targets, err := selection.Select(r.Root, crit)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		log.Infoln("No mutable lines selected.")

		return nil
	}

	rules := arid.NewRules()
	for i, pattern := range configuration.Get[[]string](configuration.MutateExpertRulesKey) {
		name := fmt.Sprintf("expert-rule-%d", i+1)
		if err := rules.Append(name, pattern); err != nil {
			return execution.New(execution.Operator, err).WithRemediation("fix the --add-expert-rule regex")
		}
	}
	aridFilter := arid.NewFilter(rules)
	aridEnabled := !configuration.Get[bool](configuration.MutateDisableAridKey)

	engine := operator.NewEngine(operator.WithOnlySecurity(configuration.Get[bool](configuration.MutateOnlySecurityKey)))
	oneMutant := configuration.Get[bool](configuration.MutateOneMutantKey)
	operatorIDs := engine.OperatorIDs()

	params := map[string]any{
		"pr":            crit.PRRef,
		"file":          crit.File,
		"test_only":     crit.TestOnly,
		"one_mutant":    oneMutant,
		"only_security": configuration.Get[bool](configuration.MutateOnlySecurityKey),
		"disable_arid":  !aridEnabled,
	}
	if branch, err := git.CurrentBranch(); err != nil {
		log.Infof("could not determine current branch: %s\n", err)
	} else {
		params["branch"] = branch
	}
	runID, err := adapter.BeginRun(params)
	if err != nil {
		return err
	}

	counter := mutant.NewCounter()
	mz := materializer.New(".")

	perFile := map[string][]selection.Target{}
	var order []string
	for _, t := range targets {
		if _, ok := perFile[t.File.RelPath]; !ok {
			order = append(order, t.File.RelPath)
		}
		perFile[t.File.RelPath] = append(perFile[t.File.RelPath], t)
	}

	discovered, err := discoverCandidates(ctx, order, perFile, hist, engine, aridFilter, aridEnabled, oneMutant, operatorIDs)
	if err != nil {
		return err
	}

	now := time.Now()
	var accepted int
	for i, relPath := range order {
		plan := discovered[i]
		if plan.skipped {
			log.Infof("Skipping %s: unchanged since last run.\n", relPath)

			continue
		}

		n, err := acceptCandidates(plan.candidates, scope, counter, mz, adapter, runID)
		if err != nil {
			return err
		}
		accepted += n

		if hist != nil {
			hist.Update(relPath, plan.hash, operatorIDs, n, 0, now)
		}
	}

	if hist != nil {
		if err := hist.Save(now); err != nil {
			return err
		}
	}

	log.Infof("Generated %d accepted mutant(s).\n", accepted)

	return adapter.FinalizeRun(runID, storage.Summary{})
}

// fileCandidate pairs a discovered Candidate with the source.File it was
// read from, so it can be materialized without re-reading the file.
type fileCandidate struct {
	file source.File
	cand mutant.Candidate
}

// filePlan is the outcome of discovering candidates for a single file,
// independent of every other file and of mutant-ID assignment.
type filePlan struct {
	hash       string
	skipped    bool
	candidates []fileCandidate
}

// discoverCandidates runs the CPU-bound, read-only part of generation
// (arid filtering plus operator application) for every file in order
// concurrently, one errgroup goroutine per file, bounded by
// generation.workers (GOMAXPROCS when unset). Workers are read-only on
// the source tree and share no mutable state. Mutant-ID assignment is
// deliberately kept out of this fan-out and done afterwards in file
// order, so two runs over the same inputs produce byte-identical mutant
// trees regardless of goroutine scheduling.
func discoverCandidates(
	ctx context.Context,
	order []string,
	perFile map[string][]selection.Target,
	hist *history.Store,
	engine *operator.Engine,
	aridFilter *arid.Filter,
	aridEnabled bool,
	oneMutant bool,
	operatorIDs []string,
) ([]filePlan, error) {
	plans := make([]filePlan, len(order))

	workers := configuration.Get[int](configuration.GenerationWorkersKey)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, relPath := range order {
		i, relPath := i, relPath
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fileTargets := perFile[relPath]
			hash := fileContentHash(fileTargets[0].File)

			if hist != nil && hist.Unchanged(relPath, hash, operatorIDs) {
				plans[i] = filePlan{hash: hash, skipped: true}

				return nil
			}

			plans[i] = filePlan{
				hash:       hash,
				candidates: discoverFileCandidates(fileTargets, engine, aridFilter, aridEnabled, oneMutant),
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return plans, nil
}

// discoverFileCandidates is the pure, per-file candidate-discovery step:
// arid filtering, one-mutant-per-line truncation, and operator
// application, with no access to the run-wide mutant counter,
// materializer, or storage adapter, so it is safe to run concurrently
// across files.
func discoverFileCandidates(
	targets []selection.Target,
	engine *operator.Engine,
	aridFilter *arid.Filter,
	aridEnabled bool,
	oneMutant bool,
) []fileCandidate {
	seenLine := map[int]bool{}
	var out []fileCandidate

	for _, t := range targets {
		if oneMutant && seenLine[t.Line.Number] {
			continue
		}

		if aridEnabled && aridFilter.IsArid(t.File.Lines, t.Line.Number-1) {
			continue
		}

		for _, cand := range engine.Generate(t.File.RelPath, t.Line) {
			out = append(out, fileCandidate{file: t.File, cand: cand})
			seenLine[t.Line.Number] = true

			if oneMutant {
				break
			}
		}
	}

	return out
}

// acceptCandidates assigns mutant IDs and materializes each candidate for
// one file, in discovery order. This stays single-threaded across the
// whole run (called once per file, in the deterministic order generate
// iterates), so mutant-ID assignment and directory naming never depend
// on goroutine scheduling.
func acceptCandidates(
	candidates []fileCandidate,
	scope materializer.Scope,
	counter *mutant.Counter,
	mz *materializer.Materializer,
	adapter storage.Adapter,
	runID int,
) (int, error) {
	var accepted int

	for _, fc := range candidates {
		m, ok := counter.Accept(runID, fc.cand)
		if !ok {
			continue
		}

		dir, err := mz.Write(fc.file, scope, m)
		if err != nil {
			return accepted, err
		}
		m.Dir = dir

		if err := adapter.RecordMutant(runID, m); err != nil {
			return accepted, err
		}

		accepted++
	}

	return accepted, nil
}

func fileContentHash(f source.File) string {
	var b strings.Builder
	for _, ln := range f.Lines {
		b.WriteString(ln.Text)
		b.WriteByte('\n')
	}

	return history.HashContent(b.String())
}
