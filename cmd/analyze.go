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
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/brunoerg/bcore-mutation/cmd/internal/flags"
	"github.com/brunoerg/bcore-mutation/internal/configuration"
	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/orchestrator"
	"github.com/brunoerg/bcore-mutation/internal/report"
)

type analyzeCmd struct {
	cmd *cobra.Command
}

const (
	analyzeCommandName = "analyze"

	paramFolder         = "folder"
	paramCommand        = "command"
	paramJobs           = "jobs"
	paramTimeout        = "timeout"
	paramThreshold      = "survival-threshold"
	paramSQLiteRun      = "sqlite"
	paramRunID          = "run-id"
	paramTimeoutKills   = "timeout-kills"
	paramReport         = "report"
	paramOutputStatuses = "output-statuses"

	defaultTimeoutSeconds = 1000
	defaultThreshold      = 0.75
)

func newAnalyzeCmd(ctx context.Context) (*analyzeCmd, error) {
	c := &cobra.Command{
		Use:   analyzeCommandName,
		Short: "Build and test every materialized mutant, and report the survival rate",
		Long:  analyzeLongExplainer(),
		RunE:  runAnalyze(ctx),
	}

	if err := setAnalyzeFlags(c); err != nil {
		return nil, err
	}

	return &analyzeCmd{cmd: c}, nil
}

func analyzeLongExplainer() string {
	return heredoc.Doc(`
		Discovers every muts-* directory produced by "mutacore mutate", runs
		the configured build+test command against each mutant under a
		bounded worker pool, classifies the outcome, and reports the
		resulting survival rate. Exits non-zero when the survival rate
		exceeds the configured threshold.
	`)
}

func setAnalyzeFlags(cmd *cobra.Command) error {
	fls := []*flags.Flag{
		{Name: paramFolder, CfgKey: configuration.AnalyzeFolderKey, Shorthand: "f", DefaultV: "", Usage: "directory to search for muts-* directories (default: current directory)"},
		{Name: paramCommand, CfgKey: configuration.AnalyzeCommandKey, Shorthand: "c", DefaultV: "", Usage: "build+test command run against each mutant's working copy"},
		{Name: paramJobs, CfgKey: configuration.AnalyzeJobsKey, Shorthand: "j", DefaultV: 0, Usage: "worker pool size; 0 uses the number of CPUs"},
		{Name: paramTimeout, CfgKey: configuration.AnalyzeTimeoutKey, Shorthand: "t", DefaultV: time.Duration(defaultTimeoutSeconds) * time.Second, Usage: "per-mutant build+test timeout"},
		{Name: paramThreshold, CfgKey: configuration.AnalyzeThresholdKey, DefaultV: defaultThreshold, Usage: "maximum tolerated survival rate before exiting non-zero"},
		{Name: paramSQLiteRun, CfgKey: configuration.AnalyzeSQLiteKey, DefaultV: "", Usage: "SQLite database to persist outcomes to"},
		{Name: paramRunID, CfgKey: configuration.AnalyzeRunIDKey, DefaultV: 0, Usage: "run_id recorded in the SQLite database"},
		{Name: paramTimeoutKills, CfgKey: configuration.AnalyzeTimeoutKillsKey, DefaultV: true, Usage: "count timed-out mutants as killed"},
		{Name: paramReport, CfgKey: configuration.AnalyzeReportKey, DefaultV: "", Usage: "write a machine-readable JSON report to this path"},
		{Name: paramOutputStatuses, CfgKey: configuration.AnalyzeOutputStatusesKey, DefaultV: "", Usage: "statuses to stream per mutant, as 'ksbtx' letters (default: all)"},
	}

	for _, f := range fls {
		if err := flags.Set(cmd, f); err != nil {
			return err
		}
	}

	return nil
}

func runAnalyze(ctx context.Context) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		folder := configuration.Get[string](configuration.AnalyzeFolderKey)
		if folder == "" {
			folder, _ = os.Getwd()
		}

		commandLine := configuration.Get[string](configuration.AnalyzeCommandKey)
		if commandLine == "" {
			return execution.New(execution.InvalidInput, errNoCommand)
		}

		adapter, err := openStorage(configuration.Get[string](configuration.AnalyzeSQLiteKey))
		if err != nil {
			return err
		}
		defer adapter.Close()

		logger, err := report.NewLogger(configuration.Get[string](configuration.AnalyzeOutputStatusesKey))
		if err != nil {
			return execution.New(execution.InvalidInput, err)
		}

		workRoot, err := os.MkdirTemp("", "mutacore-analyze-")
		if err != nil {
			return execution.New(execution.Io, err)
		}
		defer os.RemoveAll(workRoot)

		o := orchestrator.New(orchestrator.Options{
			SourceRoot:             folder,
			WorkRoot:               workRoot,
			Command:                strings.Fields(commandLine),
			Jobs:                   configuration.Get[int](configuration.AnalyzeJobsKey),
			Timeout:                configuration.Get[time.Duration](configuration.AnalyzeTimeoutKey),
			TimedOutCountsAsKilled: configuration.Get[bool](configuration.AnalyzeTimeoutKillsKey),
			SurvivalThreshold:      configuration.Get[float64](configuration.AnalyzeThresholdKey),
			Storage:                adapter,
			RunID:                  configuration.Get[int](configuration.AnalyzeRunIDKey),
			Logger:                 logger,
		})

		start := time.Now()
		result, err := o.Run(ctx, folder)
		if err != nil {
			return err
		}

		if err := adapter.FinalizeRun(configuration.Get[int](configuration.AnalyzeRunIDKey), result.Summary); err != nil {
			return err
		}

		findings := toFindings(result)

		return report.Do(report.Results{
			RunID:    configuration.Get[int](configuration.AnalyzeRunIDKey),
			Findings: findings,
			Elapsed:  time.Since(start),
		}, configuration.Get[string](configuration.AnalyzeReportKey), configuration.Get[float64](configuration.AnalyzeThresholdKey))
	}
}

var errNoCommand = analyzeError("--command is required")

type analyzeError string

func (e analyzeError) Error() string { return string(e) }

// toFindings zips each analysed outcome back to the mutant metadata
// Discover originally read, so the report can show file/line/operator
// context instead of bare outcome statuses.
func toFindings(result orchestrator.Result) []report.Finding {
	byID := make(map[int]orchestrator.MutantUnit, len(result.Units))
	for _, u := range result.Units {
		byID[u.Meta.MutantID] = u
	}

	findings := make([]report.Finding, 0, len(result.Outcomes))
	for _, oc := range result.Outcomes {
		u, ok := byID[oc.MutantID]
		if !ok {
			continue
		}

		findings = append(findings, report.Finding{Mutant: u.Mutant(), Outcome: oc})
	}

	return findings
}
