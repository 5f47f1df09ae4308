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

// Package selection implements the deterministic line selection pipeline:
// it narrows a repository down to the set of (file, line) pairs eligible
// for mutation, composing PR-diff/file/range scoping, coverage filtering,
// skip-lines, the test-only filter and trivial-line dropping in a fixed
// order.
package selection

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/brunoerg/bcore-mutation/internal/coverage"
	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/git"
	"github.com/brunoerg/bcore-mutation/internal/source"
)

// Criteria is every knob that narrows the candidate line set, mirroring
// the mutate subcommand's flags.
type Criteria struct {
	// PRRef, when set, restricts selection to lines changed relative to
	// this ref's merge base.
	PRRef string
	// File restricts selection to a single repository-relative path. If
	// empty, the whole repository is walked.
	File string
	// RangeLo/RangeHi, when RangeHi > 0, restrict selection to an
	// inclusive line range within File. Requires File to be set.
	RangeLo int
	RangeHi int
	// Coverage, when non-nil, restricts selection to covered lines.
	Coverage coverage.Profile
	// SkipLines maps a repository-relative file path to the set of
	// 1-indexed line numbers to exclude from that file's candidate set.
	SkipLines map[string][]int
	// TestOnly, when true, restricts selection to files under a
	// recognised test directory instead of excluding them.
	TestOnly bool
}

// Target is a single line selected for mutation.
type Target struct {
	File source.File
	Line source.Line
}

// Select walks root applying Criteria in the fixed order required by the
// design: resolve base set, test_only filter, range intersect, coverage
// intersect, skip_lines subtract, trivial-line drop.
func Select(root string, c Criteria) ([]Target, error) {
	if c.PRRef == "" && c.File == "" {
		return nil, execution.New(execution.InvalidInput, errNoBaseSet)
	}
	if c.RangeHi > 0 && c.File == "" {
		return nil, execution.New(execution.InvalidInput, errRangeNeedsFile)
	}
	if c.RangeHi > 0 && c.RangeLo > c.RangeHi {
		return nil, execution.New(execution.InvalidInput, errRangeInverted)
	}

	files, err := baseFiles(root, c)
	if err != nil {
		return nil, err
	}

	var diff git.Diff
	if c.PRRef != "" {
		diff, err = git.New().DiffLines(c.PRRef)
		if err != nil {
			return nil, err
		}
	}

	var out []Target
	for _, f := range files {
		if c.TestOnly && !f.IsTest() {
			continue
		}
		if !c.TestOnly && f.IsTest() {
			continue
		}

		skip := map[int]bool{}
		for _, l := range c.SkipLines[f.RelPath] {
			skip[l] = true
		}

		for _, ln := range f.Lines {
			if c.RangeHi > 0 && (ln.Number < c.RangeLo || ln.Number > c.RangeHi) {
				continue
			}
			if diff != nil && !diff.Contains(f.RelPath, ln.Number) {
				continue
			}
			if c.Coverage != nil && !c.Coverage.IsCovered(f.RelPath, ln.Number) {
				continue
			}
			if skip[ln.Number] {
				continue
			}
			if ln.Trivial() {
				continue
			}

			out = append(out, Target{File: f, Line: ln})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File.RelPath != out[j].File.RelPath {
			return out[i].File.RelPath < out[j].File.RelPath
		}

		return out[i].Line.Number < out[j].Line.Number
	})

	return out, nil
}

var (
	errNoBaseSet      = errors.New("one of --pr or --file is required")
	errRangeNeedsFile = errors.New("range-lo/range-hi requires --file")
	errRangeInverted  = errors.New("range lo must be <= hi")
)

func baseFiles(root string, c Criteria) ([]source.File, error) {
	if c.File != "" {
		f, err := source.Load(root, c.File)
		if err != nil {
			return nil, err
		}

		return []source.File{f}, nil
	}

	var files []source.File
	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}

			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !source.IsCPPSource(rel) {
			return nil
		}

		f, err := source.Load(root, rel)
		if err != nil {
			return err
		}
		files = append(files, f)

		return nil
	})
	if err != nil {
		return nil, execution.New(execution.Io, err)
	}

	return files, nil
}
