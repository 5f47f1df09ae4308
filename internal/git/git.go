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

// Package git provides the PR-diff collaborator used by the line
// selection pipeline: it shells out to git, parses the resulting patch
// with go-gitdiff, and exposes the set of added/modified line ranges per
// file.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/log"
)

// LineRange is a contiguous, inclusive range of added/modified lines in
// the new version of a file.
type LineRange struct {
	StartLine int
	EndLine   int
}

// Diff maps repository-relative file paths to the line ranges that changed
// relative to the merge base of the configured PR ref.
type Diff map[string][]LineRange

// execCmd is the subset of *exec.Cmd used, so tests can substitute a fake
// command runner.
type execCmd interface {
	CombinedOutput() ([]byte, error)
}

// Collaborator wraps PR-diff discovery.
type Collaborator struct {
	cmdFn func(name string, args ...string) execCmd
}

// New returns a Collaborator that shells out to the real git binary.
func New() *Collaborator {
	return &Collaborator{
		cmdFn: func(name string, args ...string) execCmd {
			return exec.Command(name, args...)
		},
	}
}

// NewWithCmd returns a Collaborator using a custom command factory, for
// testing.
func NewWithCmd(cmdFn func(name string, args ...string) execCmd) *Collaborator {
	return &Collaborator{cmdFn: cmdFn}
}

// DiffLines returns the file/line ranges added or modified relative to the
// merge base of ref. An empty ref yields a nil, nil Diff: callers treat a
// nil Diff as "no PR constraint".
func (c *Collaborator) DiffLines(ref string) (Diff, error) {
	if ref == "" {
		return nil, nil
	}

	log.Infof("gathering diff against %s...\n", ref)

	cmd := c.cmdFn("git", "diff", "--merge-base", ref)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, execution.New(execution.Git, fmt.Errorf("git diff --merge-base %s: %w\n%s", ref, err, out))
	}

	files, _, err := gitdiff.Parse(bytes.NewReader(out))
	if err != nil {
		return nil, execution.New(execution.Git, fmt.Errorf("parsing diff: %w", err))
	}

	return newDiff(files), nil
}

func newDiff(files []*gitdiff.File) Diff {
	result := make(Diff, len(files))
	for _, file := range files {
		if file.IsDelete {
			continue
		}
		name := file.NewName
		result[name] = append(result[name], changesOf(file)...)
	}

	return result
}

func changesOf(file *gitdiff.File) []LineRange {
	var ranges []LineRange
	for _, fragment := range file.TextFragments {
		if fragment.LinesAdded == 0 {
			continue
		}
		start := int(fragment.NewPosition + fragment.LeadingContext)
		ranges = append(ranges, LineRange{
			StartLine: start,
			EndLine:   start + int(fragment.LinesAdded) - 1,
		})
	}

	return ranges
}

// Contains reports whether line is within any changed range recorded for
// relPath. A nil Diff matches everything.
func (d Diff) Contains(relPath string, line int) bool {
	if d == nil {
		return true
	}
	for _, r := range d[relPath] {
		if line >= r.StartLine && line <= r.EndLine {
			return true
		}
	}

	return false
}

// CurrentBranch returns the short name of the currently checked-out
// branch, recorded in a generation run's parameters.
func CurrentBranch() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD").CombinedOutput()
	if err != nil {
		return "", execution.New(execution.Git, fmt.Errorf("git rev-parse: %w\n%s", err, out))
	}

	return strings.TrimSpace(string(out)), nil
}
