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

// Package materializer writes Accepted Mutants to isolated, self
// contained directories ready for the analysis orchestrator to consume.
package materializer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/mutant"
	"github.com/brunoerg/bcore-mutation/internal/source"
)

// Scope identifies which selection mode produced a Run, and names the
// muts-<scope>-... directory prefix.
type Scope string

// The scopes recognised in mutant directory names.
const (
	ScopePR    Scope = "pr"
	ScopeFile  Scope = "file"
	ScopeRange Scope = "range"
)

// Metadata is the sidecar document written alongside the mutated source
// file, carrying the full Accepted Mutant record plus pre/post snippets.
type Metadata struct {
	RunID      int    `json:"run_id"`
	MutantID   int    `json:"mutant_id"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	ColStart   int    `json:"col_start"`
	ColEnd     int    `json:"col_end"`
	OperatorID string `json:"operator_id"`
	Category   string `json:"category"`
	ContentSum string `json:"content_sum"`
	Original   string `json:"original_line"`
	Mutated    string `json:"mutated_line"`
}

// Materializer writes mutant directories under Root.
type Materializer struct {
	Root string
}

// New returns a Materializer rooted at root, the directory that will
// hold one muts-* subdirectory per Accepted Mutant.
func New(root string) *Materializer {
	return &Materializer{Root: root}
}

// DirName computes the directory name for a Mutant per the naming
// scheme muts-<scope>-<file-stem>-<run_id>-<mutant_id>.
func DirName(scope Scope, m mutant.Mutant) string {
	stem := strings.TrimSuffix(filepath.Base(m.File), filepath.Ext(m.File))

	return fmt.Sprintf("muts-%s-%s-%d-%d", scope, stem, m.RunID, m.MutantID)
}

// Write materializes m into a fresh directory under the Materializer's
// Root: orig reconstructed with m's line replaced by its mutated text at
// its repo-relative path, plus a mutation.json sidecar. Writes are
// atomic (write-temp-then-rename). If the target directory already
// exists, Write fails fast with an Io error.
func (mz *Materializer) Write(orig source.File, scope Scope, m mutant.Mutant) (string, error) {
	dir := filepath.Join(mz.Root, DirName(scope, m))
	if _, err := os.Stat(dir); err == nil {
		return "", execution.New(execution.Io, fmt.Errorf("mutant directory already exists: %s", dir)).
			WithLocation(m.File, m.Line, m.OperatorID)
	}

	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return "", execution.New(execution.Io, err)
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return "", execution.New(execution.Io, err)
	}

	if err := mz.writeMutatedSource(tmp, orig, m); err != nil {
		_ = os.RemoveAll(tmp)

		return "", err
	}
	if err := mz.writeMetadata(tmp, m); err != nil {
		_ = os.RemoveAll(tmp)

		return "", err
	}

	if err := os.Rename(tmp, dir); err != nil {
		_ = os.RemoveAll(tmp)

		return "", execution.New(execution.Io, err)
	}

	return dir, nil
}

func (mz *Materializer) writeMutatedSource(dir string, orig source.File, m mutant.Mutant) error {
	target := filepath.Join(dir, filepath.FromSlash(m.File))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return execution.New(execution.Io, err)
	}

	var b strings.Builder
	for _, ln := range orig.Lines {
		if ln.Number == m.Line {
			b.WriteString(m.Mutated)
		} else {
			b.WriteString(ln.Text)
		}
		b.WriteString(ln.Ending)
	}

	tmpFile := target + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(b.String()), 0o644); err != nil {
		return execution.New(execution.Io, err)
	}

	if err := os.Rename(tmpFile, target); err != nil {
		return execution.New(execution.Io, err)
	}

	return nil
}

func (mz *Materializer) writeMetadata(dir string, m mutant.Mutant) error {
	md := Metadata{
		RunID:      m.RunID,
		MutantID:   m.MutantID,
		File:       m.File,
		Line:       m.Line,
		ColStart:   m.ColStart,
		ColEnd:     m.ColEnd,
		OperatorID: m.OperatorID,
		Category:   m.Category.String(),
		ContentSum: m.ContentSum,
		Original:   m.Original,
		Mutated:    m.Mutated,
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return execution.New(execution.Io, err)
	}

	path := filepath.Join(dir, "mutation.json")
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return execution.New(execution.Io, err)
	}

	return os.Rename(tmpFile, path)
}
