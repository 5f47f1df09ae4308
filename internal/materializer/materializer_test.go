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

package materializer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brunoerg/bcore-mutation/internal/mutant"
	"github.com/brunoerg/bcore-mutation/internal/source"
)

func sampleMutant() (source.File, mutant.Mutant) {
	orig := source.File{
		RelPath: "src/a.cpp",
		Lines: []source.Line{
			{Number: 1, Text: "int x = a + b;", Ending: source.LF},
			{Number: 2, Text: "return x;", Ending: source.LF},
		},
	}
	m := mutant.Mutant{
		Candidate: mutant.Candidate{
			File:       "src/a.cpp",
			Line:       1,
			ColStart:   10,
			ColEnd:     11,
			OperatorID: "arith.swap",
			Category:   mutant.Arithmetic,
			Original:   "int x = a + b;",
			Mutated:    "int x = a - b;",
		},
		RunID:      1,
		MutantID:   7,
		ContentSum: "abc123",
	}

	return orig, m
}

func TestDirName(t *testing.T) {
	_, m := sampleMutant()
	want := "muts-file-a-1-7"
	if got := DirName(ScopeFile, m); got != want {
		t.Errorf("DirName() = %q, want %q", got, want)
	}
}

func TestWrite(t *testing.T) {
	root := t.TempDir()
	mz := New(root)
	orig, m := sampleMutant()

	dir, err := mz.Write(orig, ScopeFile, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "src/a.cpp"))
	if err != nil {
		t.Fatalf("expected the mutated source file to exist: %v", err)
	}
	want := "int x = a - b;\nreturn x;\n"
	if string(data) != want {
		t.Errorf("mutated source = %q, want %q", string(data), want)
	}

	sidecar, err := os.ReadFile(filepath.Join(dir, "mutation.json"))
	if err != nil {
		t.Fatalf("expected mutation.json to exist: %v", err)
	}
	var md Metadata
	if err := json.Unmarshal(sidecar, &md); err != nil {
		t.Fatalf("could not unmarshal sidecar: %v", err)
	}
	if md.OperatorID != "arith.swap" || md.Category != "arithmetic" || md.MutantID != 7 {
		t.Errorf("unexpected metadata: %+v", md)
	}
}

func TestWrite_DuplicateDirFails(t *testing.T) {
	root := t.TempDir()
	mz := New(root)
	orig, m := sampleMutant()

	if _, err := mz.Write(orig, ScopeFile, m); err != nil {
		t.Fatalf("unexpected error on first write: %v", err)
	}
	if _, err := mz.Write(orig, ScopeFile, m); err == nil {
		t.Errorf("expected an error writing to an already-materialized directory")
	}
}

// TestWrite_RoundTripsLineEndings checks that applying a rewrite to a
// Line loaded from a CRLF file with no final newline, then reverting
// it, reproduces the original bytes exactly. Using source.Load (rather
// than a hand-built source.File) ensures the terminators under test are
// the ones Load actually reads.
func TestWrite_RoundTripsLineEndings(t *testing.T) {
	repoRoot := t.TempDir()
	original := []byte("int x = a + b;\r\nreturn x;")
	if err := os.MkdirAll(filepath.Join(repoRoot, "src"), 0o755); err != nil {
		t.Fatalf("could not seed fixture dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoRoot, "src", "a.cpp"), original, 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	orig, err := source.Load(repoRoot, "src/a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orig.Lines[0].Ending != source.CRLF {
		t.Fatalf("expected line 1 to carry a CRLF ending, got %q", orig.Lines[0].Ending)
	}
	if orig.Lines[1].Ending != source.NoNewline {
		t.Fatalf("expected line 2 to carry no trailing newline, got %q", orig.Lines[1].Ending)
	}

	m := mutant.Mutant{
		Candidate: mutant.Candidate{
			File:       "src/a.cpp",
			Line:       1,
			ColStart:   10,
			ColEnd:     11,
			OperatorID: "arith.swap",
			Category:   mutant.Arithmetic,
			Original:   "int x = a + b;",
			Mutated:    "int x = a - b;",
		},
		RunID:    1,
		MutantID: 1,
	}

	mutRoot := t.TempDir()
	dir, err := New(mutRoot).Write(orig, ScopeFile, m)
	if err != nil {
		t.Fatalf("unexpected error writing mutant: %v", err)
	}

	mutated, err := os.ReadFile(filepath.Join(dir, "src/a.cpp"))
	if err != nil {
		t.Fatalf("expected the mutated source file to exist: %v", err)
	}
	wantMutated := "int x = a - b;\r\nreturn x;"
	if string(mutated) != wantMutated {
		t.Errorf("mutated source = %q, want %q", string(mutated), wantMutated)
	}

	reverted := mutant.Mutant{
		Candidate: mutant.Candidate{
			File:     "src/a.cpp",
			Line:     1,
			Mutated:  m.Original,
			Original: m.Mutated,
		},
		RunID:    1,
		MutantID: 2,
	}
	revertRoot := t.TempDir()
	revertDir, err := New(revertRoot).Write(orig, ScopeFile, reverted)
	if err != nil {
		t.Fatalf("unexpected error reverting mutant: %v", err)
	}

	revertedBytes, err := os.ReadFile(filepath.Join(revertDir, "src/a.cpp"))
	if err != nil {
		t.Fatalf("expected the reverted source file to exist: %v", err)
	}
	if string(revertedBytes) != string(original) {
		t.Errorf("reverted source = %q, want original %q", string(revertedBytes), string(original))
	}
}
