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

// Package source models the repository-relative source files and lines
// that mutate/analyze operate on. Mutation is line-granular plain text:
// no C++ parser is involved anywhere in the pipeline.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/repo"
)

// File is a single source file discovered under a repository root.
type File struct {
	// RelPath is the path relative to the repository root, always
	// slash-separated.
	RelPath string
	Lines   []Line
}

// IsTest reports whether the file lives under a recognised test directory.
func (f File) IsTest() bool {
	return repo.IsTestFile(f.RelPath)
}

// cppExtensions are the file extensions considered eligible for mutation.
var cppExtensions = map[string]bool{
	".cpp": true,
	".cc":  true,
	".cxx": true,
	".h":   true,
	".hpp": true,
}

// IsCPPSource reports whether relPath has a recognised C++ source or
// header extension.
func IsCPPSource(relPath string) bool {
	return cppExtensions[strings.ToLower(filepath.Ext(relPath))]
}

// Line is a single physical line of a source file, one-indexed to match
// coverage tools and diff hunks.
type Line struct {
	Number int
	Text   string
	// Ending is the line's original terminator, exactly as Load read it:
	// LF, CRLF, or NoNewline for the final line of a file missing a
	// trailing newline. Preserving it per-line (rather than assuming LF
	// and always appending one on write) is what makes the
	// mutate-then-revert round trip bytewise exact on CRLF sources and
	// on files with no final newline.
	Ending string
}

// The line terminators Load records on each Line. NoNewline marks the
// final line of a file that does not end in a newline at all.
const (
	LF        = "\n"
	CRLF      = "\r\n"
	NoNewline = ""
)

// Trivial reports whether the line is "trivial" for mutation purposes:
// blank, brace-only, or a line consisting solely of a line comment. This
// is the cheap, syntax-free counterpart to the arid node filter; it runs
// before any operator is attempted at all.
func (l Line) Trivial() bool {
	t := strings.TrimSpace(l.Text)
	if t == "" {
		return true
	}
	switch t {
	case "{", "}", "};", "(", ")", "else", "else {", "} else {", "} else":
		return true
	}
	if strings.HasPrefix(t, "//") {
		return true
	}
	if strings.HasPrefix(t, "#") {
		return true
	}

	return false
}

// Load reads path from disk and splits it into Lines, preserving each
// line's original terminator (LF, CRLF, or none for a final line with no
// trailing newline) so the file can be reassembled byte-for-byte.
func Load(root, relPath string) (File, error) {
	full := filepath.Join(root, filepath.FromSlash(relPath))
	data, err := os.ReadFile(full)
	if err != nil {
		return File{}, execution.New(execution.Io, err).WithLocation(relPath, 0, "")
	}

	var lines []Line
	n := 0
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}

		end, ending := i, LF
		if end > start && data[end-1] == '\r' {
			end--
			ending = CRLF
		}

		n++
		lines = append(lines, Line{Number: n, Text: string(data[start:end]), Ending: ending})
		start = i + 1
	}
	if start < len(data) {
		n++
		lines = append(lines, Line{Number: n, Text: string(data[start:]), Ending: NoNewline})
	}

	return File{RelPath: filepath.ToSlash(relPath), Lines: lines}, nil
}

// LineAt returns the line numbered n, or false if the file has no such
// line.
func (f File) LineAt(n int) (Line, bool) {
	if n < 1 || n > len(f.Lines) {
		return Line{}, false
	}

	return f.Lines[n-1], true
}
