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

// Package coverage parses gcov/lcov ".info" trace files. C++ coverage
// carries only line granularity, so Profile tracks covered line numbers
// per file rather than column-aware blocks.
package coverage

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brunoerg/bcore-mutation/internal/log"
)

// Profile holds, for every source file named in an LCOV trace, the set of
// line numbers that were executed at least once.
type Profile map[string]map[int]bool

// IsCovered reports whether line of relPath was exercised. An empty
// Profile (no --cov flag supplied) is treated as "everything covered" by
// the caller, not here: selection decides whether to even consult the
// profile.
func (p Profile) IsCovered(relPath string, line int) bool {
	lines, ok := p[filepath.ToSlash(relPath)]
	if !ok {
		return false
	}

	return lines[line]
}

// Parse reads an LCOV-format trace (as produced by "geninfo"/"lcov" over
// gcov output) from r. Only SF: (source file) and DA: (line execution
// count) records are meaningful to mutation selection; every other record
// type (FN, FNDA, BRDA, end_of_record, ...) is skipped. Unrecognised
// record types are logged, not fatal, per the tolerant-parsing design.
func Parse(r io.Reader) (Profile, error) {
	profile := Profile{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "SF:"):
			current = filepath.ToSlash(strings.TrimPrefix(line, "SF:"))
			if _, ok := profile[current]; !ok {
				profile[current] = map[int]bool{}
			}
		case strings.HasPrefix(line, "DA:"):
			if current == "" {
				continue
			}
			ln, hits, ok := parseDA(strings.TrimPrefix(line, "DA:"))
			if !ok {
				continue
			}
			if hits > 0 {
				profile[current][ln] = true
			}
		case line == "end_of_record":
			current = ""
		default:
			log.Infof("ignoring unrecognised coverage record: %s\n", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return profile, nil
}

// parseDA parses the "<line>,<hit-count>[,checksum]" payload of a DA
// record.
func parseDA(payload string) (line, hits int, ok bool) {
	fields := strings.Split(payload, ",")
	if len(fields) < 2 {
		return 0, 0, false
	}
	l, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}

	return l, h, true
}
