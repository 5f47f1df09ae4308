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

package report

import (
	"errors"

	"github.com/brunoerg/bcore-mutation/internal/mutant"
)

// StatusFilter maps outcome statuses to filter which findings are logged.
type StatusFilter = map[mutant.Status]struct{}

// ErrInvalidFilter is returned when an invalid status filter string is
// provided to ParseFilter.
var ErrInvalidFilter = errors.New("invalid statuses filter, only 'ksbtx' letters allowed")

// FindingLogger prints findings that pass a status filter.
type FindingLogger struct {
	Filter StatusFilter
}

// NewLogger returns a FindingLogger filtering on the given status letters.
// An empty string disables filtering (every finding is logged).
func NewLogger(statuses string) (FindingLogger, error) {
	f, err := ParseFilter(statuses)

	return FindingLogger{Filter: f}, err
}

// Mutant logs f if it passes the configured filter.
func (l FindingLogger) Mutant(f Finding) {
	if l.Filter == nil {
		Mutant(f)

		return
	}
	if _, ok := l.Filter[f.Outcome.Status]; ok {
		Mutant(f)
	}
}

// ParseFilter parses a status filter string into a StatusFilter. Valid
// letters: k(illed) s(urvived) b(uild failed) t(imed out) x(skipped).
func ParseFilter(s string) (StatusFilter, error) {
	if s == "" {
		return nil, nil
	}

	result := StatusFilter{}
	for _, r := range s {
		switch r {
		case 'k':
			result[mutant.Killed] = struct{}{}
		case 's':
			result[mutant.Survived] = struct{}{}
		case 'b':
			result[mutant.BuildFailed] = struct{}{}
		case 't':
			result[mutant.TimedOut] = struct{}{}
		case 'x':
			result[mutant.Skipped] = struct{}{}
		default:
			return nil, ErrInvalidFilter
		}
	}

	return result, nil
}
