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

// Package history keeps a JSON-backed ledger of prior generation runs, so
// repeated invocations can skip files whose content and operator set have
// not changed since the last run.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/brunoerg/bcore-mutation/internal/execution"
)

// Entry is the recorded state of a single file's last generation run.
type Entry struct {
	FileHash      string    `json:"file_hash"`
	Operators     []string  `json:"operators"`
	AcceptedCount int       `json:"accepted_count"`
	SurvivalRate  float64   `json:"survival_rate"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Store is a JSON-backed map of repository-relative path to Entry.
type Store struct {
	path    string
	entries map[string]Entry
}

// Open loads the store at path, or returns an empty Store if the file
// does not yet exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: map[string]Entry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}

		return nil, execution.New(execution.Io, err)
	}

	var doc struct {
		Entries map[string]Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, execution.New(execution.Parse, err).WithLocation(path, 0, "")
	}
	if doc.Entries != nil {
		s.entries = doc.Entries
	}

	return s, nil
}

// Save writes the store back to its path.
func (s *Store) Save(now time.Time) error {
	doc := struct {
		Entries map[string]Entry `json:"entries"`
		SavedAt time.Time        `json:"saved_at"`
	}{Entries: s.entries, SavedAt: now}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return execution.New(execution.Io, err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return execution.New(execution.Io, err)
	}

	return nil
}

// Unchanged reports whether relPath's content hash and active operator
// set are identical to the last recorded Entry, meaning generation can
// be skipped for that file.
func (s *Store) Unchanged(relPath string, contentHash string, operators []string) bool {
	e, ok := s.entries[relPath]
	if !ok {
		return false
	}

	return e.FileHash == contentHash && sameOperatorSet(e.Operators, operators)
}

// Update records a fresh Entry for relPath.
func (s *Store) Update(relPath, contentHash string, operators []string, acceptedCount int, survivalRate float64, now time.Time) {
	s.entries[relPath] = Entry{
		FileHash:      contentHash,
		Operators:     operators,
		AcceptedCount: acceptedCount,
		SurvivalRate:  survivalRate,
		RecordedAt:    now,
	}
}

// HashContent returns the stable content hash used to key Entry.FileHash.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))

	return hex.EncodeToString(sum[:])
}

func sameOperatorSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)

	return strings.Join(sa, ",") == strings.Join(sb, ",")
}
