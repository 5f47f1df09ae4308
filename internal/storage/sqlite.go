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

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/brunoerg/bcore-mutation/internal/execution"
	"github.com/brunoerg/bcore-mutation/internal/mutant"
)

// Error wrapping for storage-layer context.
var (
	ErrOpen   = fmt.Errorf("storage: could not open database")
	ErrSchema = fmt.Errorf("storage: could not apply schema")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      INTEGER PRIMARY KEY,
	started_at  TEXT NOT NULL,
	params_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS mutants (
	run_id      INTEGER NOT NULL,
	mutant_id   INTEGER NOT NULL,
	file        TEXT NOT NULL,
	line        INTEGER NOT NULL,
	operator    TEXT NOT NULL,
	category    TEXT NOT NULL,
	original    TEXT NOT NULL,
	mutated     TEXT NOT NULL,
	PRIMARY KEY (run_id, mutant_id)
);
CREATE TABLE IF NOT EXISTS outcomes (
	run_id      INTEGER NOT NULL,
	mutant_id   INTEGER NOT NULL,
	status      TEXT NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	log_excerpt TEXT,
	PRIMARY KEY (run_id, mutant_id)
);
`

// SQLiteAdapter persists runs/mutants/outcomes to a SQLite database file
// via database/sql and modernc.org/sqlite, per the schema named in the
// storage design. Writes are serialized with mu: SQLite allows only one
// writer at a time, and analysis calls RecordOutcome concurrently from
// every orchestrator worker.
type SQLiteAdapter struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema.
func Open(path string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, execution.New(execution.Storage, fmt.Errorf("%w: %v", ErrOpen, err))
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, execution.New(execution.Storage, fmt.Errorf("%w: %v", ErrSchema, err))
	}

	return &SQLiteAdapter{db: db}, nil
}

// BeginRun inserts a new row into runs and returns its run_id.
func (a *SQLiteAdapter) BeginRun(params map[string]any) (int, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, execution.New(execution.Storage, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.db.Exec(
		`INSERT INTO runs (run_id, started_at, params_json) VALUES ((SELECT COALESCE(MAX(run_id),0)+1 FROM runs), datetime('now'), ?)`,
		string(paramsJSON),
	)
	if err != nil {
		return 0, execution.New(execution.Storage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, execution.New(execution.Storage, err)
	}

	return int(id), nil
}

// RecordMutant inserts m's row into mutants.
func (a *SQLiteAdapter) RecordMutant(runID int, m mutant.Mutant) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.Exec(
		`INSERT INTO mutants (run_id, mutant_id, file, line, operator, category, original, mutated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, m.MutantID, m.File, m.Line, m.OperatorID, m.Category.String(), m.Original, m.Mutated,
	)
	if err != nil {
		return execution.New(execution.Storage, err)
	}

	return nil
}

// RecordOutcome inserts o's row into outcomes.
func (a *SQLiteAdapter) RecordOutcome(runID int, o mutant.Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.Exec(
		`INSERT INTO outcomes (run_id, mutant_id, status, elapsed_ms, log_excerpt) VALUES (?, ?, ?, ?, ?)`,
		runID, o.MutantID, o.Status.String(), o.Elapsed.Milliseconds(), o.LogExcerpt,
	)
	if err != nil {
		return execution.New(execution.Storage, err)
	}

	return nil
}

// FinalizeRun is currently a bookkeeping no-op beyond what RecordOutcome
// already persists: the summary is recomputed from outcomes at report
// time rather than duplicated into the runs table.
func (a *SQLiteAdapter) FinalizeRun(int, Summary) error {
	return nil
}

// Close closes the underlying database handle.
func (a *SQLiteAdapter) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
