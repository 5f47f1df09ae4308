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
	"path/filepath"
	"testing"

	"github.com/brunoerg/bcore-mutation/internal/source"
)

func TestMutateCmd_FlagShapes(t *testing.T) {
	c, err := newMutateCmd(context.Background())
	if err != nil {
		t.Fatal("newMutateCmd should not fail")
	}
	cmd := c.cmd

	if cmd.Name() != mutateCommandName {
		t.Errorf("expected %q, got %q", mutateCommandName, cmd.Name())
	}

	testCases := []struct {
		name      string
		shorthand string
		flagType  string
		defValue  string
	}{
		{name: paramPR, shorthand: "p", flagType: "string", defValue: ""},
		{name: paramFile, shorthand: "f", flagType: "string", defValue: ""},
		{name: paramRange, shorthand: "r", flagType: "lo,hi", defValue: ""},
		{name: paramCov, shorthand: "c", flagType: "string", defValue: ""},
		{name: paramSkipLines, flagType: "string", defValue: ""},
		{name: paramOneMutant, flagType: "bool", defValue: "false"},
		{name: paramTestOnly, shorthand: "t", flagType: "bool", defValue: "false"},
		{name: paramOnlySecurity, shorthand: "s", flagType: "bool", defValue: "false"},
		{name: paramDisableArid, flagType: "bool", defValue: "false"},
		{name: paramSQLite, flagType: "string", defValue: ""},
		{name: paramRunHistory, flagType: "string", defValue: ""},
	}

	for _, tc := range testCases {
		f := cmd.Flag(tc.name)
		if f == nil {
			t.Errorf("expected a %q flag to be registered", tc.name)

			continue
		}
		if f.Shorthand != tc.shorthand {
			t.Errorf("%s: expected shorthand %q, got %q", tc.name, tc.shorthand, f.Shorthand)
		}
		if f.Value.Type() != tc.flagType {
			t.Errorf("%s: expected type %q, got %q", tc.name, tc.flagType, f.Value.Type())
		}
		if f.DefValue != tc.defValue {
			t.Errorf("%s: expected default %q, got %q", tc.name, tc.defValue, f.DefValue)
		}
	}
}

func TestRangeValue_Set(t *testing.T) {
	var rv rangeValue
	if err := rv.Set("10,20"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.lo != 10 || rv.hi != 20 || !rv.set {
		t.Errorf("unexpected state: %+v", rv)
	}
	if got := rv.String(); got != "10,20" {
		t.Errorf("expected String() %q, got %q", "10,20", got)
	}
}

func TestRangeValue_Set_RejectsMalformedInput(t *testing.T) {
	testCases := []string{"", "10", "a,20", "10,b"}
	for _, tc := range testCases {
		var rv rangeValue
		if err := rv.Set(tc); err == nil {
			t.Errorf("expected %q to be rejected", tc)
		}
	}
}

func TestRangeValue_String_UnsetIsEmpty(t *testing.T) {
	var rv rangeValue
	if got := rv.String(); got != "" {
		t.Errorf("expected an unset range to stringify empty, got %q", got)
	}
}

func TestLoadSkipLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skip.json")
	if err := os.WriteFile(path, []byte(`{"src/a.cpp":[3,4]}`), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	m, err := loadSkipLines(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m["src/a.cpp"]; len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("unexpected skip lines: %+v", m)
	}
}

func TestLoadSkipLines_MissingFile(t *testing.T) {
	if _, err := loadSkipLines(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadSkipLines_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skip.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}
	if _, err := loadSkipLines(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestFileContentHash_StableForIdenticalContent(t *testing.T) {
	f := source.File{Lines: []source.Line{{Number: 1, Text: "int x = 1;"}, {Number: 2, Text: "return x;"}}}

	h1 := fileContentHash(f)
	h2 := fileContentHash(f)
	if h1 != h2 {
		t.Errorf("expected a stable hash, got %q and %q", h1, h2)
	}

	other := source.File{Lines: []source.Line{{Number: 1, Text: "int x = 2;"}}}
	if fileContentHash(other) == h1 {
		t.Error("expected different content to hash differently")
	}
}

func TestOpenStorage_EmptyDSNIsNoop(t *testing.T) {
	a, err := openStorage("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.(interface{ Close() error }); !ok {
		t.Errorf("expected a closeable adapter, got %T", a)
	}
}
