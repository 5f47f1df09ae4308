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

package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}
	sub := filepath.Join(root, "src", "wallet")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	r, err := Init(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Root != root {
		t.Errorf("expected root %q, got %q", root, r.Root)
	}
	if r.CallingDir != filepath.Join("src", "wallet") {
		t.Errorf("unexpected calling dir %q", r.CallingDir)
	}
}

func TestInit_NotARepo(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err == nil {
		t.Errorf("expected an error outside a git repository")
	}
}

func TestInit_EmptyPath(t *testing.T) {
	if _, err := Init(""); err == nil {
		t.Errorf("expected an error for an empty path")
	}
}

func TestIsTestFile(t *testing.T) {
	testCases := []struct {
		path string
		want bool
	}{
		{"src/test/util_tests.cpp", true},
		{"src/wallet/test/wallet_tests.cpp", true},
		{"src/qt/test/rpcnestedtests.cpp", true},
		{"test/functional/p2p_segwit.py", true},
		{"test/util/data/script_tests.json", true},
		{"src/wallet/wallet.cpp", false},
		{"src/validation.cpp", false},
	}
	for _, tc := range testCases {
		if got := IsTestFile(tc.path); got != tc.want {
			t.Errorf("IsTestFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
