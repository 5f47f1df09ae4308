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

// Package repo locates the root of the C++ repository under test by
// walking up to the enclosing .git directory, and classifies paths into
// test and production code.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Repo represents the repository mutate/analyze operate against.
//
//	Root is the top-level directory containing .git.
//	CallingDir is the directory (relative to Root) the command was invoked from.
type Repo struct {
	Root       string
	CallingDir string
}

// Init finds the repository root starting from path and returns a Repo
// describing it.
func Init(path string) (Repo, error) {
	if path == "" {
		return Repo{}, fmt.Errorf("path is not set")
	}

	root := findRepoRoot(path)
	if root == "" {
		return Repo{}, fmt.Errorf("%s is not inside a git repository", path)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Repo{}, err
	}

	return Repo{Root: root, CallingDir: rel}, nil
}

func findRepoRoot(path string) string {
	path = filepath.Clean(path)
	for {
		if fi, err := os.Stat(filepath.Join(path, ".git")); err == nil && fi != nil {
			return path
		}
		d := filepath.Dir(path)
		if d == path {
			break
		}
		path = d
	}

	return ""
}

// TestDirs are the repository-relative directory prefixes treated as test
// code, modeled on Bitcoin Core's functional and unit test layout.
var TestDirs = []string{
	"src/test/",
	"src/wallet/test/",
	"src/qt/test/",
	"test/functional/",
	"test/util/",
}

// IsTestFile reports whether a repository-relative path is under one of
// the recognised test directories.
func IsTestFile(relPath string) bool {
	clean := filepath.ToSlash(relPath)
	for _, prefix := range TestDirs {
		if strings.HasPrefix(clean, prefix) {
			return true
		}
	}

	return false
}
