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

package workdir

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hectane/go-acl"
)

func TestGet_CopiesSourceTree(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "main.cpp"), []byte("int main() { return 0; }\n"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	work := t.TempDir()
	cd := NewCachedDealer(work, src)

	dst, err := cd.Get("mutant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "main.cpp"))
	if err != nil {
		t.Fatalf("expected the file to be copied: %v", err)
	}
	if string(data) != "int main() { return 0; }\n" {
		t.Errorf("unexpected copied content: %q", string(data))
	}
}

func TestGet_CachesByIdentifier(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.cpp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	cd := NewCachedDealer(t.TempDir(), src)

	first, err := cd.Get("m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cd.Get("m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected the same working directory to be reused for the same identifier")
	}
}

func TestOverlay_DoesNotMutateSourceTree(t *testing.T) {
	src := t.TempDir()
	srcFile := filepath.Join(src, "a.cpp")
	if err := os.WriteFile(srcFile, []byte("original content\n"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	cd := NewCachedDealer(t.TempDir(), src)
	dst, err := cd.Get("m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mutantDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(mutantDir, "a.cpp"), []byte("mutated content\n"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mutantDir, "mutation.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	if err := cd.Overlay(dst, mutantDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overlaid, err := os.ReadFile(filepath.Join(dst, "a.cpp"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(overlaid) != "mutated content\n" {
		t.Errorf("expected the working copy to reflect the mutation, got %q", string(overlaid))
	}

	if _, err := os.Stat(filepath.Join(dst, "mutation.json")); err == nil {
		t.Errorf("expected mutation.json sidecar not to be overlaid into the working copy")
	}

	untouched, err := os.ReadFile(srcFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(untouched) != "original content\n" {
		t.Errorf("expected the shared source tree to be untouched, got %q", string(untouched))
	}
}

func TestGet_SrcDirNotReadable(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.cpp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	err := os.Chmod(src, 0000)
	clean := os.Chmod
	if runtime.GOOS == "windows" {
		err = acl.Chmod(src, 0000)
		clean = acl.Chmod
	}
	if err != nil {
		t.Fatal(err)
	}
	defer func(d string) {
		_ = clean(d, 0700)
	}(src)

	cd := NewCachedDealer(t.TempDir(), src)

	if _, err := cd.Get("m1"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestOverlay_DstDirNotWritable(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.cpp"), []byte("original content\n"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	cd := NewCachedDealer(t.TempDir(), src)
	dst, err := cd.Get("m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mutantDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(mutantDir, "a.cpp"), []byte("mutated content\n"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	chmodErr := os.Chmod(dst, 0500)
	clean := os.Chmod
	if runtime.GOOS == "windows" {
		chmodErr = acl.Chmod(dst, 0500)
		clean = acl.Chmod
	}
	if chmodErr != nil {
		t.Fatal(chmodErr)
	}
	defer func(d string) {
		_ = clean(d, 0700)
	}(dst)

	if err := cd.Overlay(dst, mutantDir); err == nil {
		t.Errorf("expected an error")
	}
}

func TestClean_RemovesCachedDirectories(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.cpp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("could not seed fixture: %v", err)
	}

	cd := NewCachedDealer(t.TempDir(), src)
	dst, err := cd.Get("m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cd.Clean()

	if _, err := os.Stat(dst); err == nil {
		t.Errorf("expected the working directory to be removed after Clean")
	}
}
