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

// Package workdir hands out isolated working copies of the project for
// each mutant under analysis, so concurrent workers never mutate the
// shared source tree. A Dealer caches one directory per identifier and
// removes it on Clean.
package workdir

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/brunoerg/bcore-mutation/internal/log"
)

// Dealer creates and returns working directories to use during analysis
// instead of the shared project checkout.
type Dealer interface {
	Get(idf string) (string, error)
	Clean()
}

// CachedDealer overlays a single mutant's file tree on top of a full
// copy of the clean source tree, so the build+test command sees the
// mutation without the orchestrator touching srcDir. Files are real
// copies rather than hard links: Overlay truncates and rewrites them in
// place, which would corrupt srcDir through a shared inode otherwise.
type CachedDealer struct {
	mutex   sync.RWMutex
	cache   map[string]string
	workDir string
	srcDir  string
}

// NewCachedDealer returns a Dealer rooted at workDir that overlays
// copies of srcDir per identifier.
func NewCachedDealer(workDir, srcDir string) *CachedDealer {
	return &CachedDealer{
		cache:   map[string]string{},
		workDir: workDir,
		srcDir:  srcDir,
	}
}

// Get returns a working directory for idf, a full copy of srcDir,
// creating it on first request and reusing it on subsequent calls with
// the same idf.
func (cd *CachedDealer) Get(idf string) (string, error) {
	if dst, ok := cd.getFromCache(idf); ok {
		return dst, nil
	}

	dst, err := os.MkdirTemp(cd.workDir, "wd-*")
	if err != nil {
		return "", err
	}
	if err := filepath.Walk(cd.srcDir, cd.copyTo(dst)); err != nil {
		return "", err
	}

	cd.setCache(idf, dst)

	return dst, nil
}

// Overlay copies mutantDir's file tree (the materialized mutated source;
// the mutation.json sidecar is skipped) on top of the working copy dst,
// replacing whichever files the mutant touched.
func (cd *CachedDealer) Overlay(dst, mutantDir string) error {
	return filepath.Walk(mutantDir, func(srcPath string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(mutantDir, srcPath)
		if err != nil {
			return err
		}
		if rel == "." || rel == "mutation.json" {
			return nil
		}
		dstPath := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(dstPath, info.Mode())
		}

		return doCopy(srcPath, dstPath, info.Mode())
	})
}

// Clean removes every cached working directory.
func (cd *CachedDealer) Clean() {
	cd.mutex.Lock()
	defer cd.mutex.Unlock()

	for _, dir := range cd.cache {
		if err := os.RemoveAll(dir); err != nil {
			log.Errorf("could not remove working directory %s: %s\n", dir, err)
		}
	}
	cd.cache = map[string]string{}
}

func (cd *CachedDealer) getFromCache(idf string) (string, bool) {
	cd.mutex.RLock()
	defer cd.mutex.RUnlock()
	dst, ok := cd.cache[idf]

	return dst, ok
}

func (cd *CachedDealer) setCache(idf, dir string) {
	cd.mutex.Lock()
	defer cd.mutex.Unlock()
	cd.cache[idf] = dir
}

func (cd *CachedDealer) copyTo(dst string) filepath.WalkFunc {
	return func(srcPath string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(cd.srcDir, srcPath)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dstPath := filepath.Join(dst, rel)

		return cd.copyPath(srcPath, dstPath, info)
	}
}

func (cd *CachedDealer) copyPath(srcPath, dstPath string, info fs.FileInfo) error {
	switch mode := info.Mode(); {
	case mode.IsDir():
		if err := os.Mkdir(dstPath, mode); err != nil && !os.IsExist(err) {
			return err
		}
	case mode.IsRegular():
		return doCopy(srcPath, dstPath, mode)
	}

	return nil
}

func doCopy(srcPath, dstPath string, mode fs.FileMode) error {
	s, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_RDWR, mode)
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = io.Copy(d, s)

	return err
}
