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

// Package log provides the singleton, writer-backed logger used across
// mutate and analyze: a lazily initialised instance that behaves as a
// no-op until Init is called.
package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var fgRed = color.New(color.FgRed).SprintFunc()

type logger struct {
	out io.Writer
	err io.Writer
}

var (
	mutex    sync.Mutex
	instance *logger
)

// Init initialises the singleton logger with the given stdout/stderr
// writers. If out is nil the logger behaves as a no-op.
func Init(out, errW io.Writer) {
	if out == nil {
		return
	}
	if errW == nil {
		errW = out
	}
	mutex.Lock()
	defer mutex.Unlock()
	instance = &logger{out: out, err: errW}
}

// Reset removes the current logger instance. Mainly used in tests.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	instance = nil
}

// Infof logs an informational message using a format string.
func Infof(f string, args ...any) {
	mutex.Lock()
	l := instance
	mutex.Unlock()
	if l == nil {
		return
	}
	_, _ = fmt.Fprintf(l.out, f, args...)
}

// Infoln logs an informational line.
func Infoln(a any) {
	mutex.Lock()
	l := instance
	mutex.Unlock()
	if l == nil {
		return
	}
	_, _ = fmt.Fprintln(l.out, a)
}

// Errorf logs an error using a format string.
func Errorf(f string, args ...any) {
	mutex.Lock()
	l := instance
	mutex.Unlock()
	if l == nil {
		return
	}
	msg := fmt.Sprintf(f, args...)
	_, _ = fmt.Fprintf(l.err, "%s: %s", fgRed("ERROR"), msg)
}

// Errorln logs an error line.
func Errorln(a any) {
	mutex.Lock()
	l := instance
	mutex.Unlock()
	if l == nil {
		return
	}
	_, _ = fmt.Fprintf(l.err, "%s: %v\n", fgRed("ERROR"), a)
}
