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

package configuration

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	defer Reset()

	Set(AnalyzeThresholdKey, 0.75)
	if got := Get[float64](AnalyzeThresholdKey); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}

	Set(AnalyzeJobsKey, 4)
	if got := Get[int](AnalyzeJobsKey); got != 4 {
		t.Errorf("expected 4, got %v", got)
	}

	Set(MutateFileKey, "src/a.cpp")
	if got := Get[string](MutateFileKey); got != "src/a.cpp" {
		t.Errorf("expected src/a.cpp, got %v", got)
	}
}

func TestGet_DurationFallsBackThroughStringValue(t *testing.T) {
	defer Reset()

	// Simulate what viper.Get returns for a pflag-bound Duration flag
	// whose internal type switch has no matching case: the flag's raw
	// ValueString, not a native time.Duration.
	Set(AnalyzeTimeoutKey, "45s")

	got := Get[time.Duration](AnalyzeTimeoutKey)
	if got != 45*time.Second {
		t.Errorf("expected 45s, got %v", got)
	}
}

func TestGet_MissingKeyReturnsZeroValue(t *testing.T) {
	defer Reset()

	if got := Get[int]("does.not.exist"); got != 0 {
		t.Errorf("expected zero value, got %v", got)
	}
	if got := Get[string]("does.not.exist"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestGet_NativeDurationValue(t *testing.T) {
	defer Reset()

	Set(AnalyzeTimeoutKey, 30*time.Second)
	if got := Get[time.Duration](AnalyzeTimeoutKey); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}
}
