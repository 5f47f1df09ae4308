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

// Package configuration centralises viper-backed configuration for the
// mutate and analyze subcommands: a single viper instance bound to
// cobra flags plus a config file and environment variables.
package configuration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys available in the config file, as flags, and as environment
// variables (MUTACORE_<SECTION>_<FLAG>).
const (
	MutatePRKey           = "mutate.pr"
	MutateFileKey         = "mutate.file"
	MutateRangeLoKey      = "mutate.range-lo"
	MutateRangeHiKey      = "mutate.range-hi"
	MutateCoverageKey     = "mutate.cov"
	MutateSkipLinesKey    = "mutate.skip-lines"
	MutateOneMutantKey    = "mutate.one-mutant"
	MutateTestOnlyKey     = "mutate.test-only"
	MutateOnlySecurityKey = "mutate.only-security-mutations"
	MutateDisableAridKey  = "mutate.disable-ast-filtering"
	MutateExpertRulesKey  = "mutate.add-expert-rule"
	MutateSQLiteKey       = "mutate.sqlite"
	MutateRunHistoryKey   = "mutate.run-history"

	AnalyzeFolderKey         = "analyze.folder"
	AnalyzeCommandKey        = "analyze.command"
	AnalyzeJobsKey           = "analyze.jobs"
	AnalyzeTimeoutKey        = "analyze.timeout"
	AnalyzeThresholdKey      = "analyze.survival-threshold"
	AnalyzeSQLiteKey         = "analyze.sqlite"
	AnalyzeRunIDKey          = "analyze.run-id"
	AnalyzeTimeoutKillsKey   = "analyze.timeout-kills"
	AnalyzeReportKey         = "analyze.report"
	AnalyzeOutputStatusesKey = "analyze.output-statuses"

	GenerationWorkersKey = "generation.workers"
)

const (
	cfgName      = ".mutacore"
	envVarPrefix = "MUTACORE"

	xdgConfigHomeKey = "XDG_CONFIG_HOME"
	windowsOS        = "windows"
)

// Init wires up viper: config file name/type, env var prefix and
// replacer, and the config search paths.
func Init(cfgFile string) error {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()
	viper.SetConfigName(cfgName)
	viper.SetConfigType("yaml")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		return viper.ReadInConfig()
	}

	for _, p := range defaultConfigPaths() {
		viper.AddConfigPath(p)
	}

	_ = viper.ReadInConfig() // absence of a config file is not an error

	return nil
}

func defaultConfigPaths() []string {
	result := make([]string, 0, 3)
	if runtime.GOOS != windowsOS {
		result = append(result, "/etc/mutacore")
	}

	xch, _ := homedir.Expand("~/.config")
	if x := os.Getenv(xdgConfigHomeKey); x != "" {
		xch = x
	}
	result = append(result, filepath.Join(xch, "mutacore"))
	result = append(result, ".")

	return result
}

var mutex sync.RWMutex

// Set offers synchronised write access to viper.
func Set[T any](k string, v T) {
	mutex.Lock()
	defer mutex.Unlock()
	viper.Set(k, v)
}

// Get offers synchronised, type-asserted read access to viper. A bare
// type assertion is not enough: viper returns a pflag-bound value (e.g.
// a Duration flag) as the flag's ValueString() rather than its native
// Go type whenever no matching case in its own internal switch applies,
// so Get falls back to github.com/spf13/cast for the types this project
// actually binds flags as.
func Get[T any](k string) T {
	mutex.RLock()
	defer mutex.RUnlock()
	var zero T
	v := viper.Get(k)
	if v == nil {
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}

	switch any(zero).(type) {
	case time.Duration:
		if d, err := cast.ToDurationE(v); err == nil {
			return any(d).(T)
		}
	case int:
		if i, err := cast.ToIntE(v); err == nil {
			return any(i).(T)
		}
	case float64:
		if f, err := cast.ToFloat64E(v); err == nil {
			return any(f).(T)
		}
	case bool:
		if b, err := cast.ToBoolE(v); err == nil {
			return any(b).(T)
		}
	case string:
		if s, err := cast.ToStringE(v); err == nil {
			return any(s).(T)
		}
	case []string:
		if s, err := cast.ToStringSliceE(v); err == nil {
			return any(s).(T)
		}
	}

	return zero
}

// Reset clears the viper instance. Mainly used in tests.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	viper.Reset()
}
