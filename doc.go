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

/*
Mutacore is a mutation testing driver for large C++ codebases, built
around Bitcoin Core. It runs in two phases: generation rewrites source
lines into isolated mutant trees, and analysis compiles and tests each
one in parallel to classify it as killed, survived, or build-failed.

Usage

To generate mutants for every production line touched by a PR:

	$ mutacore mutate -p 12345

To generate mutants for a single file and line range:

	$ mutacore mutate -f src/validation.cpp -r 100,160

To analyze a directory of previously generated mutants:

	$ mutacore analyze -c "make check" -j 4

The command is split on whitespace and run directly, not through a shell.

Mutacore will classify each mutant as:
 - KILLED: the test suite detected the mutation.
 - SURVIVED: the test suite failed to detect the mutation.
 - BUILD FAILED: the mutation did not compile.
 - TIMED OUT: the build or test run exceeded the per-mutant deadline.

Configuration

Mutacore uses Viper (https://github.com/spf13/viper) for configuration.
Options can be set in three ways, in order of precedence:

 - specific command flags
 - environment variables
 - configuration file

Environment variables must be set with the following syntax:

	MUTACORE_<COMMAND NAME>_<FLAG NAME>

in which every dash in the option name must be replaced with an underscore.

Example:

	$ MUTACORE_ANALYZE_JOBS=4 mutacore analyze

The configuration file must be named

	.mutacore.yaml

and must be in the following format:

	analyze:
	  jobs: 4
	  timeout: 1000s

and can be placed in one of the following folders (in order):

 - /etc/mutacore
 - $XDG_CONFIG_HOME/mutacore (defaulting to $HOME/.config/mutacore)
 - the current folder
*/
package mutacore
