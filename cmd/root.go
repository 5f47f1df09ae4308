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

// Package cmd wires the mutacore cobra command tree: a root command with
// the mutate and analyze subcommands.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/brunoerg/bcore-mutation/internal/configuration"
	"github.com/brunoerg/bcore-mutation/internal/log"
)

const paramConfigFile = "config"

// Execute builds and runs the root command, returning whatever error the
// invoked subcommand produced.
func Execute(ctx context.Context, version string) error {
	root, err := newRootCmd(ctx, version)
	if err != nil {
		return err
	}

	return root.execute()
}

type rootCmd struct {
	cmd *cobra.Command
}

func (rc rootCmd) execute() error {
	var cfgFile string
	cobra.OnInitialize(func() {
		if err := configuration.Init(cfgFile); err != nil {
			log.Errorf("initialization error: %s\n", err)
			os.Exit(1)
		}
	})
	rc.cmd.PersistentFlags().StringVar(&cfgFile, paramConfigFile, "", "override config file")

	return rc.cmd.Execute()
}

func newRootCmd(ctx context.Context, version string) (*rootCmd, error) {
	if version == "" {
		return nil, errors.New("expected a version string")
	}

	c := &cobra.Command{
		SilenceUsage:  true,
		SilenceErrors: true,
		Use:           "mutacore",
		Short:         shortExplainer(),
		Version:       version,
	}

	mc, err := newMutateCmd(ctx)
	if err != nil {
		return nil, err
	}
	c.AddCommand(mc.cmd)

	ac, err := newAnalyzeCmd(ctx)
	if err != nil {
		return nil, err
	}
	c.AddCommand(ac.cmd)

	return &rootCmd{cmd: c}, nil
}

func shortExplainer() string {
	return heredoc.Doc(`
		mutacore is a mutation testing driver for large C++ codebases,
		built around a two-phase generate/analyze pipeline.
	`)
}
