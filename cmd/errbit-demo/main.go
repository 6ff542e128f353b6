/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Command errbit-demo runs a small HTTP server whose failures are reported
// to Errbit, and inspects the status mapping.
package main

import (
	"log/slog"
	"os"

	"dirpx.dev/errbit/notifier"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)
	level := new(slog.LevelVar)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cmd := &cobra.Command{
		Use:          "errbit-demo",
		Short:        "Report failed HTTP requests to Errbit",
		Version:      notifier.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				level.Set(slog.LevelDebug)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (ERRBIT_* environment is used when empty)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(&configPath, log))
	cmd.AddCommand(newConfigCmd(&configPath))
	cmd.AddCommand(newExplainCmd())
	return cmd
}
