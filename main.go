// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cybrota/clinic/registry"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	InitializeColors()

	asciiLogo := `
 ██████╗██╗     ██╗███╗   ██╗██╗ ██████╗
██╔════╝██║     ██║████╗  ██║██║██╔════╝
██║     ██║     ██║██╔██╗ ██║██║██║
██║     ██║     ██║██║╚██╗██║██║██║
╚██████╗███████╗██║██║ ╚████║██║╚██████╗
 ╚═════╝╚══════╝╚═╝╚═╝  ╚═══╝╚═╝ ╚═════╝
Patient records in two indexes, searchable by name [Version: %s%s%s]

`

	asciiLogo = fmt.Sprintf(asciiLogo, Green, version, Reset)

	var configPath string
	var plain, noSave bool

	var cmdUsage = &cobra.Command{
		Use:   "usage",
		Short: "Print Clinic usage guide",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Usage displays the clinic CLI usage guide`),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(getHelpMessage())
		},
	}

	var cmdCheck = &cobra.Command{
		Use:   "check <patients-file>",
		Short: "Load a patients file and report what was accepted",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Check loads the file without starting a session and prints load statistics`),
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			config := readConfigOrDefault(configPath)
			reg := registry.New(registryOptions(config)...)

			stats, err := reg.Load(args[0])
			if err != nil {
				log.Fatalf("Error reading patients: %v", err)
			}
			printLoadStats(args[0], stats)
		},
	}

	var cmdConfig = &cobra.Command{
		Use:   "config",
		Short: "Show (and create if missing) the configuration file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			displaySettings(configPath)
		},
	}

	var cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Print Clinic version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	var rootCmd = &cobra.Command{
		Use:           "clinic <patients-file>",
		Version:       version,
		Long:          asciiLogo,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Argument errors print usage, failures after this point do not.
			cmd.SilenceUsage = true
			config := readConfigOrDefault(configPath)
			return runClinic(config, args[0], plain || config.UI.Plain, noSave)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default ~/.clinic.yaml)")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "use the line-oriented session even on a terminal")
	rootCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the output files when the session ends")

	rootCmd.AddCommand(cmdUsage, cmdCheck, cmdConfig, cmdVersion)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", Error, Reset, err)
		os.Exit(1)
	}
}

func readConfigOrDefault(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		log.Printf("Failed to load configuration: %v. Using default settings.", err)
	}
	return config
}

func registryOptions(config *Config) []registry.Option {
	opts := []registry.Option{registry.WithCategories(config.RegistryCategories())}
	if config.Load.ShowProgress && isatty.IsTerminal(os.Stderr.Fd()) {
		opts = append(opts, registry.WithProgress(os.Stderr))
	}
	return opts
}

// runClinic loads path, runs a session and persists on the way out. A file
// that cannot be read leaves the registry empty and the session still runs.
func runClinic(config *Config, path string, plain, noSave bool) error {
	reg := registry.New(registryOptions(config)...)

	stats, err := reg.Load(path)
	if err != nil {
		log.Printf("%sError reading patients:%s %v", Warning, Reset, err)
	} else {
		printLoadStats(path, stats)
	}

	targets := config.Targets()
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	if interactive && !plain {
		if err := runBubbleTeaApp(reg, targets, NewDetailCache(config.DetailCacheExpiration())); err != nil {
			return fmt.Errorf("interactive session failed: %w", err)
		}
	} else {
		session := NewSession(reg, targets, os.Stdin, os.Stdout)
		session.prompt = interactive
		if err := session.Run(); err != nil {
			return fmt.Errorf("reading commands: %w", err)
		}
	}

	if noSave {
		return nil
	}
	if err := reg.Persist(targets); err != nil {
		return err
	}
	fmt.Printf("%sSaved %d patients%s\n", Green, reg.Len(), Reset)
	return nil
}

func printLoadStats(path string, stats registry.LoadStats) {
	fmt.Fprintf(os.Stderr, "%sLoaded %d patients from %s%s (list %d, tree %d)\n",
		Info, stats.Loaded(), path, Reset, stats.InList, stats.InTree)
	if skipped := stats.Malformed + stats.Duplicates; skipped > 0 {
		fmt.Fprintf(os.Stderr, "%sSkipped %d lines%s (%d malformed, %d duplicates)\n",
			Warning, skipped, Reset, stats.Malformed, stats.Duplicates)
	}
}
