package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stoker"
)

var rootCmd = &cobra.Command{
	Use:   "stoker",
	Short: "Stoker runs named build and deploy targets, re-running them on file changes",
	Long: `Stoker resolves a named target from stoker.yaml to an ordered list of
shell steps and executes them fail-fast. Targets that declare watch
patterns keep running: every change re-triggers the target after
cancelling the in-flight run.`,
}

// Execute loads the project, registers one subcommand per target and
// dispatches. It exits the process with the run's status code.
func Execute() {
	flags := preScan(os.Args[1:])

	project, err := stoker.Load(flags.dir, flags.file)
	if err != nil {
		// `version` and `help` must work without a targets file.
		if !isBareCommand(os.Args[1:]) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if project != nil {
		addTargetCommands(project)
		addListCommand(project)

		if name, ok := firstPositional(os.Args[1:]); ok {
			if !knownCommand(name) {
				fmt.Fprintf(os.Stderr, "Error: unknown target: %s\n", name)
				fmt.Fprintf(os.Stderr, "Run 'stoker list' to see available targets.\n")
				os.Exit(1)
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "", "Targets file (default stoker.yaml in the project root)")
	rootCmd.PersistentFlags().String("dir", ".", "Project root directory")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("status-addr", "", "Expose watch-session status and metrics on this address (e.g. :2112)")
}

func knownCommand(name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name {
			return true
		}
	}
	return name == "help" || name == "completion"
}

func isBareCommand(args []string) bool {
	name, ok := firstPositional(args)
	if !ok {
		return true // bare `stoker` prints help
	}
	return name == "version" || name == "help" || name == "completion"
}
