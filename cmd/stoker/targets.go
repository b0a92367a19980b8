package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stoker"
	"github.com/aretw0/stoker/internal/cli"
	"github.com/aretw0/stoker/pkg/target"
)

// cliFlags are the persistent flags needed before cobra parses anything:
// the targets file decides which subcommands exist at all.
type cliFlags struct {
	file string
	dir  string
}

// preScan extracts --file/--dir from raw args ahead of cobra parsing.
func preScan(args []string) cliFlags {
	flags := cliFlags{dir: "."}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--file" || arg == "-f":
			if i+1 < len(args) {
				flags.file = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--file="):
			flags.file = strings.TrimPrefix(arg, "--file=")
		case arg == "--dir":
			if i+1 < len(args) {
				flags.dir = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--dir="):
			flags.dir = strings.TrimPrefix(arg, "--dir=")
		}
	}
	return flags
}

// firstPositional returns the first non-flag argument, skipping the
// values of flags that take one.
func firstPositional(args []string) (string, bool) {
	takesValue := map[string]bool{
		"--file": true, "-f": true,
		"--dir":         true,
		"--status-addr": true,
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if takesValue[arg] {
			i++
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return arg, true
	}
	return "", false
}

// addTargetCommands registers one subcommand per declared target.
func addTargetCommands(project *stoker.Project) {
	for _, t := range project.Targets() {
		rootCmd.AddCommand(newTargetCommand(project, t))
	}
}

func newTargetCommand(project *stoker.Project, t *target.Target) *cobra.Command {
	short := t.Description
	if short == "" {
		if t.IsWatch() {
			short = "Run the " + t.Name + " target on every file change"
		} else {
			short = "Run the " + t.Name + " target"
		}
	}

	return &cobra.Command{
		Use:   t.Name,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			statusAddr, _ := cmd.Flags().GetString("status-addr")

			opts := cli.Options{
				Dir:        project.Root,
				Debug:      debug,
				StatusAddr: statusAddr,
			}

			if t.IsWatch() {
				os.Exit(cli.RunWatch(cmd.Context(), t, opts))
			}
			os.Exit(cli.RunTarget(cmd.Context(), t, opts))
		},
	}
}
