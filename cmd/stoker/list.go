package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/stoker"
)

// addListCommand registers the `list` command for a loaded project.
func addListCommand(project *stoker.Project) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the declared targets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range project.Targets() {
				mode := ""
				if t.IsWatch() {
					mode = "(watch)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, mode, t.Description)
			}
			_ = w.Flush()
		},
	}
	rootCmd.AddCommand(listCmd)
}
