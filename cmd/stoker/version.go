package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stoker"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stoker",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stoker version %s\n", stoker.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
