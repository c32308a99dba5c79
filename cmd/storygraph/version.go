package main

import (
	"fmt"

	"github.com/aretw0/storygraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of storygraph",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "storygraph version %s\n", storygraph.Version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
