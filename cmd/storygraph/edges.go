package main

import (
	"fmt"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/cli"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect <source> <target>",
	Short: "Point a handle of the source unit at the target",
	Long: `Connects source to target. Without --handle (or with --handle next) the
source becomes Linear with target as its successor; any other handle is a
branch key.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, _ := cmd.Flags().GetString("handle")
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.Connect(cmd.Context(), args[0], args[1], handle); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Connected '%s' to '%s'.", args[0], args[1])
			return nil
		})
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect <source> <handle>",
	Short: "Remove the edge leaving the source through a handle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		prompt := fmt.Sprintf("Remove edge '%s' of unit '%s'?", args[1], args[0])
		if err := confirmer(cmd, yes).Confirm(prompt); err != nil {
			return err
		}
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.Disconnect(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Disconnected '%s' of '%s'.", args[1], args[0])
			return nil
		})
	},
}

var restyleCmd = &cobra.Command{
	Use:   "restyle <source> <handle> <field> <value>",
	Short: "Set the color, strokeStyle or animated flag of an edge",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.Restyle(cmd.Context(), args[0], args[1], args[2], args[3]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Set %s of '%s.%s' to %s.", args[2], args[0], args[1], args[3])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(connectCmd, disconnectCmd, restyleCmd)
	connectCmd.Flags().String("handle", "", "Handle to connect (default: next)")
	disconnectCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
