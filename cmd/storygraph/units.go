package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/cli"
	"github.com/aretw0/storygraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the unit ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			ids, err := ed.ListUnits(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a unit document and its parse status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			doc, err := ed.ReadUnit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), doc.Content)
				return err
			}
			return cli.PrintMarkdown(cmd.OutOrStdout(), cfg.Theme, tui.UnitMarkdown(doc))
		})
	},
}

var newCmd = &cobra.Command{
	Use:   "new <id>",
	Short: "Create a unit from the default template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.CreateUnit(cmd.Context(), args[0]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Unit '%s' created.", args[0])
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Replace the raw text of a unit (from --file or stdin)",
	Long: `Writes the given text as the unit document without parsing it. This is the
way to repair a document that no longer parses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		var (
			data []byte
			err  error
		)
		if path == "" || path == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return fmt.Errorf("failed to read unit text: %w", err)
		}

		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.SaveUnit(cmd.Context(), args[0], string(data)); err != nil {
				return err
			}
			doc, err := ed.ReadUnit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if doc.ParseErr != nil {
				cli.PrintSystemMessage(cmd.OutOrStdout(), "Unit '%s' saved, but it does not parse: %v", args[0], doc.ParseErr)
				return nil
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Unit '%s' saved.", args[0])
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a unit (references to it are left dangling)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if err := confirmer(cmd, yes).Confirm(fmt.Sprintf("Delete unit '%s'?", args[0])); err != nil {
			return err
		}
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.DeleteUnit(cmd.Context(), args[0]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Unit '%s' deleted.", args[0])
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <old-id> <new-id>",
	Short: "Rename a unit and repair every reference to it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := ed.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Unit '%s' renamed to '%s'.", args[0], args[1])
			return nil
		})
	},
}

// confirmer prompts on the command's streams when stdin is a terminal.
func confirmer(cmd *cobra.Command, yes bool) *cli.Confirmer {
	c := cli.NewConfirmer(yes)
	if cmd.InOrStdin() != os.Stdin {
		c.In = cmd.InOrStdin()
		c.Interactive = false
	}
	c.Out = cmd.ErrOrStderr()
	return c
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, newCmd, saveCmd, deleteCmd, renameCmd)
	showCmd.Flags().Bool("raw", false, "Print the document text only")
	saveCmd.Flags().StringP("file", "f", "", "Read the text from this file instead of stdin")
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
