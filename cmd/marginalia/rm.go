// ABOUTME: Remove command for deleting notes.
// ABOUTME: Includes confirmation prompt before deletion.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/ui"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id-prefix>",
	Short: "Remove a note",
	Long:  `Delete a note. Its highlight disappears on the next render.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		note, err := appState.Notes.FindByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		if !force {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete note on %s (%s)? [y/N] ", ui.Quote(note.HighlightedText, 40), note.ShortID())
			if !confirm(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		appState.DeleteNote(cmd.Context(), note.ID)

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted note %s", note.ShortID())))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
