// ABOUTME: Resolve command for marking notes as addressed.
// ABOUTME: --reopen flips a resolved note back to open.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/ui"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id-prefix>",
	Short: "Resolve a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reopen, _ := cmd.Flags().GetBool("reopen")

		note, err := appState.SetResolved(cmd.Context(), args[0], !reopen)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		verb := "Resolved"
		if reopen {
			verb = "Reopened"
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s note %s", verb, note.ShortID())))
		return nil
	},
}

func init() {
	resolveCmd.Flags().Bool("reopen", false, "mark the note open again")
	rootCmd.AddCommand(resolveCmd)
}
