// ABOUTME: Show command for displaying a single note.
// ABOUTME: Opens the note like a clicked highlight; the host renders it with glamour.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a note",
	Long:  `Display a note with its passage in context and its text rendered as markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := appState.OpenNote(args[0]); err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
