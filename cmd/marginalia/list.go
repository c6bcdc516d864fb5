// ABOUTME: List command for displaying notes.
// ABOUTME: Supports filtering by content unit, open state, and full-text search.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/models"
	"github.com/harper/marginalia/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list [slug]",
	Short: "List notes",
	Long:  `List notes in the order they were written, optionally for one content unit, only open ones, or matching a search query.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchFlag, _ := cmd.Flags().GetString("search")
		openFlag, _ := cmd.Flags().GetBool("open")
		limitFlag, _ := cmd.Flags().GetInt("limit")

		var slug string
		if len(args) == 1 {
			slug = args[0]
		}

		var notes []*models.Note
		if searchFlag != "" {
			found, err := appState.SearchNotes(cmd.Context(), searchFlag, limitFlag)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			for _, n := range found {
				if (slug == "" || n.ContentID == slug) && !(openFlag && n.Resolved) {
					notes = append(notes, n)
				}
			}
		} else {
			notes = appState.ListNotes(slug, openFlag)
			if limitFlag > 0 && len(notes) > limitFlag {
				notes = notes[:limitFlag]
			}
		}

		if len(notes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notes found.")
			return nil
		}
		for _, note := range notes {
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatNoteListItem(note))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "full-text search query")
	listCmd.Flags().BoolP("open", "o", false, "only unresolved notes")
	listCmd.Flags().IntP("limit", "l", 50, "max results")
	rootCmd.AddCommand(listCmd)
}
