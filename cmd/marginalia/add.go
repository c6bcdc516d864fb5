// ABOUTME: Add command for highlighting a passage and attaching a note.
// ABOUTME: Selects by phrase or byte offsets, then drives the selection controller.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/anchor"
	"github.com/harper/marginalia/internal/ui"
)

var addCmd = &cobra.Command{
	Use:   "add <slug>",
	Short: "Add a note to a highlighted passage",
	Long: `Highlight a passage of a content unit and attach a note to it.
Select the passage with --select (optionally --occurrence N), or with --start and --end byte offsets into the content's text.
The note text comes from --text, or from $EDITOR when omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		phrase, _ := cmd.Flags().GetString("select")
		occurrence, _ := cmd.Flags().GetInt("occurrence")
		text, _ := cmd.Flags().GetString("text")
		ctx := cmd.Context()

		var span anchor.Span
		switch {
		case phrase != "":
			var err error
			span, err = appState.FindPhrase(ctx, slug, phrase, occurrence)
			if err != nil {
				return err
			}
		case cmd.Flags().Changed("start") && cmd.Flags().Changed("end"):
			span.Start, _ = cmd.Flags().GetInt("start")
			span.End, _ = cmd.Flags().GetInt("end")
		default:
			return fmt.Errorf("select a passage with --select or --start/--end")
		}

		if strings.TrimSpace(text) == "" {
			edited, err := openEditor("")
			if err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}
			text = edited
		}

		note, err := appState.Annotate(ctx, slug, span, text)
		if err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added note %s on %s", note.ShortID(), ui.Quote(note.HighlightedText, 40))))
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("select", "s", "", "passage to highlight")
	addCmd.Flags().IntP("occurrence", "n", 1, "which occurrence of the passage (1-based)")
	addCmd.Flags().Int("start", 0, "selection start (byte offset)")
	addCmd.Flags().Int("end", 0, "selection end (byte offset)")
	addCmd.Flags().StringP("text", "t", "", "note text (markdown)")
	rootCmd.AddCommand(addCmd)
}
