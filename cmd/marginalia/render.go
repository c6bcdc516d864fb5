// ABOUTME: Render command for content with its highlights applied.
// ABOUTME: Emits annotated HTML or a colored terminal view.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/highlight"
	"github.com/harper/marginalia/internal/ui"
)

var renderCmd = &cobra.Command{
	Use:   "render <slug>",
	Short: "Render content with highlights",
	Long:  `Render a content unit with every note's highlight applied. Notes whose passage no longer matches are listed on stderr.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")

		r, err := appState.Controller.Render(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}

		var body string
		switch format {
		case "html":
			body = r.HTML + "\n"
		case "terminal":
			body = highlight.Terminal(r.Text, r.Marks) + "\n"
		default:
			return fmt.Errorf("unknown format: %s", format)
		}

		var w io.Writer = cmd.OutOrStdout()
		if outputPath != "" && outputPath != "-" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}

		fmt.Fprint(cmd.ErrOrStderr(), ui.FormatOrphans(r.Orphaned))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("format", "f", "terminal", "output format (html|terminal)")
	renderCmd.Flags().StringP("output", "o", "", "output file")
	rootCmd.AddCommand(renderCmd)
}
