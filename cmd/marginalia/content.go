// ABOUTME: Content commands for managing the units that notes are anchored to.
// ABOUTME: Covers add, list, show, rm, order, rename, and text sync with optional watch.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/db"
	"github.com/harper/marginalia/internal/highlight"
	"github.com/harper/marginalia/internal/models"
	"github.com/harper/marginalia/internal/selection"
	"github.com/harper/marginalia/internal/ui"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage annotatable content",
}

var contentAddCmd = &cobra.Command{
	Use:   "add <slug>",
	Short: "Add a content unit",
	Long:  `Create a content unit from an HTML file. Extra text blocks, images, and code samples can be attached as further blocks.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		title, _ := cmd.Flags().GetString("title")
		category, _ := cmd.Flags().GetString("category")
		description, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetString("tags")
		file, _ := cmd.Flags().GetString("file")
		blockFiles, _ := cmd.Flags().GetStringArray("block-file")
		images, _ := cmd.Flags().GetStringArray("image")
		codeFiles, _ := cmd.Flags().GetStringArray("code-file")
		subject, _ := cmd.Flags().GetString("subject")

		var blocks []models.Block
		for _, path := range append([]string{file}, blockFiles...) {
			html, err := readFile(path)
			if err != nil {
				return err
			}
			blocks = append(blocks, models.NewTextBlock(html))
		}
		for _, img := range images {
			src, alt, _ := strings.Cut(img, "|")
			blocks = append(blocks, models.Block{ID: uuid.NewString(), Type: models.BlockImage, Src: src, Alt: alt})
		}
		for _, path := range codeFiles {
			code, err := readFile(path)
			if err != nil {
				return err
			}
			blocks = append(blocks, models.Block{
				ID:       uuid.NewString(),
				Type:     models.BlockCode,
				Code:     code,
				Language: strings.TrimPrefix(filepath.Ext(path), "."),
			})
		}

		if title == "" {
			title = slug
		}
		c := models.NewContent(slug, title, models.Category(category), blocks)
		c.Description = description
		c.Tags = splitTags(tags)

		if subject != "" {
			sub, err := db.GetSubject(cmd.Context(), appState.DB, subject)
			if err != nil {
				return fmt.Errorf("failed to get subject: %w", err)
			}
			if sub.Category != c.Category {
				return fmt.Errorf("%w: subject %s is %s", db.ErrSubjectCategory, sub.Slug, sub.Category)
			}
			c.SubjectID = sub.ID
		}

		if _, err := highlight.Parse(c.TextHTML()...); err != nil {
			return fmt.Errorf("failed to parse content: %w", err)
		}
		if err := db.CreateContent(cmd.Context(), appState.DB, c); err != nil {
			return fmt.Errorf("failed to create content: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created content %s (%d blocks)", c.Slug, len(c.Blocks))))
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content units",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		subject, _ := cmd.Flags().GetString("subject")

		filter := db.ContentFilter{Category: models.Category(category)}
		if subject != "" {
			sub, err := db.GetSubject(cmd.Context(), appState.DB, subject)
			if err != nil {
				return fmt.Errorf("failed to get subject: %w", err)
			}
			filter.SubjectID = sub.ID
		}

		contents, err := db.ListContents(cmd.Context(), appState.DB, filter)
		if err != nil {
			return fmt.Errorf("failed to list content: %w", err)
		}
		if len(contents) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No content found.")
			return nil
		}

		for _, c := range contents {
			sum := ui.ContentSummary{Content: c}
			for _, n := range appState.ListNotes(c.Slug, false) {
				if n.Resolved {
					sum.Resolved++
				} else {
					sum.Open++
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatContentListItem(sum))
		}
		return nil
	},
}

var contentShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a content unit and its blocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := db.GetContent(cmd.Context(), appState.DB, args[0])
		if err != nil {
			return fmt.Errorf("failed to get content: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.FormatContentHeader(c))
		for _, b := range c.Blocks {
			if b.Type != models.BlockText {
				fmt.Fprint(out, ui.FormatBlock(b))
				continue
			}
			doc, err := highlight.Parse(b.Text)
			if err != nil {
				return fmt.Errorf("failed to parse block %s: %w", b.ID, err)
			}
			fmt.Fprintln(out, doc.Text())
		}
		return nil
	},
}

var contentRmCmd = &cobra.Command{
	Use:   "rm <slug>",
	Short: "Remove a content unit",
	Long:  `Delete a content unit and every note anchored to it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		force, _ := cmd.Flags().GetBool("force")

		if !force {
			n := len(appState.ListNotes(slug, false))
			fmt.Fprintf(cmd.OutOrStdout(), "Delete content %q and its %d note(s)? [y/N] ", slug, n)
			if !confirm(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		removed, err := appState.DeleteContent(cmd.Context(), slug)
		if err != nil {
			return fmt.Errorf("failed to delete content: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted content %s and %d note(s)", slug, removed)))
		return nil
	},
}

var contentOrderCmd = &cobra.Command{
	Use:   "order <slug> <position>",
	Short: "Set a content unit's display position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		if err := db.SetContentOrder(cmd.Context(), appState.DB, args[0], pos); err != nil {
			return fmt.Errorf("failed to order content: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Moved %s to position %d", args[0], pos)))
		return nil
	},
}

var contentRenameCmd = &cobra.Command{
	Use:   "rename <slug> <new-slug>",
	Short: "Change a content unit's slug",
	Long:  `Give a content unit a new slug. Notes anchored to it move along.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		moved, err := appState.RenameContent(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to rename content: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Renamed %s to %s (%d note(s) moved)", args[0], args[1], moved)))
		return nil
	},
}

var contentSyncCmd = &cobra.Command{
	Use:   "sync <slug> <file>",
	Short: "Replace a content unit's text from a file",
	Long:  `Replace the text of a content unit with an HTML file and report notes whose passages no longer match. With --watch, re-sync whenever the file changes.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, path := args[0], args[1]
		watch, _ := cmd.Flags().GetBool("watch")

		html, err := readFile(path)
		if err != nil {
			return err
		}
		r, err := appState.SyncText(cmd.Context(), slug, html)
		if err != nil {
			return fmt.Errorf("failed to sync content: %w", err)
		}
		reportSync(cmd, r)

		if !watch {
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl-C to stop)\n", path)
		return appState.WatchText(cmd.Context(), slug, path, func(r *selection.Rendered, err error) {
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Error(err.Error()))
				return
			}
			reportSync(cmd, r)
		})
	},
}

func reportSync(cmd *cobra.Command, r *selection.Rendered) {
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Synced %s: %d note(s) placed", r.Content.Slug, len(r.Placed))))
	fmt.Fprint(cmd.OutOrStdout(), ui.FormatOrphans(r.Orphaned))
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, strings.ToLower(tag))
		}
	}
	return tags
}

func confirm(cmd *cobra.Command) bool {
	reader := bufio.NewReader(cmd.InOrStdin())
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func init() {
	contentAddCmd.Flags().StringP("title", "t", "", "content title (defaults to the slug)")
	contentAddCmd.Flags().StringP("category", "c", string(models.CategoryFinance), "category (finance|ai-ml|mathematics)")
	contentAddCmd.Flags().String("description", "", "short description")
	contentAddCmd.Flags().String("tags", "", "comma-separated tags")
	contentAddCmd.Flags().StringP("file", "f", "", "HTML file with the main text")
	contentAddCmd.Flags().StringArray("block-file", nil, "additional HTML text block (repeatable)")
	contentAddCmd.Flags().StringArray("image", nil, "image block as src|alt (repeatable)")
	contentAddCmd.Flags().StringArray("code-file", nil, "code block from a source file (repeatable)")
	contentAddCmd.Flags().StringP("subject", "s", "", "subject slug the content belongs to")
	_ = contentAddCmd.MarkFlagRequired("file")

	contentListCmd.Flags().StringP("category", "c", "", "filter by category")
	contentListCmd.Flags().StringP("subject", "s", "", "filter by subject slug")
	contentRmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	contentSyncCmd.Flags().BoolP("watch", "w", false, "re-sync when the file changes")

	contentCmd.AddCommand(contentAddCmd, contentListCmd, contentShowCmd, contentRmCmd, contentOrderCmd, contentRenameCmd, contentSyncCmd)
	rootCmd.AddCommand(contentCmd)
}
