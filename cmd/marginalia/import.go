// ABOUTME: Import command for restoring notes from backup.
// ABOUTME: Reads JSON or YAML exports and merges notes by id.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/marginalia/internal/models"
	"github.com/harper/marginalia/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import notes",
	Long:  `Import notes from a JSON or YAML export. Notes whose id already exists are skipped.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		raw, err := readFile(path)
		if err != nil {
			return err
		}

		var export ExportData
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal([]byte(raw), &export)
		default:
			err = json.Unmarshal([]byte(raw), &export)
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		merged, added, skipped := mergeNotes(appState.Notes.All(), export.Notes)
		for _, msg := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", msg)
		}
		appState.Notes.Replace(cmd.Context(), merged)

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Imported %d notes", added)))
		return nil
	},
}

// mergeNotes appends incoming notes that are well-formed and not already present.
func mergeNotes(existing, incoming []*models.Note) ([]*models.Note, int, []string) {
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n.ID.String()] = true
	}

	var skipped []string
	added := 0
	merged := existing
	for _, n := range incoming {
		if n == nil {
			continue
		}
		draft := models.NoteDraft{ContentID: n.ContentID, HighlightedText: n.HighlightedText}
		if err := draft.Validate(); err != nil {
			skipped = append(skipped, fmt.Sprintf("skipping note %s: %v", n.ID, err))
			continue
		}
		if seen[n.ID.String()] {
			continue
		}
		seen[n.ID.String()] = true
		merged = append(merged, n)
		added++
	}
	return merged, added, skipped
}

func init() {
	rootCmd.AddCommand(importCmd)
}
