// ABOUTME: Export command for backing up notes.
// ABOUTME: Supports JSON and YAML export formats.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/marginalia/internal/models"
	"github.com/harper/marginalia/internal/ui"
)

const exportVersion = "1.0"

type ExportData struct {
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Version    string         `json:"version" yaml:"version"`
	Notes      []*models.Note `json:"notes" yaml:"notes"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes",
	Long:  `Export every note to JSON or YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		slug, _ := cmd.Flags().GetString("content")

		export := ExportData{
			ExportedAt: time.Now(),
			Version:    exportVersion,
			Notes:      appState.ListNotes(slug, false),
		}
		if export.Notes == nil {
			export.Notes = []*models.Note{}
		}

		var data []byte
		var err error
		switch format {
		case "json":
			data, err = json.MarshalIndent(export, "", "  ")
		case "yaml":
			data, err = yaml.Marshal(export)
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
		if err != nil {
			return err
		}

		if outputPath == "" || outputPath == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Exported %d notes to %s", len(export.Notes), outputPath)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "export format (json|yaml)")
	exportCmd.Flags().StringP("output", "o", "", "output path")
	exportCmd.Flags().StringP("content", "c", "", "only notes on this content unit")
	rootCmd.AddCommand(exportCmd)
}
