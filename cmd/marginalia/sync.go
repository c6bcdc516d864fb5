// ABOUTME: Sync command for the charm note backend.
// ABOUTME: Pushes and pulls notes against the configured charm server.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync notes with charm",
	Long:  `Sync the charm-backed note collection with the charm server. Requires backend: charm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appState.Sync(cmd.Context()); err != nil {
			return err
		}

		msg := fmt.Sprintf("Synced %d notes", len(appState.Notes.All()))
		if id, err := appState.Charm.ID(); err == nil {
			msg += fmt.Sprintf(" as %s", id)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(msg))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
