// ABOUTME: Root command wiring config, logging, and the application.
// ABOUTME: Opens the app before each command and closes it afterwards.

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/app"
	"github.com/harper/marginalia/internal/config"
	"github.com/harper/marginalia/internal/logx"
	"github.com/harper/marginalia/internal/selection"
	"github.com/harper/marginalia/internal/ui"
)

var appState *app.App

var rootCmd = &cobra.Command{
	Use:           "marginalia",
	Short:         "Highlight passages and keep notes in the margin",
	Long:          `marginalia anchors notes to highlighted passages of HTML content and re-applies the highlights whenever the content is rendered.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dbPath, _ := cmd.Flags().GetString("db")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}

		logger, err := logx.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		host := selection.HostFunc(func(id uuid.UUID) {
			n, ok := appState.Notes.Get(id)
			if !ok {
				return
			}
			fmt.Fprint(out, ui.FormatNoteHeader(n))
			text, _ := ui.FormatNoteText(n.Text)
			fmt.Fprint(out, text)
		})

		appState, err = app.Open(cmd.Context(), cfg, logger, app.WithHost(host))
		if err != nil {
			return fmt.Errorf("failed to open marginalia: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appState == nil {
			return nil
		}
		err := appState.Close()
		appState = nil
		return err
	},
}

func Execute() error {
	rootCmd.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), ui.Error(err.Error()))
	}
	if appState != nil {
		_ = appState.Close()
		appState = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $XDG_CONFIG_HOME/marginalia/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database path (overrides config and MARGINALIA_DB)")
}
