// ABOUTME: MCP command to start the MCP server.
// ABOUTME: Runs on stdio until stdin closes or a signal arrives, then flushes notes.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harper/marginalia/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long:  `Start the Model Context Protocol server for AI agent integration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := mcp.NewServer(appState, version)
		eg, ctx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			defer stop()
			return server.Serve(ctx)
		})
		eg.Go(func() error {
			<-ctx.Done()
			if err := appState.Notes.Flush(context.WithoutCancel(ctx)); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
			return nil
		})

		if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
