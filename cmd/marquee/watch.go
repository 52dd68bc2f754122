package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/marquee/internal/pipeline"
)

func newWatchCmd(a *app) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Resolve records as they are appended to a file",
		Long: `The watch command resolves the records already in an NDJSON file, then
keeps following it and resolves new lines as they are written. It stops on
SIGINT or SIGTERM, or when the file is removed.

Example:
  marquee watch /var/log/issues.ndjson -o text
  marquee watch issues.ndjson --dedup 30s --output-file resolved.ndjson`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("follow") {
				follow = a.cfg.Source.Follow
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runWatch(cmd, a, path, follow)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", true, "keep reading appended lines (default from MARQUEE_FOLLOW)")
	return cmd
}

func runWatch(cmd *cobra.Command, a *app, path string, follow bool) error {
	p, err := buildPipeline(a.cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	srcCfg := sourceConfig(a.cfg, path, follow)
	slog.Info("watching", "source", srcCfg.Provider, "path", srcCfg.Path, "follow", follow)

	streamErr := p.Stream(ctx, srcCfg)
	closeErr := closeWithTimeout(p, a.cfg.ShutdownTimeout)

	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		return streamErr
	}
	return closeErr
}

// closeWithTimeout bounds how long flushing outputs may delay exit.
func closeWithTimeout(p *pipeline.Pipeline, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- p.Close() }()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timed out after %v", timeout)
	}
}
