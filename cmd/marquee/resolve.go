package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/marquee/internal/source"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		limit  int
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [file...]",
		Short: "Resolve every record in one or more files",
		Long: `The resolve command reads records from each file (or stdin when no file
or "-" is given) and prints one resolved display identity per record.
Records that cannot be decoded are logged and skipped.

Example:
  marquee resolve issues.ndjson
  marquee resolve events.yaml -o text --features grouping-title-ui
  cat issues.ndjson | marquee resolve --dedup 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") {
				a.cfg.Source.Limit = limit
			}
			return runResolve(cmd, a, args, strict)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "read at most this many records per file (0 = all)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any record was skipped")
	return cmd
}

func runResolve(cmd *cobra.Command, a *app, paths []string, strict bool) error {
	if len(paths) == 0 {
		paths = []string{""}
	}

	p, err := buildPipeline(a.cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	params := source.QueryParams{Limit: a.cfg.Source.Limit}
	for _, path := range paths {
		if err := p.Query(cmd.Context(), sourceConfig(a.cfg, path, false), params); err != nil {
			p.Close()
			return err
		}
	}
	if err := p.Close(); err != nil {
		return err
	}

	if n := p.Skipped(); strict && n > 0 {
		return fmt.Errorf("%d record(s) could not be resolved", n)
	}
	return nil
}
