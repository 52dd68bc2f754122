package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/marquee/internal/codec"
	"github.com/crimson-sun/marquee/internal/config"
	"github.com/crimson-sun/marquee/internal/engine/crumbfilter"
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
)

func newCrumbsCmd(a *app) *cobra.Command {
	var (
		levels  []string
		search  string
		options bool
	)
	cmd := &cobra.Command{
		Use:   "crumbs [file]",
		Short: "Filter the console breadcrumbs of an event",
		Long: `The crumbs command reads a breadcrumb array (JSON or YAML) and prints the
console breadcrumbs that match the selected levels and search term.
Network and navigation breadcrumbs are never shown. Use --level issue to
select the breadcrumb of the event itself.

Example:
  marquee crumbs breadcrumbs.json --level error,warning
  marquee crumbs breadcrumbs.yaml --search timeout -o text
  marquee crumbs breadcrumbs.json --options`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			crumbs, err := readCrumbs(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			selected := crumbfilter.ParseLevels(levels)
			w := cmd.OutOrStdout()
			if options {
				_, err := fmt.Fprintln(w, strings.Join(crumbfilter.Options(crumbs, selected), "\n"))
				return err
			}
			items := crumbfilter.Filter{Levels: selected, Search: search}.Items(crumbs)
			return writeCrumbs(w, a.cfg, items)
		},
	}
	cmd.Flags().StringSliceVarP(&levels, "level", "l", nil, "levels to show: fatal, error, warning, info, debug, log, undefined, issue")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search term")
	cmd.Flags().BoolVar(&options, "options", false, "list the levels that can be selected instead of filtering")
	return cmd
}

func readCrumbs(stdin io.Reader, path string) ([]model.Crumb, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read crumbs: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return codec.DecodeCrumbsYAML(data)
	case ".json":
		return codec.DecodeCrumbsJSON(data)
	}
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '[' {
		return codec.DecodeCrumbsJSON(data)
	}
	return codec.DecodeCrumbsYAML(data)
}

func writeCrumbs(w io.Writer, cfg config.Config, crumbs []model.Crumb) error {
	enc, err := output.ParseEncoding(cfg.Output.Encoding)
	if err != nil {
		return err
	}
	if crumbs == nil {
		crumbs = []model.Crumb{}
	}

	switch enc {
	case output.EncodingYAML:
		ye := yaml.NewEncoder(w)
		ye.SetIndent(2)
		if err := ye.Encode(crumbs); err != nil {
			return err
		}
		return ye.Close()
	case output.EncodingText:
		for _, c := range crumbs {
			msg := ""
			if c.Message != nil {
				msg = *c.Message
			}
			if _, err := fmt.Fprintf(w, "%-9s %-12s %s\n", c.Level, c.Category, msg); err != nil {
				return err
			}
		}
		return nil
	default:
		je := json.NewEncoder(w)
		je.SetEscapeHTML(false)
		if cfg.Output.Pretty {
			je.SetIndent("", "  ")
		}
		return je.Encode(crumbs)
	}
}
