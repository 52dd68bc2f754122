package main

import (
	"github.com/spf13/cobra"

	"github.com/crimson-sun/marquee/internal/config"
	"github.com/crimson-sun/marquee/internal/logging"
)

// app carries the resolved configuration from the root command to its subcommands.
type app struct {
	cfg config.Config

	configPath string
	logLevel   string
	features   []string
	grouping   bool
	verbosity  string
	encoding   string
	pretty     bool
	outFile    string
	dedup      string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "marquee",
		Short: "Resolve issue and event display titles",
		Long: `marquee reads issue, group and event records (NDJSON, JSON or YAML) and
prints how each one is displayed: its title, subtitle and tree label, a
one-line message, and a source location.

Configuration comes from MARQUEE_* environment variables, an optional YAML
file (--config), and flags, in increasing order of precedence.`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringSliceVar(&a.features, "features", nil, "enabled feature flags (custom-event-title, grouping-title-ui)")
	f.BoolVar(&a.grouping, "grouping", false, "resolve titles as the grouping details view does")
	f.StringVar(&a.verbosity, "verbosity", "", "message detail: minimal, standard, full")
	f.StringVarP(&a.encoding, "output", "o", "", "output encoding: json, yaml, text")
	f.BoolVar(&a.pretty, "pretty", false, "indent JSON output")
	f.StringVar(&a.outFile, "output-file", "", "also append NDJSON results to this file")
	f.StringVar(&a.dedup, "dedup", "", "collapse identical titles within this window, e.g. 5s (0 disables)")

	root.AddCommand(
		newResolveCmd(a),
		newWatchCmd(a),
		newCrumbsCmd(a),
		newVersionCmd(),
	)
	return root
}

// load builds the effective configuration: file or environment first, then
// any flags set explicitly on the command line.
func (a *app) load(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
		if err != nil {
			return err
		}
	} else {
		a.cfg = config.Load()
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.cfg.LogLevel = a.logLevel
	}
	if flags.Changed("features") {
		a.cfg.Engine.Features = a.features
	}
	if flags.Changed("grouping") {
		a.cfg.Engine.Grouping = a.grouping
	}
	if flags.Changed("verbosity") {
		a.cfg.Engine.Verbosity = a.verbosity
	}
	if flags.Changed("output") {
		a.cfg.Output.Encoding = a.encoding
	}
	if flags.Changed("pretty") {
		a.cfg.Output.Pretty = a.pretty
	}
	if flags.Changed("output-file") {
		a.cfg.Output.FilePath = a.outFile
	}
	if flags.Changed("dedup") {
		d, err := parseWindow(a.dedup)
		if err != nil {
			return err
		}
		a.cfg.Engine.DedupWindow = d
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}
	logging.Init(a.cfg.Output.Encoding == "json", logging.ParseLevel(a.cfg.LogLevel))
	return nil
}
