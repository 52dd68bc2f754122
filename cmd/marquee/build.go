package main

import (
	"fmt"
	"io"
	"time"

	"github.com/crimson-sun/marquee/internal/config"
	"github.com/crimson-sun/marquee/internal/engine"
	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/engine/dedup"
	"github.com/crimson-sun/marquee/internal/engine/resolver"
	"github.com/crimson-sun/marquee/internal/output"
	"github.com/crimson-sun/marquee/internal/output/async"
	"github.com/crimson-sun/marquee/internal/output/file"
	"github.com/crimson-sun/marquee/internal/output/multi"
	"github.com/crimson-sun/marquee/internal/output/stdout"
	"github.com/crimson-sun/marquee/internal/output/webhook"
	"github.com/crimson-sun/marquee/internal/pipeline"
	"github.com/crimson-sun/marquee/internal/platform"
	"github.com/crimson-sun/marquee/internal/source"

	// Register source implementations.
	_ "github.com/crimson-sun/marquee/internal/source/file"
)

func parseWindow(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --dedup window %q: %w", s, err)
	}
	return d, nil
}

func buildEngine(cfg config.Config) *engine.Engine {
	res := resolver.New(platform.Default)
	cmp := compactor.New(compactor.ParseVerbosity(cfg.Engine.Verbosity))
	return engine.New(res, cmp, engine.Settings{
		Features: cfg.Engine.Features,
		Grouping: cfg.Engine.Grouping,
	})
}

// buildOutput assembles stdout plus the optional file and webhook sinks.
func buildOutput(cfg config.Config, w io.Writer) (output.Output, error) {
	verbosity := compactor.ParseVerbosity(cfg.Engine.Verbosity)
	enc, err := output.ParseEncoding(cfg.Output.Encoding)
	if err != nil {
		return nil, err
	}

	outs := []output.Output{
		stdout.New(verbosity, cfg.Output.Pretty, stdout.WithEncoding(enc), stdout.WithWriter(w)),
	}

	if cfg.Output.FilePath != "" {
		f, err := file.New(cfg.Output.FilePath, verbosity,
			file.WithMaxSize(cfg.Output.FileMaxSize),
			file.WithMaxBackups(cfg.Output.FileMaxBackups),
		)
		if err != nil {
			return nil, err
		}
		outs = append(outs, f)
	}

	if cfg.Output.WebhookURL != "" {
		hook := webhook.New(cfg.Output.WebhookURL,
			webhook.WithHeaders(cfg.Output.WebhookHeaders),
			webhook.WithBatchSize(cfg.Output.WebhookBatch),
			webhook.WithVerbosity(verbosity),
		)
		// A slow endpoint must not stall resolution; lossy delivery is acceptable.
		outs = append(outs, async.New(hook, async.WithDropOnFull()))
	}

	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}

func buildSource(cfg config.Config) (source.Source, error) {
	ctor, err := source.Get(cfg.Source.Provider)
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

func buildPipeline(cfg config.Config, w io.Writer) (*pipeline.Pipeline, error) {
	src, err := buildSource(cfg)
	if err != nil {
		return nil, err
	}
	out, err := buildOutput(cfg, w)
	if err != nil {
		return nil, err
	}

	var opts []pipeline.Option
	if cfg.Engine.DedupWindow > 0 {
		d := dedup.New(dedup.Config{Window: cfg.Engine.DedupWindow})
		opts = append(opts,
			pipeline.WithDedup(d, cfg.Engine.DedupWindow),
			pipeline.WithMaxBufferSize(cfg.Engine.MaxBufferSize),
		)
	}
	return pipeline.New(src, buildEngine(cfg), out, opts...), nil
}

func sourceConfig(cfg config.Config, path string, follow bool) source.Config {
	if path == "" {
		path = cfg.Source.Path
	}
	return source.Config{
		Provider: cfg.Source.Provider,
		Path:     path,
		Follow:   follow,
	}
}
