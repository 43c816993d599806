package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/woozymasta/kmldoc/internal/config"
	"github.com/woozymasta/kmldoc/internal/logger"
	"github.com/woozymasta/kmldoc/internal/processor"
	"github.com/woozymasta/kmldoc/internal/resource"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES" description:"Limit processing to specific document names or aliases"`
	OutputDir   string   `short:"o" long:"out"         env:"OUTPUT_DIR"  description:"Output directory, overrides the configuration"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Documents processed in parallel" default:"4"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing overlay images"`
	Minify      bool     `short:"m" long:"minify"      description:"Minify written KML and GeoJSON"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	// Filter documents if limit is set
	docsToProcess := cfg.Documents
	if len(opts.Limit) > 0 {
		docsToProcess = make([]config.Document, 0)
		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			d, ok := cfg.Find(limitName)
			if !ok {
				log.Error().
					Str("name", limitName).
					Msg("Document specified in --limit not found in configuration")
				continue
			}
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			docsToProcess = append(docsToProcess, d)
		}
	}

	log.Info().
		Int("documents_total", len(cfg.Documents)).
		Int("documents_queued", len(docsToProcess)).
		Str("out", cfg.Output.Dir).
		Msg("Starting loader")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resolver := resource.Default(cfg.Resolver.HTTPOptions())
	exportOpts := processor.ExportOptions{
		ImageOptions: processor.ImageOptions{
			MaxSize: cfg.Output.ImageMaxSize,
			Quality: cfg.Output.WebPQuality,
		},
		DefaultStyle: cfg.DefaultStyle,
		Force:        opts.Force,
		Minify:       opts.Minify || cfg.Output.Minify,
	}

	results := processor.ProcessAll(ctx, docsToProcess, opts.Concurrency, func(ctx context.Context, d config.Document) error {
		doc, err := processor.LoadDocument(d.Path, resolver)
		if err != nil {
			return err
		}
		doc.LoadImages(ctx)
		return processor.ExportDocument(ctx, doc, filepath.Join(cfg.Output.Dir, d.Name), exportOpts)
	})

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Error().
				Err(res.Err).
				Str("document", res.Item.Name).
				Msg("Failed to process document")
			continue
		}
		log.Debug().
			Str("document", res.Item.Name).
			Dur("duration", res.Duration).
			Msg("Document processed")
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}
	log.Info().Msg("Loader finished successfully")
}
