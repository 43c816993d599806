package main

import (
	"bufio"
	"os"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/logger"
	"github.com/woozymasta/kmldoc/internal/processor"
	"github.com/woozymasta/kmldoc/internal/resource"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"in"     description:"Input document (.kml, .kmz, .geojson)" required:"true"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format, guessed from --out when empty" choice:"kml" choice:"geojson" choice:"yaml"`
	Minify bool   `short:"m" long:"minify" description:"Minify KML and GeoJSON output"`
	BBox   string `short:"b" long:"bbox"   description:"Keep only features intersecting west,south,east,north"`
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

	format := processor.Format(opts.Format)
	if format == "" {
		if f, ok := processor.FormatFromPath(opts.Output); ok {
			format = f
		} else {
			format = processor.FormatGeoJSON
		}
	}

	doc, err := processor.LoadDocument(opts.Input, resource.Default(resource.HTTPOptions{}))
	if err != nil {
		log.Fatal().Err(err).Str("in", opts.Input).Msg("Failed to load document")
	}

	for _, d := range doc.Diagnostics {
		log.Warn().Err(d).Msg("Dropped while parsing")
	}

	if opts.BBox != "" {
		box, err := geo.ParseBoundingBox(opts.BBox)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid --bbox")
		}
		doc = processor.Crop(doc, box)
	}

	if opts.Output != "" {
		if err := processor.SaveDocument(opts.Output, doc, format, opts.Minify); err != nil {
			log.Fatal().Err(err).Str("out", opts.Output).Msg("Failed to write document")
		}
		log.Info().Str("out", opts.Output).Str("format", string(format)).Msg("Document converted")
		return
	}

	w := bufio.NewWriter(os.Stdout)
	if err := processor.Encode(w, doc, format, opts.Minify); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode document")
	}
	if err := w.Flush(); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}
}
