package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	imagefitter "github.com/menta2k/image-fitter"
	"github.com/menta2k/image-fitter/internal/config"
	"github.com/menta2k/image-fitter/internal/logging"
	"github.com/menta2k/image-fitter/pkg/batch"
)

func main() {
	var cfgPath, initPath string
	var dryRun bool

	flag.StringVar(&cfgPath, "config", config.GetConfigPath(), "config file (json or yaml); FITTER_* env vars override it")
	flag.StringVar(&initPath, "init-config", "", "write the effective configuration to this path and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "print each file's editing plan without writing anything")

	in := flag.String("in", "", "input folder")
	out := flag.String("out", "", "output folder (default <in>/processed_<timestamp>)")
	width := flag.Int("width", 0, "target width in pixels")
	height := flag.Int("height", 0, "target height in pixels")
	method := flag.String("method", "", "fill method: letterbox|crop|outpaint")
	bg := flag.String("bg", "", "letterbox background color (#RRGGBB)")
	axis := flag.String("axis", "", "crop primary axis: width|height")
	quality := flag.Int("quality", 0, "JPEG quality 1-12")
	wmFile := flag.String("watermark", "", "watermark image; enables the watermark step")
	opacity := flag.Int("opacity", 0, "watermark opacity 10-100")
	blend := flag.String("blend", "", "watermark blend mode")
	sizing := flag.String("sizing", "", "watermark sizing: original|contain|cover")
	probes := flag.String("probes", "", "comma separated outpaint methods: generative,blur,edge")
	inpaintURL := flag.String("inpaint-url", "", "img2img server for generative outpaint")
	level := flag.String("log-level", "", "log level: debug|info|warn|error")
	pretty := flag.Bool("pretty", false, "human readable log output")

	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// explicitly set flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Output.InputDir = *in
		case "out":
			cfg.Output.OutputDir = *out
		case "width":
			cfg.Target.Width = *width
		case "height":
			cfg.Target.Height = *height
		case "method":
			cfg.Fill.Method = *method
		case "bg":
			cfg.Fill.Background = *bg
		case "axis":
			cfg.Fill.CropPrimaryAxis = *axis
		case "quality":
			cfg.Output.Quality = *quality
		case "watermark":
			cfg.Watermark.Enabled = *wmFile != ""
			cfg.Watermark.File = *wmFile
		case "opacity":
			cfg.Watermark.Opacity = *opacity
		case "blend":
			cfg.Watermark.BlendMode = *blend
		case "sizing":
			cfg.Watermark.Sizing = *sizing
		case "probes":
			cfg.Outpaint.Probes = strings.Split(*probes, ",")
		case "inpaint-url":
			cfg.Outpaint.InpaintURL = *inpaintURL
		case "log-level":
			cfg.Log.Level = *level
		case "pretty":
			cfg.Log.Pretty = *pretty
		}
	})

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	if initPath != "" {
		if err := cfg.SaveToFile(initPath); err != nil {
			log.Fatal().Err(err).Msg("failed to write config")
		}
		log.Info().Str("path", initPath).Msg("wrote config")
		return
	}

	if cfg.Output.InputDir == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in folder [-method letterbox|crop|outpaint] [-width 1600 -height 2400] [-out folder] [-watermark logo.png] [-dry-run]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	fitter, err := imagefitter.New(cfg, log, batch.LogReporter{Log: log})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	files, err := fitter.ListInputFiles()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list input files")
	}

	ctx := context.Background()

	if dryRun {
		for _, p := range fitter.DescribePlans(ctx, files) {
			if p.Err != nil {
				fmt.Printf("%s: error: %v\n", p.File, p.Err)
				continue
			}
			fmt.Printf("%s (%s): %s\n", p.File, p.Size, p.Plan)
		}
		return
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Warn().Msg("interrupt received, stopping after the current file")
		fitter.Cancel()
	}()

	sum, err := fitter.ProcessFiles(ctx, files)
	if err != nil {
		log.Fatal().Err(err).Msg("batch not started")
	}
	for _, f := range sum.Failures {
		log.Error().Str("file", f.File).Err(f.Err).Msg("failed")
	}
	if sum.State == batch.Aborted || sum.Errors > 0 {
		os.Exit(1)
	}
}
