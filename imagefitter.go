// Package imagefitter fits a folder of images onto a fixed-size canvas.
//
// Every image is scaled to the target size with one of three fill methods:
//
//   - letterbox: fit inside the canvas and pad with a solid background color
//   - crop: cover the canvas and trim the overflow, centered
//   - outpaint: fit inside the canvas and synthesize the margins
//
// An optional watermark is centered over the image content, then each result
// is saved as a JPEG in the output folder.
//
// Basic usage:
//
//	cfg := config.Default()
//	cfg.Output.InputDir = "./photos"
//	fitter, err := imagefitter.New(cfg, logging.New("info", true), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	summary, err := fitter.ProcessFolder(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d processed, %d errors\n", summary.Processed, summary.Errors)
//
// Image editing goes through the editor.Driver interface. pkg/raster edits
// pixels in-process; pkg/recorder only tracks geometry and backs dry runs.
package imagefitter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/image-fitter/internal/config"
	"github.com/menta2k/image-fitter/internal/utils"
	"github.com/menta2k/image-fitter/pkg/batch"
	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/inpaint"
	"github.com/menta2k/image-fitter/pkg/raster"
	"github.com/menta2k/image-fitter/pkg/recorder"
	"github.com/menta2k/image-fitter/pkg/strategy"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Version of the image fitter library
const Version = "1.0.0"

// Fitter wires configuration, an editor driver and the batch controller
type Fitter struct {
	cfg        *config.Config
	driver     editor.Driver
	log        zerolog.Logger
	controller *batch.Controller
}

// FilePlan is the editing plan computed for one file without touching pixels
type FilePlan struct {
	File string
	Size types.Dimensions
	Plan strategy.Plan
	Err  error
}

// New creates a Fitter that edits with the in-process raster driver
func New(cfg *config.Config, log zerolog.Logger, reporter batch.Reporter) (*Fitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	probes, err := BuildProbes(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithDriver(cfg, raster.New(log, probes...), log, reporter)
}

// NewWithDriver creates a Fitter around an existing driver
func NewWithDriver(cfg *config.Config, d editor.Driver, log zerolog.Logger, reporter batch.Reporter) (*Fitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fitter{
		cfg:        cfg,
		driver:     d,
		log:        log,
		controller: batch.NewController(d, reporter, log),
	}, nil
}

// BuildProbes turns outpaint.probes into the ordered raster probe chain
func BuildProbes(cfg *config.Config) ([]raster.Probe, error) {
	probes := make([]raster.Probe, 0, len(cfg.Outpaint.Probes))
	for _, name := range cfg.Outpaint.Probes {
		if name == "generative" {
			c := inpaint.NewClient(cfg.Outpaint.InpaintURL, cfg.InpaintTimeout())
			if cfg.Outpaint.Prompt != "" {
				c.Prompt = cfg.Outpaint.Prompt
			}
			probes = append(probes, c)
			continue
		}
		p, err := raster.ProbeByName(name)
		if err != nil {
			return nil, err
		}
		probes = append(probes, p)
	}
	return probes, nil
}

// Strategy returns the configured fill strategy
func (f *Fitter) Strategy() (strategy.Strategy, error) {
	job, err := f.cfg.Job(nil, time.Now())
	if err != nil {
		return nil, err
	}
	return job.Strategy()
}

// PlanFor returns the plan the configured strategy produces for a source size
func (f *Fitter) PlanFor(source types.Dimensions) (strategy.Plan, error) {
	s, err := f.Strategy()
	if err != nil {
		return strategy.Plan{}, err
	}
	return s.Plan(source, types.Dimensions{Width: f.cfg.Target.Width, Height: f.cfg.Target.Height})
}

// DescribePlans reads only image headers and returns each file's plan
func (f *Fitter) DescribePlans(ctx context.Context, files []string) []FilePlan {
	probe := recorder.New()
	plans := make([]FilePlan, 0, len(files))
	for _, path := range files {
		fp := FilePlan{File: filepath.Base(path)}
		doc, err := probe.Open(ctx, path)
		if err != nil {
			fp.Err = err
			plans = append(plans, fp)
			continue
		}
		fp.Size = doc.Size()
		fp.Plan, fp.Err = f.PlanFor(fp.Size)
		probe.Close(ctx, doc)
		plans = append(plans, fp)
	}
	return plans
}

// ListInputFiles returns the images in the configured input folder
func (f *Fitter) ListInputFiles() ([]string, error) {
	if f.cfg.Output.InputDir == "" {
		return nil, fmt.Errorf("%w: input folder is not set", batch.ErrInvalidJob)
	}
	return utils.ListImageFiles(f.cfg.Output.InputDir)
}

// ProcessFolder processes every image in the configured input folder
func (f *Fitter) ProcessFolder(ctx context.Context) (batch.Summary, error) {
	files, err := f.ListInputFiles()
	if err != nil {
		return batch.Summary{}, err
	}
	return f.ProcessFiles(ctx, files)
}

// ProcessFiles processes an explicit list of files
func (f *Fitter) ProcessFiles(ctx context.Context, files []string) (batch.Summary, error) {
	job, err := f.cfg.Job(files, time.Now())
	if err != nil {
		return batch.Summary{}, fmt.Errorf("%w: %v", batch.ErrInvalidJob, err)
	}
	return f.controller.Run(ctx, job)
}

// Cancel stops the running batch before its next file
func (f *Fitter) Cancel() {
	f.controller.Cancel()
}

// State reports the batch controller state
func (f *Fitter) State() batch.State {
	return f.controller.State()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
