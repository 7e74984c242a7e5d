// Package batch runs a fill strategy over a list of files, one document at a
// time, isolating per-file failures.
package batch

import (
	"errors"
	"fmt"

	"github.com/menta2k/image-fitter/internal/utils"
	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/strategy"
	"github.com/menta2k/image-fitter/pkg/types"
)

var (
	// ErrInvalidJob wraps every configuration error found before a run starts
	ErrInvalidJob = errors.New("invalid job")

	// ErrAlreadyRunning is returned when Run is called during a run
	ErrAlreadyRunning = errors.New("batch already running")
)

// Job is the input of one batch run
type Job struct {
	InputFiles   []string
	OutputFolder string
	// Quality is on the 1..12 JPEG scale
	Quality int
	Target  types.Dimensions

	Method types.FillMethod
	// Background is a #RRGGBB color, used by letterbox only
	Background  string
	PrimaryAxis types.Axis

	Watermark *types.WatermarkSettings
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidJob, fmt.Sprintf(format, args...))
}

// Validate checks every precondition of a run except creating the output folder
func (j *Job) Validate() error {
	if !j.Target.Valid() {
		return invalid("target dimensions must be positive, got %s", j.Target)
	}
	if j.Quality < editor.MinQuality || j.Quality > editor.MaxQuality {
		return invalid("quality must be between %d and %d, got %d", editor.MinQuality, editor.MaxQuality, j.Quality)
	}
	switch j.Method {
	case types.FillLetterbox:
		if !types.IsValidHex(j.Background) {
			return invalid("background color %q is not a #RRGGBB hex value", j.Background)
		}
	case types.FillCrop, types.FillOutpaint:
	default:
		return invalid("unknown fill method %q", j.Method)
	}
	if j.OutputFolder == "" {
		return invalid("output folder is not set")
	}
	if w := j.Watermark; w.Active() {
		if w.Source == "" {
			return invalid("watermark is enabled but no file is selected")
		}
		if !utils.FileExists(w.Source) {
			return invalid("watermark file %s does not exist", w.Source)
		}
		if w.Opacity < 10 || w.Opacity > 100 {
			return invalid("watermark opacity must be between 10 and 100, got %d", w.Opacity)
		}
	}
	return nil
}

// Strategy builds the fill strategy for the job
func (j *Job) Strategy() (strategy.Strategy, error) {
	opts := strategy.Options{PrimaryAxis: j.PrimaryAxis}
	if j.Method == types.FillLetterbox {
		bg, err := types.ParseHex(j.Background)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
		}
		opts.Background = bg
	}
	return strategy.New(j.Method, opts)
}
