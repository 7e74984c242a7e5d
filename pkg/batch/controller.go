package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/menta2k/image-fitter/internal/utils"
	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/strategy"
	"github.com/menta2k/image-fitter/pkg/watermark"
)

// State of a Controller
type State int32

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return "idle"
}

// NoFilesMessage is the status reported when a run has nothing to process
const NoFilesMessage = "No image files found in the input folder"

// FileError is a failure isolated to one input file
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string { return e.File + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Summary is the outcome of a run
type Summary struct {
	RunID     string
	State     State
	Total     int
	Processed int
	Errors    int
	// Degraded counts files whose outpaint margins were left empty
	Degraded int
	Failures []FileError
	Outputs  []string
	Duration time.Duration
}

// Controller drives the per-file loop. A Controller runs one job at a time;
// Cancel may be called from any goroutine.
type Controller struct {
	driver   editor.Driver
	reporter Reporter
	log      zerolog.Logger

	state     atomic.Int32
	cancelled atomic.Bool
}

// NewController creates a controller. A nil reporter discards progress.
func NewController(d editor.Driver, r Reporter, log zerolog.Logger) *Controller {
	if r == nil {
		r = Funcs{}
	}
	return &Controller{driver: d, reporter: r, log: log}
}

// State returns the current state
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Cancel requests an abort. It takes effect before the next file starts;
// the file in progress finishes first. A request made before Run starts
// aborts that run before its first file.
func (c *Controller) Cancel() {
	c.cancelled.Store(true)
}

// Run validates job and processes its files in order. The returned error is
// non-nil only for configuration errors and ErrAlreadyRunning; per-file
// failures are reported in the Summary. Cancelling ctx behaves like Cancel.
func (c *Controller) Run(ctx context.Context, job Job) (Summary, error) {
	if c.State() == Running {
		return Summary{}, ErrAlreadyRunning
	}
	if err := job.Validate(); err != nil {
		return Summary{}, err
	}
	strat, err := job.Strategy()
	if err != nil {
		return Summary{}, err
	}

	prev := c.State()
	if prev == Running || !c.state.CompareAndSwap(int32(prev), int32(Running)) {
		return Summary{}, ErrAlreadyRunning
	}

	sum := Summary{RunID: uuid.NewString(), Total: len(job.InputFiles)}
	log := c.log.With().Str("run_id", sum.RunID).Logger()

	if len(job.InputFiles) == 0 {
		log.Info().Msg(NoFilesMessage)
		c.reporter.OnStatus(NoFilesMessage)
		sum.State = Completed
		c.finish(Completed)
		return sum, nil
	}
	if err := utils.EnsureDir(job.OutputFolder); err != nil {
		c.state.Store(int32(prev))
		return Summary{}, fmt.Errorf("%w: output folder %s: %v", ErrInvalidJob, job.OutputFolder, err)
	}

	start := time.Now()
	log.Info().
		Int("files", sum.Total).
		Str("method", string(job.Method)).
		Str("target", job.Target.String()).
		Str("output", job.OutputFolder).
		Msg("batch started")

	// file work is not interrupted by ctx; cancellation is observed between files
	fileCtx := context.WithoutCancel(ctx)
	warned := false
	sum.State = Completed

	for i, path := range job.InputFiles {
		if c.cancelled.Load() || ctx.Err() != nil {
			sum.State = Aborted
			break
		}
		name := filepath.Base(path)
		c.reporter.OnProgress(float64(i) / float64(sum.Total) * 100)
		c.reporter.OnStatus(name)

		out := utils.OutputPath(job.OutputFolder, path)
		res, err := c.processFile(fileCtx, job, strat, path, out)
		if err != nil {
			sum.Errors++
			sum.Failures = append(sum.Failures, FileError{File: name, Err: err})
			log.Error().Err(err).Str("file", name).Msg("failed to process file")
			c.reporter.OnStatus(fmt.Sprintf("Error processing %s: %v", name, err))
			continue
		}
		if res.Degraded {
			sum.Degraded++
			if !warned {
				warned = true
				log.Warn().Str("file", name).Str("reason", res.Warning).Msg("outpaint unavailable, margins left empty")
				c.reporter.OnStatus("Warning: outpaint is not available, margins are left empty")
			}
		}
		sum.Processed++
		sum.Outputs = append(sum.Outputs, out)
	}

	sum.Duration = time.Since(start)
	if sum.State == Completed {
		c.reporter.OnProgress(100)
		c.reporter.OnStatus(fmt.Sprintf("Completed: %d processed, %d errors", sum.Processed, sum.Errors))
	} else {
		c.reporter.OnStatus(fmt.Sprintf("Cancelled: %d processed, %d errors", sum.Processed, sum.Errors))
	}
	c.reporter.OnComplete(sum.Processed, sum.Errors)
	log.Info().
		Str("state", sum.State.String()).
		Int("processed", sum.Processed).
		Int("errors", sum.Errors).
		Int("degraded", sum.Degraded).
		Dur("duration", sum.Duration).
		Msg("batch finished")

	c.finish(sum.State)
	return sum, nil
}

// finish records the terminal state and consumes any pending cancel request
func (c *Controller) finish(s State) {
	c.cancelled.Store(false)
	c.state.Store(int32(s))
}

// processFile runs one file on a fresh document that is always closed
// unsaved, whatever happens. Panics from the driver become errors.
func (c *Controller) processFile(ctx context.Context, job Job, strat strategy.Strategy, path, out string) (res strategy.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	doc, err := c.driver.Open(ctx, path)
	if err != nil {
		return res, fmt.Errorf("failed to open: %w", err)
	}
	defer func() {
		if cerr := c.driver.Close(ctx, doc); cerr != nil && !errors.Is(cerr, editor.ErrDocumentClosed) {
			c.log.Debug().Err(cerr).Str("file", doc.Name()).Msg("failed to close document")
		}
	}()

	plan, err := strat.Plan(doc.Size(), job.Target)
	if err != nil {
		return res, err
	}
	c.log.Debug().Str("file", doc.Name()).Str("plan", plan.String()).Msg("executing plan")
	if res, err = plan.Execute(ctx, c.driver, doc); err != nil {
		return res, err
	}

	if job.Watermark.Active() {
		if _, err = watermark.Apply(ctx, c.driver, doc, *job.Watermark, plan.ContentRect); err != nil {
			return res, err
		}
	}

	if err = c.driver.EncodeAndSave(ctx, doc, out, job.Quality); err != nil {
		return res, fmt.Errorf("failed to save: %w", err)
	}
	return res, nil
}
