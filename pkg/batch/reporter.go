package batch

import "github.com/rs/zerolog"

// Reporter receives progress from a run. Calls come from the run's goroutine
// and must not block.
type Reporter interface {
	OnProgress(percent float64)
	OnStatus(message string)
	OnComplete(processed, errors int)
}

// Funcs adapts plain functions to Reporter; nil fields are skipped
type Funcs struct {
	Progress func(percent float64)
	Status   func(message string)
	Complete func(processed, errors int)
}

func (f Funcs) OnProgress(percent float64) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

func (f Funcs) OnStatus(message string) {
	if f.Status != nil {
		f.Status(message)
	}
}

func (f Funcs) OnComplete(processed, errors int) {
	if f.Complete != nil {
		f.Complete(processed, errors)
	}
}

// LogReporter writes progress to a zerolog logger
type LogReporter struct {
	Log zerolog.Logger
}

func (r LogReporter) OnProgress(percent float64) {
	r.Log.Debug().Float64("percent", percent).Msg("progress")
}

func (r LogReporter) OnStatus(message string) {
	r.Log.Info().Msg(message)
}

func (r LogReporter) OnComplete(processed, errors int) {
	r.Log.Info().Int("processed", processed).Int("errors", errors).Msg("batch finished")
}
