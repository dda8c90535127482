// Package importer runs one Dockerfile import end to end: path check, read,
// conversion, write and optionally opening the result in a viewer.
package importer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/dockbook/internal/convert"
	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/logfields"
	"git.home.luguber.info/inful/dockbook/internal/metrics"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
	"git.home.luguber.info/inful/dockbook/internal/observability"
	"git.home.luguber.info/inful/dockbook/internal/source"
	"git.home.luguber.info/inful/dockbook/internal/viewer"
)

// Stage names used for logging and metrics.
const (
	StageCheck   = "check"
	StageRead    = "read"
	StageConvert = "convert"
	StageWrite   = "write"
	StageOpen    = "open"
)

// DefaultSuffix is appended to the source path to name the notebook.
const DefaultSuffix = ".ipynb"

// Options control a single Import call.
type Options struct {
	// DryRun converts without writing; the viewer is not opened.
	DryRun bool
	// Open hands the written notebook to the viewer.
	Open bool
}

// Result describes a finished import.
type Result struct {
	Source        string
	Output        string
	Document      *notebook.Document
	CodeCells     int
	MarkdownCells int
	Written       bool
	Opened        bool
	Duration      time.Duration
}

// Service imports Dockerfiles through a source.Backend.
type Service struct {
	backend   source.Backend
	converter *convert.Converter
	viewer    viewer.Viewer
	recorder  metrics.Recorder
	suffix    string
}

// NewService creates a Service with a UUID converter, no viewer and no metrics.
func NewService(backend source.Backend) *Service {
	return &Service{
		backend:   backend,
		converter: convert.NewConverter(),
		viewer:    viewer.Noop{},
		recorder:  metrics.NoopRecorder{},
		suffix:    DefaultSuffix,
	}
}

// WithConverter replaces the converter (tests inject deterministic ids).
func (s *Service) WithConverter(c *convert.Converter) *Service {
	s.converter = c
	return s
}

// WithViewer sets the viewer used when Options.Open is true.
func (s *Service) WithViewer(v viewer.Viewer) *Service {
	s.viewer = v
	return s
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	s.recorder = r
	return s
}

// WithSuffix sets the output suffix. Empty keeps the current one.
func (s *Service) WithSuffix(suffix string) *Service {
	if suffix != "" {
		s.suffix = suffix
	}
	return s
}

// Backend returns the backend the service reads from and writes to.
func (s *Service) Backend() source.Backend { return s.backend }

// Import converts the Dockerfile at path. Path check failures are terminal
// and nothing is written. A viewer failure is logged and recorded but does
// not fail the import, the notebook already exists at that point.
func (s *Service) Import(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	ctx = observability.WithConversionID(ctx, uuid.NewString())
	ctx = observability.WithSource(ctx, path)
	ctx = observability.WithBackend(ctx, s.backend.Name())

	result := &Result{Source: path}
	finish := func(outcome metrics.Outcome, err error) (*Result, error) {
		result.Duration = time.Since(start)
		s.recorder.IncConversionOutcome(outcome)
		s.recorder.ObserveConversionDuration(result.Duration)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	if sctx, err := s.stage(ctx, StageCheck, func(ctx context.Context) error {
		p, err := source.CheckPath(ctx, s.backend, path)
		path = p
		return err
	}); err != nil {
		observability.WarnContext(sctx, "Rejected import", logfields.Error(err))
		return finish(outcomeFor(err, metrics.OutcomeRejected), err)
	}
	result.Source = path
	result.Output = source.OutputPath(path, s.suffix)

	var text string
	if sctx, err := s.stage(ctx, StageRead, func(ctx context.Context) error {
		t, err := s.backend.ReadText(ctx, path)
		text = t
		return err
	}); err != nil {
		observability.ErrorContext(sctx, "Failed to read Dockerfile", logfields.Error(err))
		return finish(outcomeFor(err, metrics.OutcomeFailed), err)
	}

	_, _ = s.stage(ctx, StageConvert, func(context.Context) error {
		result.Document = s.converter.Convert(text)
		return nil
	})
	counts := result.Document.CountByType()
	result.CodeCells = counts[notebook.CellTypeCode]
	result.MarkdownCells = counts[notebook.CellTypeMarkdown]
	s.recorder.AddCells(string(notebook.CellTypeCode), result.CodeCells)
	s.recorder.AddCells(string(notebook.CellTypeMarkdown), result.MarkdownCells)

	if opts.DryRun {
		observability.InfoContext(ctx, "Converted Dockerfile (dry run)",
			logfields.Cells(len(result.Document.Cells)),
			logfields.CodeCells(result.CodeCells),
			logfields.MarkdownCells(result.MarkdownCells))
		return finish(metrics.OutcomeDryRun, nil)
	}

	if sctx, err := s.stage(ctx, StageWrite, func(ctx context.Context) error {
		return s.backend.WriteDocument(ctx, result.Output, result.Document)
	}); err != nil {
		observability.ErrorContext(sctx, "Failed to write notebook",
			logfields.Output(result.Output), logfields.Error(err))
		return finish(outcomeFor(err, metrics.OutcomeFailed), err)
	}
	result.Written = true

	observability.InfoContext(ctx, "Imported Dockerfile",
		logfields.Output(result.Output),
		logfields.Cells(len(result.Document.Cells)),
		logfields.CodeCells(result.CodeCells),
		logfields.MarkdownCells(result.MarkdownCells),
		logfields.Duration(time.Since(start)))

	if opts.Open {
		if sctx, err := s.stage(ctx, StageOpen, func(ctx context.Context) error {
			return s.viewer.Open(ctx, result.Output)
		}); err != nil {
			observability.WarnContext(sctx, "Could not open notebook",
				logfields.Output(result.Output), logfields.Error(err))
			s.recorder.IncViewerFailure()
		} else {
			result.Opened = true
		}
	}

	return finish(metrics.OutcomeSuccess, nil)
}

// stage runs fn under a stage log context and records its duration. The
// returned context carries the stage for logging.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) (context.Context, error) {
	ctx = observability.WithStage(ctx, name)
	started := time.Now()
	err := fn(ctx)
	s.recorder.ObserveStageDuration(name, time.Since(started))
	observability.DebugContext(ctx, "Stage finished", logfields.Duration(time.Since(started)))
	return ctx, err
}

func outcomeFor(err error, fallback metrics.Outcome) metrics.Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeCanceled
	}
	if cerrors.IsCategory(err, cerrors.CategoryInvalidInput) || cerrors.IsNotFound(err) {
		return metrics.OutcomeRejected
	}
	return fallback
}
