// Package application runs profile and transform jobs end to end: read the
// input, run the core pipeline, write the output and record the run.
//
// The CLI and the HTTP server both go through Service so that defaults,
// concurrency limits and run history behave the same everywhere.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvtool/internal/config"
	"github.com/JonMunkholm/csvtool/internal/core"
	"github.com/JonMunkholm/csvtool/internal/history"
	"github.com/JonMunkholm/csvtool/internal/logging"
	"github.com/JonMunkholm/csvtool/internal/reader"
)

// ErrNoInput is returned when a request names neither a file nor a stream.
var ErrNoInput = errors.New("no file provided")

// Service provides the profile and transform operations.
type Service struct {
	store    history.Store
	limiter  *Limiter
	defaults config.TransformConfig
	input    reader.Options
	now      func() time.Time
}

// NewService creates a Service. A nil store keeps history in memory.
func NewService(cfg *config.Config, store history.Store) *Service {
	if store == nil {
		store = history.NewMemoryStore(history.DefaultListLimit)
	}
	return &Service{
		store:    store,
		limiter:  NewLimiter(cfg.Server.MaxConcurrentJobs, cfg.Server.JobWaitTime),
		defaults: cfg.Transform,
		input: reader.Options{
			MaxFileSize: cfg.Input.MaxFileSize,
			Sheet:       cfg.Input.ExcelSheet,
		},
		now: time.Now,
	}
}

// Input identifies the table to read. When Reader is nil the file at Path is
// opened; otherwise Reader is parsed as Format and Path is only a label.
type Input struct {
	Path   string
	Reader io.Reader
	Format reader.Format
}

// ProfileRequest describes a profile job.
type ProfileRequest struct {
	Input     Input
	KeyColumn string // empty skips duplicate and code checks
}

// ProfileResult is the outcome of a profile job.
type ProfileResult struct {
	RunID  string
	Report *core.ProfileReport
}

// TransformRequest describes a transform job. Empty Case, Duplicates and
// KeyColumn fall back to the configured defaults.
type TransformRequest struct {
	Input      Input
	Columns    []string // "Source:Dest" or "Name" directives
	Case       string
	Duplicates string
	KeyColumn  string
	Output     string // file path; empty leaves writing to the caller
}

// TransformResult is the outcome of a transform job.
type TransformResult struct {
	RunID             string
	Table             *core.Table
	RowsIn            int
	DuplicatesRemoved int
	Output            string
}

// Limiter exposes the job limiter for graceful shutdown.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// History returns up to limit recent runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Run, error) {
	return s.store.List(ctx, limit)
}

// Profile reads the input and computes its profile.
func (s *Service) Profile(ctx context.Context, req ProfileRequest) (*ProfileResult, error) {
	run := s.startRun(history.CommandProfile, req.Input.Path)
	logger := logging.WithFields(ctx, "run_id", run.ID, "command", run.Command, "source", run.Source)

	report, err := s.profile(ctx, req)
	if report != nil {
		run.RowsIn = report.TotalRows
		run.RowsOut = report.TotalRows
	}
	s.finishRun(ctx, logger, &run, err)
	if err != nil {
		return nil, err
	}

	return &ProfileResult{RunID: run.ID, Report: report}, nil
}

func (s *Service) profile(ctx context.Context, req ProfileRequest) (*core.ProfileReport, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	tbl, err := s.read(req.Input)
	if err != nil {
		return nil, err
	}
	return core.ProfileContext(ctx, tbl, req.KeyColumn), nil
}

// Transform parses the column directives, reads the input, runs the
// pipeline and, when Output is set, writes the result.
func (s *Service) Transform(ctx context.Context, req TransformRequest) (*TransformResult, error) {
	run := s.startRun(history.CommandTransform, req.Input.Path)
	run.Output = req.Output
	logger := logging.WithFields(ctx, "run_id", run.ID, "command", run.Command, "source", run.Source)

	res, err := s.transform(ctx, req)
	if res != nil {
		res.RunID = run.ID
		run.RowsIn = res.RowsIn
		run.RowsOut = res.Table.NumRows()
		run.DuplicatesRemoved = res.DuplicatesRemoved
	}
	s.finishRun(ctx, logger, &run, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) transform(ctx context.Context, req TransformRequest) (*TransformResult, error) {
	cfg, err := s.transformConfig(req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	tbl, err := s.read(req.Input)
	if err != nil {
		return nil, err
	}

	out, err := core.TransformContext(ctx, tbl, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Output != "" {
		if err := core.WriteFile(cfg.Output, out.Table); err != nil {
			return nil, err
		}
	}

	return &TransformResult{
		Table:             out.Table,
		RowsIn:            tbl.NumRows(),
		DuplicatesRemoved: out.DuplicatesRemoved,
		Output:            cfg.Output,
	}, nil
}

// transformConfig validates the request before any file is read.
func (s *Service) transformConfig(req TransformRequest) (core.TransformConfig, error) {
	mappings, err := core.ParseMappings(req.Columns)
	if err != nil {
		return core.TransformConfig{}, err
	}

	caseMode, err := core.ParseCaseMode(firstNonEmpty(req.Case, s.defaults.Case))
	if err != nil {
		return core.TransformConfig{}, err
	}

	dupMode, err := core.ParseDuplicateMode(firstNonEmpty(req.Duplicates, s.defaults.Duplicates))
	if err != nil {
		return core.TransformConfig{}, err
	}

	return core.TransformConfig{
		Mappings:   mappings,
		Case:       caseMode,
		Duplicates: dupMode,
		KeyColumn:  firstNonEmpty(req.KeyColumn, s.defaults.KeyColumn),
		Output:     req.Output,
	}, nil
}

func (s *Service) read(in Input) (*core.Table, error) {
	switch {
	case in.Reader != nil:
		return reader.Read(in.Reader, in.Format, s.input)
	case in.Path != "":
		return reader.ReadFile(in.Path, s.input)
	default:
		return nil, ErrNoInput
	}
}

func (s *Service) startRun(cmd history.Command, source string) history.Run {
	return history.Run{
		ID:        history.NewRunID(),
		Command:   cmd,
		Source:    source,
		StartedAt: s.now(),
	}
}

// finishRun records the outcome. History failures are logged, never returned.
func (s *Service) finishRun(ctx context.Context, logger *slog.Logger, run *history.Run, err error) {
	run.FinishedAt = s.now()
	run.Status = history.StatusSucceeded
	if err != nil {
		run.Status = history.StatusFailed
		run.ErrorCode = core.MapError(err).Code
		logger.Info("run failed", "code", run.ErrorCode, "error", err)
	} else {
		logger.Info("run finished",
			"rows_in", run.RowsIn,
			"rows_out", run.RowsOut,
			"duplicates_removed", run.DuplicatesRemoved,
			"duration", run.Duration(),
		)
	}

	// Record even if the request context was cancelled.
	if rerr := s.store.Record(context.WithoutCancel(ctx), *run); rerr != nil {
		logger.Error("record run history", "error", fmt.Errorf("run %s: %w", run.ID, rerr))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
