// Package pipeline runs the scrape-and-score stages in a fixed sequence:
// organizations, enhance, repositories, issues, comments, analyze. Stages are
// sequential, process one entity at a time, and isolate per-entity failures
// so one broken organization or issue never aborts a whole stage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// maxReportedErrors bounds the error sample carried in a StageResult; the
// full count is always reported.
const maxReportedErrors = 10

// StageResult is the structured outcome of one stage run.
type StageResult struct {
	Stage      string   `json:"stage"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Total      int      `json:"total"`
	Added      int      `json:"added"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Analyzed   int      `json:"analyzed"`
	Closed     int64    `json:"closed"`
	ErrorCount int      `json:"errorCount"`
	Errors     []string `json:"errors,omitempty"`
}

func newResult(stage string) *StageResult {
	return &StageResult{Stage: stage}
}

// recordError appends a per-entity failure, keeping only the first
// maxReportedErrors messages as a sample.
func (r *StageResult) recordError(format string, args ...any) {
	r.ErrorCount++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	}
}

// fail marks the result as a stage-level failure.
func (r *StageResult) fail(format string, args ...any) *StageResult {
	r.Success = false
	r.Message = fmt.Sprintf(format, args...)
	return r
}

// describeUpserts summarizes an upsert-style stage outcome.
func describeUpserts(r *StageResult) string {
	return fmt.Sprintf("%s: %d total, %d added, %d updated, %d errors",
		r.Stage, r.Total, r.Added, r.Updated, r.ErrorCount)
}

// describeLinkUpdates summarizes the enhance stage outcome, whose unit of
// work is a fetched detail page rather than an upserted row.
func describeLinkUpdates(r *StageResult) string {
	return fmt.Sprintf("%s: %d fetched, %d updated, %d skipped, %d errors",
		r.Stage, r.Total, r.Updated, r.Skipped, r.ErrorCount)
}

// describeAnalysis summarizes an analysis-style stage outcome.
func describeAnalysis(r *StageResult) string {
	return fmt.Sprintf("%s: %d analyzed, %d skipped, %d errors",
		r.Stage, r.Analyzed, r.Skipped, r.ErrorCount)
}

// Stage is one step of the pipeline. Run recovers all failures into the
// returned result; it never panics and never returns an error.
type Stage interface {
	Name() string
	Run(ctx context.Context) *StageResult
}

// Runner chains stages in order with a fixed pause between them.
type Runner struct {
	stages     []Stage
	stageDelay time.Duration
}

// NewRunner constructs a Runner over the given stages.
func NewRunner(stages []Stage, stageDelay time.Duration) *Runner {
	return &Runner{stages: stages, stageDelay: stageDelay}
}

// RunAll executes the stages in order, pausing between them. A stage-level
// failure stops the chain; the results gathered so far are still returned so
// prior stage outputs are never lost.
func (r *Runner) RunAll(ctx context.Context) []*StageResult {
	start := time.Now()
	results := make([]*StageResult, 0, len(r.stages))
	for i, s := range r.stages {
		if i > 0 {
			pause(ctx, r.stageDelay)
		}
		slog.InfoContext(ctx, "Running pipeline stage", "stage", s.Name())
		res := s.Run(ctx)
		results = append(results, res)
		if !res.Success {
			slog.ErrorContext(ctx, "Pipeline stage failed", "stage", s.Name(), "message", res.Message)
			break
		}
		slog.InfoContext(ctx, "Pipeline stage completed",
			"stage", s.Name(), "total", res.Total, "added", res.Added,
			"updated", res.Updated, "errors", res.ErrorCount)
	}
	slog.InfoContext(ctx, "Pipeline run finished", "stages", len(results), "duration", time.Since(start))
	return results
}

// pause sleeps for d unless the context ends first.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
