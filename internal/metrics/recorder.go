package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageResultLabel enumerates what happened to a single page.
type PageResultLabel string

const (
	PageCompiled PageResultLabel = "compiled"
	PageFailed   PageResultLabel = "failed"
	PageSkipped  PageResultLabel = "skipped"
	PageDraft    PageResultLabel = "draft"
)

// Recorder defines observability hooks for build, stage and page metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	IncPageResult(result PageResultLabel)
	SetRoutes(n int)
	IncBrokenLinks(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) IncPageResult(PageResultLabel)              {}
func (NoopRecorder) SetRoutes(int)                              {}
func (NoopRecorder) IncBrokenLinks(int)                         {}
