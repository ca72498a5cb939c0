package pipeline

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/observability"
)

// StageName is a step of a build.
type StageName string

// Canonical stage names.
const (
	StageLoad      StageName = "load"
	StageResolve   StageName = "resolve"
	StageNavigate  StageName = "navigate"
	StageCompile   StageName = "compile"
	StageRegister  StageName = "register"
	StageLinkCheck StageName = "linkcheck"
)

// StageResult classifies how a stage ended.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// StageCount aggregates the outcomes of a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// recordStageResult updates report counters and emits metrics.
func (r *BuildReport) recordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultWarning:
		sc.Warning++
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		sc.Fatal++
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		sc.Canceled++
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
	r.StageCounts[stage] = sc
}

// runStage times fn, records its result and logs completion. fn reports
// warnings by returning warn=true with a nil error.
func (p *Pipeline) runStage(ctx context.Context, report *BuildReport, stage StageName, fn func(ctx context.Context) (warn bool, err error)) error {
	ctx = observability.WithStage(ctx, string(stage))
	start := time.Now()
	warn, err := fn(ctx)
	d := time.Since(start)
	report.StageDurations[string(stage)] = d
	p.recorder.ObserveStageDuration(string(stage), d)

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		report.recordStageResult(stage, StageResultCanceled, p.recorder)
	case err != nil:
		report.recordStageResult(stage, StageResultFatal, p.recorder)
	case warn:
		report.recordStageResult(stage, StageResultWarning, p.recorder)
	default:
		report.recordStageResult(stage, StageResultSuccess, p.recorder)
	}
	observability.DebugContext(ctx, "Stage finished", logfields.DurationMS(float64(d.Microseconds())/1000))
	return err
}
