package metrics

import (
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("compile", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("compile", ResultSuccess)
	r.IncBuildOutcome("success")
	r.IncPageResult(PageCompiled)
	r.SetRoutes(3)
	r.IncBrokenLinks(1)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveStageDuration("compile", time.Second)
	p.IncPageResult(PageFailed)
	p.SetRoutes(1)
}
