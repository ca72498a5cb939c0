package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the overall result of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// PageFailure records a page that was not published.
type PageFailure struct {
	// Source is the site-relative path of the document.
	Source string
	Stage  StageName
	Err    error
}

// BuildReport summarizes one build.
type BuildReport struct {
	BuildID string
	Start   time.Time
	End     time.Time
	Outcome BuildOutcome

	Documents int
	Compiled  int
	Drafts    int
	// Skipped counts failed pages left out under on_page_error=skip.
	Skipped  int
	Failures []PageFailure

	Routes      int
	Digest      string
	BrokenLinks []string
	// Errors holds the error that failed the build, if any.
	Errors   []error
	Warnings []error

	StageDurations map[string]time.Duration
	StageCounts    map[StageName]StageCount
}

func newBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		StageCounts:    make(map[StageName]StageCount),
	}
}

// Duration is the wall time of the build.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s documents=%d compiled=%d drafts=%d failed=%d routes=%d broken_links=%d duration=%s outcome=%s",
		r.BuildID, r.Documents, r.Compiled, r.Drafts, len(r.Failures), r.Routes, len(r.BrokenLinks), r.Duration().Truncate(time.Millisecond), r.Outcome)
}

func (r *BuildReport) finish(err error, canceled bool) {
	r.End = time.Now()
	switch {
	case canceled:
		r.Outcome = OutcomeCanceled
	case err != nil:
		r.Errors = append(r.Errors, err)
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0 || len(r.Failures) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// ReportSerializable is the JSON form of a BuildReport.
type ReportSerializable struct {
	BuildID        string                   `json:"build_id"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	Outcome        string                   `json:"outcome"`
	Documents      int                      `json:"documents"`
	Compiled       int                      `json:"compiled"`
	Drafts         int                      `json:"drafts"`
	Skipped        int                      `json:"skipped"`
	Failures       []FailureSerializable    `json:"failures"`
	Routes         int                      `json:"routes"`
	Digest         string                   `json:"digest"`
	BrokenLinks    []string                 `json:"broken_links"`
	Errors         []string                 `json:"errors"`
	Warnings       []string                 `json:"warnings"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	StageCounts    map[string]StageCount    `json:"stage_counts"`
}

// FailureSerializable is the JSON form of a PageFailure.
type FailureSerializable struct {
	Source string `json:"source"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// Serializable converts the report for JSON encoding.
func (r *BuildReport) Serializable() *ReportSerializable {
	s := &ReportSerializable{
		BuildID:        r.BuildID,
		Start:          r.Start,
		End:            r.End,
		Outcome:        string(r.Outcome),
		Documents:      r.Documents,
		Compiled:       r.Compiled,
		Drafts:         r.Drafts,
		Skipped:        r.Skipped,
		Failures:       make([]FailureSerializable, 0, len(r.Failures)),
		Routes:         r.Routes,
		Digest:         r.Digest,
		BrokenLinks:    append([]string{}, r.BrokenLinks...),
		Errors:         make([]string, 0, len(r.Errors)),
		Warnings:       make([]string, 0, len(r.Warnings)),
		StageDurations: r.StageDurations,
		StageCounts:    make(map[string]StageCount, len(r.StageCounts)),
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, FailureSerializable{Source: f.Source, Stage: string(f.Stage), Error: f.Err.Error()})
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	for k, v := range r.StageCounts {
		s.StageCounts[string(k)] = v
	}
	return s
}

// Persist writes build-report.json and build-report.txt into root, each via
// a temporary file and rename.
func (r *BuildReport) Persist(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.Serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(root, "build-report.json"), jb); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(root, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
