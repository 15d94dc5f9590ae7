package site

import (
	"time"

	"github.com/pradyumna2905/quill/internal/errors"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomeWarning BuildOutcome = "warning"
	OutcomeFailed  BuildOutcome = "failed"
)

// Warning is one recoverable per-document problem recorded in the report.
type Warning struct {
	DocID    string `json:"doc_id"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// BuildReport captures the result of one full site generation run.
type BuildReport struct {
	BuildID          string                   `json:"build_id"`
	Start            time.Time                `json:"start"`
	End              time.Time                `json:"end"`
	DocumentsParsed  int                      `json:"documents_parsed"`
	DocumentsWritten int                      `json:"documents_written"`
	Warnings         []Warning                `json:"warnings,omitempty"`
	Errors           []string                 `json:"errors,omitempty"`
	StageDurations   map[string]time.Duration `json:"stage_durations,omitempty"`
	Outcome          BuildOutcome             `json:"outcome"`
}

func newBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		Outcome:        OutcomeSuccess,
	}
}

// AddWarning records a recoverable per-document error.
func (r *BuildReport) AddWarning(docID string, err error) {
	w := Warning{DocID: docID, Category: string(errors.GetCategory(err)), Message: err.Error()}
	r.Warnings = append(r.Warnings, w)
}

// AddError records a fatal error.
func (r *BuildReport) AddError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// finish stamps the end time and derives the overall outcome.
func (r *BuildReport) finish() {
	r.End = time.Now()
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the wall time of the run.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }
