package site

import (
	"context"
	"log/slog"
	"time"

	"github.com/pradyumna2905/quill/internal/collection"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/logfields"
	"github.com/pradyumna2905/quill/internal/metrics"
	"github.com/pradyumna2905/quill/internal/store"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *buildState) error

// Stage names, in execution order.
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StageIndex    = "index"
	StageRender   = "render"
	StageWrite    = "write"
	StageVerify   = "verify"
	StageCommit   = "commit"
)

// buildState carries mutable state across stages for one run.
type buildState struct {
	SourceRoot string
	OutputRoot string
	StagingDir string

	Resources   []Resource
	Store       *store.Store
	Collections *collection.Set
	Rendered    map[string]string // output path -> rendered content

	Report *BuildReport
}

// runStages executes stages in order, recording timing per stage and stopping
// on the first fatal error. Recoverable per-document errors never surface
// here; stages fold them into the report as warnings themselves.
func (b *Builder) runStages(ctx context.Context, bs *buildState, stages []struct {
	name string
	fn   Stage
}) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			err := errors.InternalError("build canceled", ctx.Err())
			bs.Report.AddError(err)
			return err
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.name] = dur
		b.recorder.ObserveStageDuration(st.name, dur)

		if err != nil {
			b.recorder.IncStageResult(st.name, metrics.ResultFatal)
			bs.Report.AddError(err)
			slog.Error("Build stage failed",
				logfields.Stage(st.name),
				logfields.BuildID(bs.Report.BuildID),
				logfields.Error(err))
			return err
		}
		b.recorder.IncStageResult(st.name, metrics.ResultSuccess)
		slog.Debug("Build stage completed",
			logfields.Stage(st.name),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
