// Package site orchestrates the full build: discover source resources, parse
// them into documents, index collections, render templates, and write the
// output tree atomically.
package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pradyumna2905/quill/internal/collection"
	"github.com/pradyumna2905/quill/internal/config"
	"github.com/pradyumna2905/quill/internal/document"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/linkverify"
	"github.com/pradyumna2905/quill/internal/logfields"
	"github.com/pradyumna2905/quill/internal/metrics"
	"github.com/pradyumna2905/quill/internal/paths"
	"github.com/pradyumna2905/quill/internal/render"
	"github.com/pradyumna2905/quill/internal/store"
)

// Builder runs the parse → store → index → render → write pipeline.
type Builder struct {
	cfg      *config.Config
	renderer *render.Renderer
	recorder metrics.Recorder
}

// NewBuilder creates a builder for the given configuration.
func NewBuilder(cfg *config.Config, recorder metrics.Recorder) (*Builder, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	renderer, err := render.New(cfg.Site, cfg.Social)
	if err != nil {
		return nil, errors.InternalError("renderer construction failed", err)
	}
	return &Builder{cfg: cfg, renderer: renderer, recorder: recorder}, nil
}

// Build runs the full pipeline once.
//
// Per-document parse and render failures are recorded as warnings and the
// document is skipped. A duplicate output path collision is fatal and aborts
// before anything is written; the previous output stays untouched. The
// returned report is always non-nil.
func (b *Builder) Build(ctx context.Context, sourceRoot, outputRoot string) (*BuildReport, error) {
	report := newBuildReport(uuid.NewString())
	bs := &buildState{
		SourceRoot: sourceRoot,
		OutputRoot: outputRoot,
		Store:      store.New(),
		Rendered:   make(map[string]string),
		Report:     report,
	}

	slog.Info("Starting site build",
		logfields.BuildID(report.BuildID),
		logfields.Path(sourceRoot))

	err := b.runStages(ctx, bs, []struct {
		name string
		fn   Stage
	}{
		{StageDiscover, b.stageDiscover},
		{StageParse, b.stageParse},
		{StageIndex, b.stageIndex},
		{StageRender, b.stageRender},
		{StageWrite, b.stageWrite},
		{StageVerify, b.stageVerify},
		{StageCommit, b.stageCommit},
	})

	if bs.StagingDir != "" {
		// Commit renames the staging dir away; anything left is a failed run.
		_ = os.RemoveAll(bs.StagingDir)
	}

	report.finish()
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))

	if err != nil {
		return report, err
	}

	slog.Info("Site build finished",
		logfields.BuildID(report.BuildID),
		logfields.Count(report.DocumentsWritten),
		slog.Int("warnings", len(report.Warnings)),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

func (b *Builder) stageDiscover(_ context.Context, bs *buildState) error {
	resources, err := discoverResources(bs.SourceRoot)
	if err != nil {
		return err
	}
	bs.Resources = resources
	slog.Debug("Discovered content resources", logfields.Count(len(resources)))
	return nil
}

// stageParse parses every resource in lexical path order. Duplicate ids
// overwrite earlier documents entirely (last-wins).
func (b *Builder) stageParse(_ context.Context, bs *buildState) error {
	for _, res := range bs.Resources {
		content, err := os.ReadFile(res.Path)
		if err != nil {
			bs.Report.AddWarning(res.ID, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityWarning, "resource read failed"))
			b.recorder.IncWarning(string(errors.CategoryFileSystem))
			continue
		}

		doc, err := document.Parse(res.ID, content)
		if err != nil {
			bs.Report.AddWarning(res.ID, err)
			b.recorder.IncWarning(string(errors.GetCategory(err)))
			slog.Warn("Skipping document", logfields.DocID(res.ID), logfields.Error(err))
			continue
		}
		bs.Store.Put(doc)
		slog.Debug("Parsed document", logfields.DocID(doc.ID), logfields.DocType(string(doc.Type)))
	}
	bs.Report.DocumentsParsed = bs.Store.Len()
	b.recorder.AddDocuments("parsed", bs.Store.Len())
	return nil
}

func (b *Builder) stageIndex(_ context.Context, bs *buildState) error {
	set, err := collection.Build(bs.Store)
	if err != nil {
		return err
	}
	bs.Collections = set
	return nil
}

// stageRender renders every published document plus the collection index
// pages, entirely in memory. Render failures skip the document.
func (b *Builder) stageRender(_ context.Context, bs *buildState) error {
	posts := bs.Collections.Posts()

	for _, col := range []*collection.Collection{bs.Collections.Pages(), posts} {
		for _, doc := range col.Docs {
			out, err := b.renderer.Render(doc, render.Context{Doc: doc, Posts: posts})
			if err != nil {
				bs.Report.AddWarning(doc.ID, err)
				b.recorder.IncWarning(string(errors.GetCategory(err)))
				slog.Warn("Skipping document", logfields.DocID(doc.ID), logfields.Template(doc.Template), logfields.Error(err))
				continue
			}
			bs.Rendered[paths.Output(doc)] = out
		}
	}

	index, err := b.renderer.RenderIndex(posts)
	if err != nil {
		return errors.Wrap(err, errors.CategoryRender, errors.SeverityFatal, "post index rendering failed")
	}
	bs.Rendered[paths.CollectionIndex(document.TypePost)] = index

	if pages := bs.Collections.Pages(); len(pages.Docs) > 0 {
		pageIndex, err := b.renderer.RenderIndex(pages)
		if err != nil {
			return errors.Wrap(err, errors.CategoryRender, errors.SeverityFatal, "page index rendering failed")
		}
		bs.Rendered[paths.CollectionIndex(document.TypePage)] = pageIndex
	}

	b.recorder.AddDocuments("rendered", len(bs.Rendered))
	return nil
}

// stageWrite materializes the rendered site into a staging directory next to
// the output root, so a failed run never leaves a half-built site behind.
func (b *Builder) stageWrite(_ context.Context, bs *buildState) error {
	parent := filepath.Dir(filepath.Clean(bs.OutputRoot))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errors.WorkspaceError("prepare output parent", err)
	}

	staging, err := os.MkdirTemp(parent, ".quill-staging-")
	if err != nil {
		return errors.WorkspaceError("create staging dir", err)
	}
	bs.StagingDir = staging

	for out, content := range bs.Rendered {
		target := filepath.Join(staging, filepath.FromSlash(out))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.WorkspaceError("create output dir", err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return errors.WorkspaceError("write output file", err)
		}
	}
	return nil
}

// stageVerify walks the staged output and reports broken internal links as
// warnings. The site still commits; a dangling link is not worth losing a
// deploy over.
func (b *Builder) stageVerify(_ context.Context, bs *buildState) error {
	problems, err := linkverify.Verify(bs.StagingDir)
	if err != nil {
		bs.Report.AddWarning("", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityWarning, "link verification failed"))
		return nil
	}
	for _, p := range problems {
		bs.Report.AddWarning(p.SourceFile, errors.New(errors.CategoryRender, errors.SeverityWarning, "broken internal link").
			WithContext("href", p.Href))
		b.recorder.IncWarning("link")
	}
	return nil
}

// stageCommit atomically swaps the staged tree into place.
func (b *Builder) stageCommit(_ context.Context, bs *buildState) error {
	if _, err := os.Stat(bs.OutputRoot); err == nil {
		if !b.cfg.Output.Clean {
			return errors.New(errors.CategoryFileSystem, errors.SeverityFatal,
				"output directory already exists and output.clean is disabled").
				WithContext("path", bs.OutputRoot)
		}
		if err := os.RemoveAll(bs.OutputRoot); err != nil {
			return errors.WorkspaceError("clean output dir", err)
		}
	}
	if err := os.Rename(bs.StagingDir, bs.OutputRoot); err != nil {
		return errors.WorkspaceError("commit output dir", err)
	}
	bs.StagingDir = ""
	bs.Report.DocumentsWritten = len(bs.Rendered)
	return nil
}
