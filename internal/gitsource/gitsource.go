// Package gitsource syncs the content tree from a remote git repository.
package gitsource

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/pradyumna2905/quill/internal/config"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/logfields"
)

// fetchTimeout bounds a single clone or pull.
const fetchTimeout = 2 * time.Minute

// Fetch clones the configured content repository into dir, or pulls when a
// checkout already exists there.
func Fetch(ctx context.Context, src *config.GitSourceConfig, dir string) error {
	if src == nil {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal, "no git content source configured")
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return pull(ctx, src, dir)
	}
	return clone(ctx, src, dir)
}

func clone(ctx context.Context, src *config.GitSourceConfig, dir string) error {
	slog.Info("Cloning content source", slog.String("url", src.URL), logfields.Path(dir))

	opts := &git.CloneOptions{
		URL:           src.URL,
		ReferenceName: plumbing.NewBranchReferenceName(src.Branch),
		SingleBranch:  true,
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return errors.GitFetchError(src.URL, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Content source cloned",
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(dir))
	}
	return nil
}

func pull(ctx context.Context, src *config.GitSourceConfig, dir string) error {
	slog.Debug("Updating content source", logfields.Path(dir))

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.GitFetchError(src.URL, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return errors.GitFetchError(src.URL, err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(src.Branch),
		SingleBranch:  true,
	})
	if err == git.NoErrAlreadyUpToDate {
		slog.Debug("Content source already up to date")
		return nil
	}
	if err != nil {
		return errors.GitFetchError(src.URL, err)
	}

	slog.Info("Content source updated", logfields.Path(dir))
	return nil
}
