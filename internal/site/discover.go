package site

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pradyumna2905/quill/internal/errors"
)

// Resource is one raw source file before parsing.
type Resource struct {
	ID   string // relative path without extension, forward slashes
	Path string // absolute filesystem path
}

// sourceExtensions are the file extensions treated as content resources.
var sourceExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// discoverResources walks sourceRoot and returns content resources in lexical
// path order. That order is the contract behind last-wins duplicate
// resolution: a later path with the same id supersedes an earlier one.
func discoverResources(sourceRoot string) ([]Resource, error) {
	var resources []Resource

	err := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != sourceRoot && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if !sourceExtensions[ext] {
			return nil
		}

		rel, rerr := filepath.Rel(sourceRoot, path)
		if rerr != nil {
			return rerr
		}
		id := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		resources = append(resources, Resource{ID: id, Path: path})
		return nil
	})
	if err != nil {
		return nil, errors.WorkspaceError("discover", err)
	}

	// WalkDir already visits in lexical order per directory; sorting on the
	// full relative path makes the cross-directory order explicit.
	sort.Slice(resources, func(i, j int) bool { return resources[i].Path < resources[j].Path })
	return resources, nil
}
