// Package collection partitions the document store into typed, ordered
// collections used for rendering and index pages.
package collection

import (
	"sort"

	"github.com/pradyumna2905/quill/internal/document"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/paths"
	"github.com/pradyumna2905/quill/internal/store"
)

// Owner labels reported when a document collides with a generated listing
// page rather than another document.
const (
	postListingOwner = "(post listing)"
	pageListingOwner = "(page listing)"
)

// Collection is a named, ordered sequence of documents sharing a type.
type Collection struct {
	Name string
	Type document.Type
	Docs []*document.Document
}

// Len returns the number of documents in the collection.
func (c *Collection) Len() int { return len(c.Docs) }

// Set holds the public collections for one build, rebuilt fully on every run.
type Set struct {
	byType map[document.Type]*Collection
}

// Get returns the collection for a type; never nil, possibly empty.
func (s *Set) Get(t document.Type) *Collection {
	if c, ok := s.byType[t]; ok {
		return c
	}
	return &Collection{Name: string(t), Type: t}
}

// Pages returns the page collection.
func (s *Set) Pages() *Collection { return s.Get(document.TypePage) }

// Posts returns the public post collection.
func (s *Set) Posts() *Collection { return s.Get(document.TypePost) }

// Build partitions the store into public collections.
//
// Unpublished documents stay in the store (a preview mode could still reach
// them) but are excluded here, so they appear in no listing and produce no
// output. Posts are ordered date descending with ties broken by id ascending;
// pages are ordered by id ascending. Two distinct published documents
// resolving to the same output path abort the build before anything is
// written, as does a document whose path would shadow a generated listing
// page.
func Build(st *store.Store) (*Set, error) {
	set := &Set{byType: map[document.Type]*Collection{
		document.TypePage: {Name: string(document.TypePage), Type: document.TypePage},
		document.TypePost: {Name: string(document.TypePost), Type: document.TypePost},
	}}

	// The generated listing pages claim their output paths before any
	// document does, so a document cannot shadow a listing.
	claimed := map[string]string{ // output path -> doc id
		paths.CollectionIndex(document.TypePost): postListingOwner,
		paths.CollectionIndex(document.TypePage): pageListingOwner,
	}
	for doc := range st.All() {
		if !doc.Published {
			continue
		}

		if paths.Slug(doc) == "" {
			return nil, errors.EmptySlug(doc.ID)
		}
		out := paths.Output(doc)
		if prev, taken := claimed[out]; taken {
			return nil, errors.DuplicateSlugCollision(out, prev, doc.ID)
		}
		claimed[out] = doc.ID

		c := set.byType[doc.Type]
		c.Docs = append(c.Docs, doc)
	}

	sortPosts(set.byType[document.TypePost].Docs)
	sortPages(set.byType[document.TypePage].Docs)
	return set, nil
}

// sortPosts orders posts date descending, ties id ascending for determinism.
func sortPosts(docs []*document.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.After(docs[j].Date)
		}
		return docs[i].ID < docs[j].ID
	})
}

func sortPages(docs []*document.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
}
