// Package store holds the parsed documents for one build run.
//
// The store lives for exactly one build: it is populated during the parse
// stage and frozen (read-only by convention) before indexing and rendering
// begin, so no locking is needed.
package store

import (
	"errors"
	"iter"

	"github.com/pradyumna2905/quill/internal/document"
)

// ErrNotFound is returned by Get for an unknown document id.
var ErrNotFound = errors.New("document not found")

// Store keeps documents keyed by id, remembering first-insertion order.
// Put with an existing id overwrites the document in place (last-wins) without
// changing its position in the order.
type Store struct {
	docs  map[string]*document.Document
	order []string
}

// New creates an empty store.
func New() *Store {
	return &Store{docs: make(map[string]*document.Document)}
}

// Put inserts or overwrites a document by id.
func (s *Store) Put(doc *document.Document) {
	if _, exists := s.docs[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
}

// Get returns the current document for id, or ErrNotFound.
func (s *Store) Get(id string) (*document.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Len returns the number of distinct documents.
func (s *Store) Len() int { return len(s.docs) }

// All yields the current documents in insertion order. The sequence is finite
// and restartable; ranging over it twice yields the same documents.
func (s *Store) All() iter.Seq[*document.Document] {
	return func(yield func(*document.Document) bool) {
		for _, id := range s.order {
			if !yield(s.docs[id]) {
				return
			}
		}
	}
}
