// Package markdown converts document bodies to HTML and extracts structural
// information (headings) for computed render fields.
//
// Bodies frequently embed fenced code examples; goldmark treats fence
// contents as literal text, which keeps embedded sample code inert.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

func newConverter() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
}

// Convert renders a Markdown body (frontmatter already removed) to HTML.
func Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := newConverter().Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Heading is one document heading with its anchor id.
type Heading struct {
	Level  int
	Text   string
	Anchor string
}

// ExtractHeadings parses a Markdown body and returns its headings in document
// order. Anchors match the auto heading ids Convert emits, so a table of
// contents built from them links into the converted HTML.
func ExtractHeadings(body []byte) ([]Heading, error) {
	md := newConverter()
	root := md.Parser().Parse(text.NewReader(body))

	headings := make([]Heading, 0)
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}

		anchor := ""
		if id, found := h.AttributeString("id"); found {
			if b, isBytes := id.([]byte); isBytes {
				anchor = string(b)
			}
		}
		headings = append(headings, Heading{
			Level:  h.Level,
			Text:   string(nodeText(h, body)),
			Anchor: anchor,
		})
		return gmast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown ast: %w", err)
	}
	return headings, nil
}

// nodeText concatenates the literal text content beneath a node.
func nodeText(n gmast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := child.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
		return gmast.WalkContinue, nil
	})
	return buf.Bytes()
}
