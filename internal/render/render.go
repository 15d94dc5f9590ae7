// Package render maps documents to output HTML through named templates.
//
// Rendering is pure: the same document and context always produce the same
// output. Nothing here reads clocks, filesystems, or global state, which is
// what makes full rebuilds byte-identical.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/pradyumna2905/quill/internal/collection"
	"github.com/pradyumna2905/quill/internal/config"
	"github.com/pradyumna2905/quill/internal/document"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/markdown"
	"github.com/pradyumna2905/quill/internal/paths"
)

//go:embed templates/*.tmpl
var builtinFS embed.FS

// Built-in template names.
const (
	TemplatePage  = "page"
	TemplatePost  = "post"
	TemplateIndex = "index"
)

// relatedLimit caps the "more posts" block on post pages.
const relatedLimit = 3

// Context is the transient value handed to a single render call: the
// document plus its sibling collections for navigation blocks. It is not
// retained after the call.
type Context struct {
	Doc   *document.Document
	Posts *collection.Collection
}

// Renderer resolves a document's template name and executes it.
type Renderer struct {
	site      config.SiteConfig
	social    []config.SocialLink
	templates map[string]*template.Template
}

// New creates a renderer with the built-in page, post, and index templates
// registered.
func New(site config.SiteConfig, social []config.SocialLink) (*Renderer, error) {
	r := &Renderer{
		site:      site,
		social:    social,
		templates: make(map[string]*template.Template),
	}
	for _, name := range []string{TemplatePage, TemplatePost, TemplateIndex} {
		tpl, err := template.ParseFS(builtinFS, "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse builtin template %s: %w", name, err)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

// Register adds or replaces a named template.
func (r *Renderer) Register(name string, tpl *template.Template) {
	r.templates[name] = tpl
}

// docData is the value the page and post templates execute against.
type docData struct {
	Site    config.SiteConfig
	Title   string
	Date    time.Time
	Content template.HTML
	TOC     []markdown.Heading
	Related []relatedEntry
	Social  []config.SocialLink
}

type relatedEntry struct {
	Title     string
	Permalink string
	Date      time.Time
}

// Render produces the output HTML for a document.
func (r *Renderer) Render(doc *document.Document, ctx Context) (string, error) {
	tpl, ok := r.templates[doc.Template]
	if !ok {
		return "", errors.UnknownTemplate(doc.ID, doc.Template)
	}

	html, err := markdown.Convert(doc.Body)
	if err != nil {
		se := errors.New(errors.CategoryRender, errors.SeverityWarning, "markdown conversion failed")
		se.Cause = err
		return "", se.WithContext("doc_id", doc.ID)
	}

	data := docData{
		Site:    r.site,
		Title:   doc.Title,
		Date:    doc.Date,
		Content: template.HTML(html),
	}

	if doc.Type == document.TypePost {
		data.Social = r.social
		data.Related = relatedPosts(doc, ctx.Posts)
		toc, terr := markdown.ExtractHeadings(doc.Body)
		if terr == nil && len(toc) > 1 {
			data.TOC = toc
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		se := errors.New(errors.CategoryRender, errors.SeverityWarning, "template execution failed")
		se.Cause = err
		return "", se.WithContext("doc_id", doc.ID).WithContext("template", doc.Template)
	}
	return buf.String(), nil
}

// indexData is the value the index template executes against.
type indexData struct {
	Site    config.SiteConfig
	Entries []relatedEntry
	Social  []config.SocialLink
}

// RenderIndex produces the listing page for a collection.
func (r *Renderer) RenderIndex(col *collection.Collection) (string, error) {
	tpl := r.templates[TemplateIndex]

	data := indexData{Site: r.site, Social: r.social}
	for _, doc := range col.Docs {
		data.Entries = append(data.Entries, relatedEntry{
			Title:     doc.Title,
			Permalink: paths.Permalink(doc),
			Date:      doc.Date,
		})
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		se := errors.New(errors.CategoryRender, errors.SeverityWarning, "index template execution failed")
		se.Cause = err
		return "", se.WithContext("collection", col.Name)
	}
	return buf.String(), nil
}

// relatedPosts picks the most recent other posts from the sibling collection.
// The collection is already date-ordered, so the first few non-self entries
// are the newest.
func relatedPosts(doc *document.Document, posts *collection.Collection) []relatedEntry {
	if posts == nil {
		return nil
	}
	related := make([]relatedEntry, 0, relatedLimit)
	for _, other := range posts.Docs {
		if other.ID == doc.ID {
			continue
		}
		related = append(related, relatedEntry{
			Title:     other.Title,
			Permalink: paths.Permalink(other),
			Date:      other.Date,
		})
		if len(related) == relatedLimit {
			break
		}
	}
	return related
}
