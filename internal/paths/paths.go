// Package paths derives deterministic output paths and URL slugs for
// documents. Two distinct documents resolving to the same output path is the
// one correctness hazard of a full-site write, so the derivation here must be
// stable across runs and platforms.
package paths

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pradyumna2905/quill/internal/document"
)

// PostPrefix is the directory published posts render under.
const PostPrefix = "posts"

// IndexFile is the per-directory file name all documents render to.
const IndexFile = "index.html"

var foldCase = cases.Lower(language.Und)

// stripMarks removes combining marks after NFD decomposition, so accented
// characters slug to their base letter.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify normalizes s into a URL-safe slug: unicode-folded, lowercased,
// non-alphanumeric runs collapsed to single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = foldCase.String(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphen
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Slug returns the URL slug for a document, derived from the final segment of
// its id.
func Slug(doc *document.Document) string {
	base := path.Base(doc.ID)
	return Slugify(base)
}

// Output returns the output path (relative to the output root, using forward
// slashes) a document renders to.
func Output(doc *document.Document) string {
	slug := Slug(doc)
	if doc.Type == document.TypePost {
		return path.Join(PostPrefix, slug, IndexFile)
	}
	return path.Join(slug, IndexFile)
}

// Permalink returns the site-relative URL for a document.
func Permalink(doc *document.Document) string {
	return "/" + strings.TrimSuffix(Output(doc), IndexFile)
}

// CollectionIndex returns the output path of the index page for a collection
// type. The post listing doubles as the site home page.
func CollectionIndex(t document.Type) string {
	if t == document.TypePost {
		return IndexFile
	}
	return path.Join("pages", IndexFile)
}
