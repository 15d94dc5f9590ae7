// Package document defines the parsed content model and the parser turning a
// raw resource into a validated Document.
package document

import (
	"fmt"
	"strings"
	"time"
)

// Type partitions documents into their collection kinds.
type Type string

const (
	TypePage Type = "page"
	TypePost Type = "post"
)

// Known frontmatter keys. Anything else lands in Document.Extra.
const (
	keyTitle     = "title"
	keyLayout    = "layout"
	keyType      = "type"
	keyPublished = "published"
	keyDate      = "date"
	keySlug      = "slug"
)

// Document is one parsed content resource. It is immutable after parsing;
// nothing downstream mutates it.
type Document struct {
	ID        string
	Type      Type
	Title     string
	Template  string // layout name the renderer resolves
	Published bool
	Date      time.Time // zero for pages without a date
	Body      []byte
	Extra     map[string]any // unrecognized frontmatter keys, preserved verbatim
}

// HasDate reports whether the document carries a publication date.
func (d *Document) HasDate() bool { return !d.Date.IsZero() }

// String implements fmt.Stringer for log output.
func (d *Document) String() string {
	return fmt.Sprintf("%s(%s)", d.Type, d.ID)
}

// dateLayouts are the accepted frontmatter date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
