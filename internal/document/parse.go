package document

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/frontmatter"
)

// Parse turns a raw resource into a validated Document.
//
// The id is the caller-derived stable identifier (usually the source path
// without extension). Validation enforces the Document invariants: a
// non-empty title and template, and a date on every post.
func Parse(id string, content []byte) (*Document, error) {
	fm, body, err := frontmatter.Split(content)
	if err != nil {
		return nil, errors.MissingMetadataBlock(id).WithContext("cause", err.Error())
	}

	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		se := errors.MissingMetadataBlock(id)
		se.Cause = err
		return nil, se
	}

	doc := &Document{
		ID:        id,
		Published: true,
		Body:      body,
		Extra:     map[string]any{},
	}

	slug := ""
	for key, value := range fields {
		switch key {
		case keyTitle:
			doc.Title = strings.TrimSpace(stringValue(value))
		case keyLayout:
			doc.Template = strings.TrimSpace(stringValue(value))
		case keyType:
			t, terr := typeValue(value)
			if terr != nil {
				return nil, errors.InvalidType(id, stringValue(value))
			}
			doc.Type = t
		case keyPublished:
			if b, ok := value.(bool); ok {
				doc.Published = b
			}
		case keyDate:
			d, derr := dateValue(value)
			if derr != nil {
				return nil, errors.InvalidDate(id, stringValue(value), derr)
			}
			doc.Date = d
		case keySlug:
			slug = strings.TrimSpace(stringValue(value))
		default:
			doc.Extra[key] = value
		}
	}

	// A declared slug replaces the final id segment, so revisions of one
	// logical document under different filenames share an id (last-wins in
	// the store).
	if slug != "" {
		if dir := path.Dir(id); dir != "." {
			doc.ID = path.Join(dir, slug)
		} else {
			doc.ID = slug
		}
	}

	if doc.Title == "" {
		return nil, errors.MissingRequiredField(id, keyTitle)
	}
	if doc.Template == "" {
		return nil, errors.MissingRequiredField(id, keyLayout)
	}

	// Type defaults from the layout name when not declared explicitly.
	if doc.Type == "" {
		if doc.Template == string(TypePost) {
			doc.Type = TypePost
		} else {
			doc.Type = TypePage
		}
	}

	if doc.Type == TypePost && !doc.HasDate() {
		return nil, errors.MissingRequiredField(id, keyDate)
	}

	return doc, nil
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func typeValue(v any) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(stringValue(v))) {
	case string(TypePage):
		return TypePage, nil
	case string(TypePost):
		return TypePost, nil
	default:
		return "", fmt.Errorf("unknown document type %q", stringValue(v))
	}
}

func dateValue(v any) (time.Time, error) {
	// yaml.v3 decodes unquoted ISO dates as time.Time already.
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	return parseDate(stringValue(v))
}
