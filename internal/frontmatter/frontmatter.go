// Package frontmatter splits a raw content resource into its metadata block
// and body. The metadata block is YAML delimited by `---` lines; the opening
// delimiter must be the very first line of the resource.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingOpeningDelimiter indicates the resource does not start with a
// metadata block. Unlike tolerant frontmatter readers, this is a hard parse
// failure: every document in a collection carries metadata.
var ErrMissingOpeningDelimiter = errors.New("resource does not start with a frontmatter delimiter")

// ErrMissingClosingDelimiter indicates the resource started with a frontmatter
// delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// Split separates the YAML frontmatter block (`---` delimited, at line 1)
// from the body. The body is returned verbatim; fenced code blocks inside it
// are opaque bytes as far as this package is concerned.
func Split(content []byte) (frontmatter []byte, body []byte, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, nil, ErrMissingOpeningDelimiter
	}

	start := len(open)

	// Empty metadata block: the closing delimiter immediately follows.
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A final `---` with no trailing newline still closes the block.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content[start:], tail) {
			end := len(content) - len(tail) + len(nl)
			return content[start:end], []byte{}, nil
		}
		return nil, nil, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
