package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsError(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	_, _, err := Split(input)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingOpeningDelimiter))
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: About\n---\nHi.\n")

	fm, body, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, []byte("title: About\n"), fm)
	require.Equal(t, []byte("Hi.\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: About\nHi.\n")

	_, _, err := Split(input)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_DelimiterNotOnFirstLine_ReturnsError(t *testing.T) {
	input := []byte("\n---\ntitle: About\n---\nHi.\n")

	_, _, err := Split(input)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingOpeningDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: About\r\n---\r\nHi.\r\n")

	fm, body, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, []byte("title: About\r\n"), fm)
	require.Equal(t, []byte("Hi.\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsAsEmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\nHi.\n")

	fm, body, err := Split(input)
	require.NoError(t, err)
	require.Empty(t, fm)
	require.Equal(t, []byte("Hi.\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF_EmptyBody(t *testing.T) {
	input := []byte("---\ntitle: About\n---")

	fm, body, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, []byte("title: About\n"), fm)
	require.Empty(t, body)
}

func TestSplit_FencedCodeInBody_IsOpaque(t *testing.T) {
	input := []byte("---\ntitle: Tutorial\n---\n```ruby\nput :---\n```\n")

	_, body, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, []byte("```ruby\nput :---\n```\n"), body)
}

func TestParseYAML_ValidYAML_ReturnsMap(t *testing.T) {
	fm := []byte("title: About\ntags:\n  - one\n")

	fields, err := ParseYAML(fm)
	require.NoError(t, err)
	require.Equal(t, "About", fields["title"])
	require.Equal(t, []any{"one"}, fields["tags"])
}

func TestParseYAML_Empty_ReturnsEmptyMap(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.NotNil(t, fields)
	require.Empty(t, fields)
}

func TestParseYAML_Invalid_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte("title: [unclosed\n"))
	require.Error(t, err)
}
