package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradyumna2905/quill/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{Title: "pradyumna.io"},
		Social: []config.SocialLink{
			{Name: "GitHub", URL: "https://github.com/pradyumna2905"},
		},
		Output: config.OutputConfig{Clean: true},
	}
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(testConfig(), nil)
	require.NoError(t, err)
	return b
}

func readOutput(t *testing.T, outputRoot, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outputRoot, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuild_FullSite(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "about.md", "---\ntitle: About\nlayout: page\n---\nHi, I am Pradyumna.\n")
	writeSource(t, source, "posts/2019-03-14-testing-graphql.md",
		"---\ntitle: Testing GraphQL\nlayout: post\ndate: \"2019-03-14\"\n---\nTutorial body.\n")
	writeSource(t, source, "posts/2018-01-02-hello.md",
		"---\ntitle: Hello\nlayout: post\ndate: \"2018-01-02\"\n---\nFirst post.\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 3, report.DocumentsParsed)
	// 3 documents plus the post index and the page index.
	assert.Equal(t, 5, report.DocumentsWritten)
	assert.Empty(t, report.Warnings)

	about := readOutput(t, output, "about/index.html")
	assert.Contains(t, about, "About")
	assert.Contains(t, about, "Hi, I am Pradyumna.")

	index := readOutput(t, output, "index.html")
	assert.Contains(t, index, "Testing GraphQL")
	assert.Contains(t, index, "Hello")
	// Date-descending listing: newer post first.
	assert.Less(t,
		strings.Index(index, "Testing GraphQL"),
		strings.Index(index, "Hello"))
}

func TestBuild_PostMissingDate_WarnsAndSkips(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "posts/good.md",
		"---\ntitle: Good\nlayout: post\ndate: \"2020-01-01\"\n---\nok\n")
	writeSource(t, source, "posts/no-date.md",
		"---\ntitle: No Date\nlayout: post\n---\noops\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "posts/no-date", report.Warnings[0].DocID)

	_, statErr := os.Stat(filepath.Join(output, "posts", "no-date"))
	assert.True(t, os.IsNotExist(statErr))
	assert.FileExists(t, filepath.Join(output, "posts", "good", "index.html"))
}

func TestBuild_DuplicateSlugCollision_FatalZeroOutput(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "drafts/about.md", "---\ntitle: About A\nlayout: page\n---\na\n")
	writeSource(t, source, "pages/about.md", "---\ntitle: About B\nlayout: page\n---\nb\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.Error(t, err)

	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, 0, report.DocumentsWritten)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output may be written on a fatal collision")
}

func TestBuild_LastWins_ThreeAboutRevisions(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "about-v1.md", "---\ntitle: About\nlayout: page\nslug: about\n---\nv1 body\n")
	writeSource(t, source, "about-v2.md", "---\ntitle: About\nlayout: page\nslug: about\n---\nv2 body\n")
	writeSource(t, source, "about-v3.md", "---\ntitle: About\nlayout: page\nslug: about\n---\nv3 body\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DocumentsParsed)
	about := readOutput(t, output, "about/index.html")
	assert.Contains(t, about, "v3 body")
	assert.NotContains(t, about, "v1 body")
}

func TestBuild_PageShadowingListing_FatalZeroOutput(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	// A document slugged "pages" would land exactly where the page listing
	// renders; it must abort, not lose the document body to the listing.
	writeSource(t, source, "pages.md", "---\ntitle: All Pages\nlayout: page\n---\npage body text\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.Error(t, err)

	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, 0, report.DocumentsWritten)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_UnpublishedPost_NoOutputNotListed(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "posts/live.md",
		"---\ntitle: Live\nlayout: post\ndate: \"2020-01-01\"\n---\nlive\n")
	writeSource(t, source, "posts/manifesto.md",
		"---\ntitle: Budget Manifesto\nlayout: post\ndate: \"2020-02-01\"\npublished: false\n---\nsecret\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	// Parsed and held in the store, never written or listed.
	assert.Equal(t, 2, report.DocumentsParsed)
	_, statErr := os.Stat(filepath.Join(output, "posts", "manifesto"))
	assert.True(t, os.IsNotExist(statErr))
	index := readOutput(t, output, "index.html")
	assert.NotContains(t, index, "Budget Manifesto")
}

func TestBuild_UnknownTemplate_WarnsAndSkips(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "gallery.md", "---\ntitle: Gallery\nlayout: gallery\n---\npics\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, report.Outcome)
	// One warning for the skipped document, one for the dangling listing
	// link left behind by the skip.
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, "gallery", report.Warnings[0].DocID)
	assert.Equal(t, "render", report.Warnings[0].Category)
}

func TestBuild_MissingMetadataBlock_WarnsAndSkips(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "raw.md", "No frontmatter at all.\n")
	writeSource(t, source, "about.md", "---\ntitle: About\nlayout: page\n---\nHi.\n")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "raw", report.Warnings[0].DocID)
	assert.FileExists(t, filepath.Join(output, "about", "index.html"))
}

func TestBuild_Idempotent_ByteIdenticalOutput(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, source, "about.md", "---\ntitle: About\nlayout: page\n---\nHi.\n")
	writeSource(t, source, "posts/hello.md",
		"---\ntitle: Hello\nlayout: post\ndate: \"2020-05-06\"\n---\nworld\n")

	b := newTestBuilder(t)
	_, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)
	first := snapshotTree(t, output)

	_, err = b.Build(context.Background(), source, output)
	require.NoError(t, err)
	second := snapshotTree(t, output)

	assert.Equal(t, first, second)
}

func TestBuild_EmptySource(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")

	b := newTestBuilder(t)
	report, err := b.Build(context.Background(), source, output)
	require.NoError(t, err)

	assert.Equal(t, 0, report.DocumentsParsed)
	// The (empty) post index still renders.
	assert.Equal(t, 1, report.DocumentsWritten)
	assert.FileExists(t, filepath.Join(output, "index.html"))
}

func TestBuild_CanceledContext(t *testing.T) {
	source := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestBuilder(t)
	report, err := b.Build(ctx, source, output)
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
}

func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, rerr := os.ReadFile(p)
		if rerr != nil {
			return rerr
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return rerr
		}
		tree[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}
