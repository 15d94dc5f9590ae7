// Package linkverify scans rendered HTML output for internal links that do
// not resolve to a file in the output tree.
package linkverify

import (
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Problem is one unresolvable internal link.
type Problem struct {
	SourceFile string // output-relative path of the page containing the link
	Href       string
}

// Verify parses every .html file under root and checks that internal hrefs
// resolve to an existing output file. External links (with a scheme or host)
// and pure fragments are ignored.
func Verify(root string) ([]Problem, error) {
	pages := map[string][]string{} // relative page path -> hrefs

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return rerr
		}
		hrefs, herr := extractHrefs(p)
		if herr != nil {
			return herr
		}
		pages[filepath.ToSlash(rel)] = hrefs
		return nil
	})
	if err != nil {
		return nil, err
	}

	var problems []Problem
	for page, hrefs := range pages {
		for _, href := range hrefs {
			target, internal := resolveInternal(page, href)
			if !internal {
				continue
			}
			if !targetExists(root, target) {
				problems = append(problems, Problem{SourceFile: page, Href: href})
			}
		}
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].SourceFile != problems[j].SourceFile {
			return problems[i].SourceFile < problems[j].SourceFile
		}
		return problems[i].Href < problems[j].Href
	})
	return problems, nil
}

// extractHrefs collects a[href] and img[src] values from one HTML file.
func extractHrefs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if v := getAttr(n, "href"); v != "" {
					hrefs = append(hrefs, v)
				}
			case "img":
				if v := getAttr(n, "src"); v != "" {
					hrefs = append(hrefs, v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveInternal maps an href on a page to an output-relative target path.
// The second return is false for external links and fragments.
func resolveInternal(page, href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		// Fragment-only link; anchors are the renderer's concern.
		return "", false
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir(page), p)
	}
	return strings.TrimPrefix(path.Clean(p), "/"), true
}

// targetExists accepts a direct file hit or a directory with an index.html.
func targetExists(root, target string) bool {
	full := filepath.Join(root, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err == nil && !info.IsDir() {
		return true
	}
	if err == nil && info.IsDir() {
		_, ierr := os.Stat(filepath.Join(full, "index.html"))
		return ierr == nil
	}
	return false
}
