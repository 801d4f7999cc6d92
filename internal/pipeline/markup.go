package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-syllabify/internal/dom"
)

// ErrMarkupParse indicates the HTML input could not be parsed.
var ErrMarkupParse = errors.New("HTML parse failed")

// Markup is a parsed HTML input. Fragments are held under a document node and
// render without an html/body wrapper.
type Markup struct {
	Root     *html.Node
	Fragment bool
}

// ParseMarkup parses content, handling both full documents and fragments.
func ParseMarkup(content string) (*Markup, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMarkupParse, err)
		}
		return &Markup{Root: doc}, nil
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkupParse, err)
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return &Markup{Root: container, Fragment: true}, nil
}

// Render renders the markup back to a string.
func (m *Markup) Render() (string, error) {
	var buf strings.Builder

	if m.Fragment {
		for c := m.Root.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, m.Root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Title returns the trimmed text of the document <title>, if any.
func (m *Markup) Title() string {
	if t := dom.FindElement(m.Root, atom.Title); t != nil {
		return strings.TrimSpace(dom.Text(t))
	}
	return ""
}

// SetBase adds <base href> to the document head so relative references keep
// resolving against href once the document is rendered from elsewhere. An
// existing base element or a missing head leaves the markup unchanged.
func (m *Markup) SetBase(href string) {
	if href == "" || m.Fragment || dom.FindElement(m.Root, atom.Base) != nil {
		return
	}
	head := dom.FindElement(m.Root, atom.Head)
	if head == nil {
		return
	}
	head.InsertBefore(dom.NewElement("base", html.Attribute{Key: "href", Val: href}), head.FirstChild)
}

// RewriteRelativePaths converts relative img[src] and a[href] paths to
// absolute file:// URLs so a document rendered from a temporary file still
// resolves its local images. Paths escaping sourceDir are left alone.
func (m *Markup) RewriteRelativePaths(sourceDir string) error {
	if sourceDir == "" {
		return nil
	}
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}
	rewriteNode(m.Root, abs)
	return nil
}

func rewriteNode(n *html.Node, sourceDir string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", sourceDir)
		case atom.A:
			rewriteAttr(n, "href", sourceDir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, sourceDir)
	}
}

func rewriteAttr(n *html.Node, key, sourceDir string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}
		abs := filepath.Join(sourceDir, attr.Val)
		if !isPathUnderDir(abs, sourceDir) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(abs)
	}
}

// isRelativePath reports whether path is a local relative file reference.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:", "mailto:"} {
		if strings.HasPrefix(path, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(path)
}

func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
