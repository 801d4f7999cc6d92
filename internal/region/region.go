// Package region locates the content regions of a page that get annotated.
//
// A region is either the document body or every element matching a CSS
// selector (for example the lyric containers of a lyrics site). Once annotated,
// a region carries the ProcessedClass tag and is never traversed again.
package region

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-syllabify/internal/dom"
)

// ProcessedClass tags a region that has been annotated.
const ProcessedClass = "syllabified-processed"

// LyricsSelector matches the lyric containers of lyrics sites.
const LyricsSelector = `[data-lyrics-container="true"]`

// ErrInvalidSelector is returned for selectors that do not compile.
var ErrInvalidSelector = errors.New("invalid region selector")

// Finder locates regions. The zero value is not usable; use NewFinder.
type Finder struct {
	selector string
	matcher  cascadia.Selector
}

// NewFinder compiles selector. An empty selector designates the body.
func NewFinder(selector string) (*Finder, error) {
	selector = strings.TrimSpace(selector)
	f := &Finder{selector: selector}
	if selector == "" {
		return f, nil
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
	}
	f.matcher = m
	return f, nil
}

// Selector returns the source selector, empty for the body.
func (f *Finder) Selector() string {
	return f.selector
}

// WholePage reports whether the finder designates the body.
func (f *Finder) WholePage() bool {
	return f.matcher == nil
}

// Find returns the regions under root in document order. Regions nested in
// another region are folded into their outer region.
func (f *Finder) Find(root *html.Node) []*html.Node {
	if f.matcher == nil {
		if body := dom.FindElement(root, atom.Body); body != nil {
			return []*html.Node{body}
		}
		return []*html.Node{root}
	}

	sel := goquery.NewDocumentFromNode(root).FindMatcher(f.matcher)
	var out []*html.Node
	for _, n := range sel.Nodes {
		if len(out) > 0 && dom.IsAncestor(out[len(out)-1], n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Pending returns the regions under root that are not tagged yet.
func (f *Finder) Pending(root *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range f.Find(root) {
		if !IsTagged(n) {
			out = append(out, n)
		}
	}
	return out
}

// Enclosing returns the region containing n, or nil.
func (f *Finder) Enclosing(n *html.Node) *html.Node {
	if f.matcher == nil {
		for p := n; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && p.DataAtom == atom.Body {
				return p
			}
		}
		return nil
	}
	sel := goquery.NewDocumentFromNode(n).ClosestMatcher(f.matcher)
	if len(sel.Nodes) == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// IsTagged reports whether n carries ProcessedClass.
func IsTagged(n *html.Node) bool {
	return dom.HasClass(n, ProcessedClass)
}

// AttrSetter writes element attributes.
type AttrSetter interface {
	SetAttr(n *html.Node, key, value string)
}

// Tag marks n as processed through w.
func Tag(w AttrSetter, n *html.Node) {
	if v, missing := dom.WithClass(n, ProcessedClass); missing {
		w.SetAttr(n, "class", v)
	}
}

// Bracketed reports whether trimmed text is a section label such as
// "[Chorus]" or "[Verse 2: Artist]".
func Bracketed(text string) bool {
	t := strings.TrimSpace(text)
	return len(t) >= 2 && strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")
}
