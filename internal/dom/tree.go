package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WalkResult tells Walk how to continue.
type WalkResult int

// Walk results.
const (
	Continue WalkResult = iota
	SkipChildren
)

// Walk visits n and its descendants in document order. Returning SkipChildren
// prunes the subtree of the visited node. Only node values may change during a
// walk; structural changes are not supported.
func Walk(n *html.Node, visit func(*html.Node) WalkResult) {
	if n == nil {
		return
	}
	if visit(n) == SkipChildren {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// FindElement returns the first element with the given tag in document order.
func FindElement(n *html.Node, tag atom.Atom) *html.Node {
	var found *html.Node
	Walk(n, func(c *html.Node) WalkResult {
		if found != nil {
			return SkipChildren
		}
		if c.Type == html.ElementNode && c.DataAtom == tag {
			found = c
			return SkipChildren
		}
		return Continue
	})
	return found
}

// IsAncestor reports whether ancestor is a proper ancestor of n.
func IsAncestor(ancestor, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Contains reports whether n is root or lies inside it.
func Contains(root, n *html.Node) bool {
	return n == root || IsAncestor(root, n)
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) WalkResult {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return Continue
	})
	return b.String()
}

// TextNodes returns the text nodes under n in document order.
func TextNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) WalkResult {
		if c.Type == html.TextNode {
			out = append(out, c)
		}
		return Continue
	})
	return out
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// HasClass reports whether an element carries class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// WithClass returns the class attribute of n with class appended, and whether
// it was missing.
func WithClass(n *html.Node, class string) (string, bool) {
	v, _ := Attr(n, "class")
	if HasClass(n, class) {
		return v, false
	}
	if strings.TrimSpace(v) == "" {
		return class, true
	}
	return strings.TrimSpace(v) + " " + class, true
}

// IsEditable reports whether n, or the nearest ancestor declaring it, has
// contenteditable set to anything other than "false".
func IsEditable(n *html.Node) bool {
	for e := n; e != nil; e = e.Parent {
		if e.Type != html.ElementNode {
			continue
		}
		v, ok := Attr(e, "contenteditable")
		if !ok {
			continue
		}
		return !strings.EqualFold(strings.TrimSpace(v), "false")
	}
	return false
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	a := atom.Lookup([]byte(tag))
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: tag, Attr: attrs}
}

// ParseFragment parses s as the children of context. A nil context parses in
// a body element.
func ParseFragment(s string, context *html.Node) ([]*html.Node, error) {
	if context == nil {
		context = NewElement("body")
	}
	return html.ParseFragment(strings.NewReader(s), context)
}
