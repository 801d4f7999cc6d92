package pipeline

import (
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/alnah/go-syllabify/internal/dom"
)

// StyleInjector adds a stylesheet to a parsed document.
type StyleInjector interface {
	InjectStyle(m *Markup, css string)
}

// StyleInjection inserts CSS as a <style> element.
type StyleInjection struct{}

// InjectStyle appends a <style> element to <head>. Without a head the element
// is inserted as the first child of <body>, or of the root for fragments.
func (StyleInjection) InjectStyle(m *Markup, css string) {
	if strings.TrimSpace(css) == "" || m == nil || m.Root == nil {
		return
	}

	style := dom.NewElement("style")
	style.AppendChild(dom.NewText(sanitizeCSS(css)))

	if head := dom.FindElement(m.Root, atom.Head); head != nil {
		head.AppendChild(style)
		return
	}
	parent := m.Root
	if body := dom.FindElement(m.Root, atom.Body); body != nil {
		parent = body
	}
	parent.InsertBefore(style, parent.FirstChild)
}

// sanitizeCSS escapes sequences that could close the <style> element.
// Style content is rendered raw, so "</style>" in CSS would end the block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

var _ StyleInjector = StyleInjection{}

