package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/alnah/go-syllabify/internal/dom"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/region"
	"github.com/alnah/go-syllabify/internal/syllable"
)

// DefaultMinTextLength is the shortest trimmed text unit that is segmented.
const DefaultMinTextLength = 6

// ErrBackendUnavailable is returned when the segmentation backend is missing
// or not ready at activation.
var ErrBackendUnavailable = syllable.ErrBackendUnavailable

// ErrInvalidConfig indicates an unusable pipeline configuration.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// DefaultExcludeTags are elements whose text is never segmented.
var DefaultExcludeTags = []string{
	"script", "style", "pre", "code", "textarea", "input",
	"noscript", "svg", "img", "video", "audio", "template",
}

// WholePageExcludeTags are added to the exclusion set in whole-page mode.
var WholePageExcludeTags = []string{"head", "title", "meta", "link"}

// Writer applies value changes to a tree. *dom.Document is a Writer that
// records mutations; DirectWriter changes nodes in place.
type Writer interface {
	SetText(n *html.Node, value string)
	SetAttr(n *html.Node, key, value string)
}

// DirectWriter writes straight to the nodes without notifying anyone.
type DirectWriter struct{}

// SetText sets the node value.
func (DirectWriter) SetText(n *html.Node, value string) { n.Data = value }

// SetAttr sets an attribute on an element.
func (DirectWriter) SetAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

var (
	_ Writer = DirectWriter{}
	_ Writer = (*dom.Document)(nil)
)

// Config configures an Annotator.
type Config struct {
	// Backend segments text. Required.
	Backend syllable.Backend
	// Separator marks an already segmented unit. Defaults to syllable.Separator.
	Separator string
	// MinTextLength is the shortest trimmed unit, in runes, that is segmented.
	MinTextLength int
	// ExcludeTags replaces DefaultExcludeTags when non-nil.
	ExcludeTags []string
	// Regions locates content regions. Nil means the whole body.
	Regions *region.Finder
	// SkipLine rejects units by trimmed text, for example section labels.
	SkipLine func(text string) bool
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger logger.Logger
}

// DefaultConfig returns a whole-page configuration for backend.
func DefaultConfig(backend syllable.Backend) Config {
	return Config{
		Backend:       backend,
		Separator:     syllable.Separator,
		MinTextLength: DefaultMinTextLength,
	}
}

// Stats counts the work done by one or more passes.
type Stats struct {
	Regions int // regions tagged as processed
	Units   int // eligible text units segmented
	Written int // units whose text changed
	Failed  int // units skipped after a backend failure
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Regions += o.Regions
	s.Units += o.Units
	s.Written += o.Written
	s.Failed += o.Failed
}

// Annotator finds eligible text units and segments them. It remembers every
// unit it evaluated, so a unit is segmented at most once for as long as it
// stays in the tree. An Annotator is not safe for concurrent use.
type Annotator struct {
	backend   syllable.Backend
	separator string
	minLength int
	exclude   map[string]struct{}
	regions   *region.Finder
	skipLine  func(string) bool
	log       logger.Logger
	processed map[*html.Node]struct{}
}

// New creates an Annotator. It fails with ErrBackendUnavailable when the
// backend is missing or not ready.
func New(cfg Config) (*Annotator, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("%w: no backend configured", ErrBackendUnavailable)
	}
	if err := syllable.Ready(cfg.Backend); err != nil {
		return nil, err
	}
	if cfg.MinTextLength < 0 {
		return nil, fmt.Errorf("%w: negative minimum text length %d", ErrInvalidConfig, cfg.MinTextLength)
	}

	a := &Annotator{
		backend:   cfg.Backend,
		separator: cfg.Separator,
		minLength: cfg.MinTextLength,
		regions:   cfg.Regions,
		skipLine:  cfg.SkipLine,
		log:       cfg.Logger,
		processed: make(map[*html.Node]struct{}),
	}
	if a.separator == "" {
		a.separator = syllable.Separator
	}
	if a.log == nil {
		a.log = logger.NewNop()
	}
	if a.regions == nil {
		a.regions, _ = region.NewFinder("")
	}

	tags := cfg.ExcludeTags
	if tags == nil {
		tags = DefaultExcludeTags
	}
	a.exclude = make(map[string]struct{}, len(tags)+len(WholePageExcludeTags))
	for _, t := range tags {
		a.exclude[strings.ToLower(t)] = struct{}{}
	}
	if a.regions.WholePage() {
		for _, t := range WholePageExcludeTags {
			a.exclude[t] = struct{}{}
		}
	}
	return a, nil
}

// Regions returns the region finder in use.
func (a *Annotator) Regions() *region.Finder {
	return a.regions
}

// Backend returns the segmentation backend.
func (a *Annotator) Backend() syllable.Backend {
	return a.backend
}

// Annotate runs a pass over root writing directly to the nodes.
func (a *Annotator) Annotate(root *html.Node) Stats {
	return a.Pass(root, DirectWriter{})
}

// Pass segments every eligible unit of the regions under root, in document
// order. In region mode only untagged regions are visited and each is tagged
// before its traversal.
func (a *Annotator) Pass(root *html.Node, w Writer) Stats {
	var st Stats
	if a.regions.WholePage() {
		for _, r := range a.regions.Find(root) {
			a.walk(r, w, &st)
		}
		return st
	}
	for _, r := range a.regions.Pending(root) {
		a.enter(r, w, &st)
	}
	return st
}

// Added segments a node inserted into a live tree: a text node is processed
// alone, an element has its subtree walked. In region mode an untagged region
// is tagged and walked whole, and an element outside any region still has the
// regions it contains tagged and walked.
func (a *Annotator) Added(n *html.Node, w Writer, st *Stats) {
	r := a.regions.Enclosing(n)
	if r != nil && !a.regions.WholePage() && !region.IsTagged(r) {
		a.enter(r, w, st)
		return
	}
	switch n.Type {
	case html.TextNode:
		if a.Eligible(n) {
			a.visit(n, w, st)
		}
	case html.ElementNode:
		if r != nil {
			a.walk(n, w, st)
			return
		}
		if a.regions.WholePage() {
			return
		}
		for _, r := range a.regions.Find(n) {
			if region.IsTagged(r) {
				a.walk(r, w, st)
				continue
			}
			a.enter(r, w, st)
		}
	}
}

// enter tags region r and walks it.
func (a *Annotator) enter(r *html.Node, w Writer, st *Stats) {
	region.Tag(w, r)
	st.Regions++
	a.walk(r, w, st)
}

// Forget drops n and its descendants from the processed table. Called for
// removed nodes so the table does not pin detached subtrees.
func (a *Annotator) Forget(n *html.Node) {
	for _, c := range dom.TextNodes(n) {
		delete(a.processed, c)
	}
}

// Processed reports whether n has been evaluated.
func (a *Annotator) Processed(n *html.Node) bool {
	_, ok := a.processed[n]
	return ok
}

// Eligible reports whether n is a text unit the annotator would segment now.
func (a *Annotator) Eligible(n *html.Node) bool {
	return a.candidate(n) && a.regions.Enclosing(n) != nil && a.allowed(n.Parent)
}

// walk visits the eligible units under n, rejecting excluded and editable
// subtrees.
func (a *Annotator) walk(n *html.Node, w Writer, st *Stats) {
	if !a.allowed(n) {
		return
	}
	dom.Walk(n, func(c *html.Node) dom.WalkResult {
		switch c.Type {
		case html.ElementNode:
			if a.rejects(c) {
				return dom.SkipChildren
			}
		case html.TextNode:
			a.visit(c, w, st)
		}
		return dom.Continue
	})
}

// visit segments one unit if it passes the unit-level checks. Ancestors are
// the caller's responsibility.
func (a *Annotator) visit(n *html.Node, w Writer, st *Stats) {
	if !a.candidate(n) {
		return
	}
	a.processed[n] = struct{}{}
	st.Units++

	out, err := syllable.Apply(a.backend, n.Data)
	if err != nil {
		st.Failed++
		a.log.Warn("segmentation failed, unit skipped",
			logger.Error(err),
			logger.Int("length", len(n.Data)),
		)
		return
	}
	if out != n.Data {
		w.SetText(n, out)
		st.Written++
	}
}

// candidate applies the checks that depend on the unit alone.
func (a *Annotator) candidate(n *html.Node) bool {
	if n == nil || n.Type != html.TextNode {
		return false
	}
	if a.Processed(n) {
		return false
	}
	if strings.Contains(n.Data, a.separator) {
		return false
	}
	trimmed := strings.TrimSpace(n.Data)
	if trimmed == "" || utf8.RuneCountInString(trimmed) < a.minLength {
		return false
	}
	return a.skipLine == nil || !a.skipLine(trimmed)
}

// allowed reports whether neither n nor any ancestor rejects its subtree.
func (a *Annotator) allowed(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && a.rejects(p) {
			return false
		}
	}
	return true
}

// rejects reports whether an element's subtree is excluded by tag or because
// it declares itself editable.
func (a *Annotator) rejects(e *html.Node) bool {
	if _, ok := a.exclude[strings.ToLower(e.Data)]; ok {
		return true
	}
	_, declared := dom.Attr(e, "contenteditable")
	return declared && dom.IsEditable(e)
}
