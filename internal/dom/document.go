// Package dom is a small live document model over golang.org/x/net/html.
//
// A Document is the single mutation entry point for a parsed tree. Every
// structural or text change is recorded and queued to the Observers watching
// the affected node; queued records are delivered as one batch per observer in
// a microtask of the owning Loop, after the mutating task returns. The model
// mirrors the browser MutationObserver contract closely enough for code that
// annotates a page while its host keeps changing it.
package dom

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MutationType identifies what a MutationRecord describes.
type MutationType int

// Mutation types.
const (
	ChildList MutationType = iota + 1
	CharacterData
	Attributes
)

// String returns the DOM name of the mutation type.
func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case CharacterData:
		return "characterData"
	case Attributes:
		return "attributes"
	default:
		return fmt.Sprintf("MutationType(%d)", int(t))
	}
}

// MutationRecord describes one change.
type MutationRecord struct {
	Type          MutationType
	Target        *html.Node
	Added         []*html.Node
	Removed       []*html.Node
	AttributeName string
	OldValue      string
}

// Scheduler queues a function to run after the current task.
type Scheduler interface {
	QueueMicrotask(fn func())
}

// Document owns a node tree and routes its mutations to observers.
// It is not safe for concurrent use; drive it from a single Loop.
type Document struct {
	root      *html.Node
	scheduler Scheduler
	observers []*Observer
	queued    bool
}

// NewDocument wraps root. A nil scheduler leaves delivery to Flush.
func NewDocument(root *html.Node, scheduler Scheduler) *Document {
	return &Document{root: root, scheduler: scheduler}
}

// Parse parses a full HTML document.
func Parse(r io.Reader, scheduler Scheduler) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return NewDocument(root, scheduler), nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string, scheduler Scheduler) (*Document, error) {
	return Parse(strings.NewReader(s), scheduler)
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element, or the root when there is none.
func (d *Document) Body() *html.Node {
	if body := FindElement(d.root, atom.Body); body != nil {
		return body
	}
	return d.root
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// AppendChild adds child as the last child of parent, detaching it from its
// current parent first.
func (d *Document) AppendChild(parent, child *html.Node) {
	d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child before ref under parent. A nil ref appends.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if child.Parent != nil {
		d.RemoveChild(child.Parent, child)
	}
	parent.InsertBefore(child, ref)
	d.enqueue(MutationRecord{Type: ChildList, Target: parent, Added: []*html.Node{child}})
}

// RemoveChild detaches child from parent. It is a no-op when child is not a
// child of parent.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
	d.enqueue(MutationRecord{Type: ChildList, Target: parent, Removed: []*html.Node{child}})
}

// SetText replaces the value of a text or comment node. Writing the current
// value is not a mutation.
func (d *Document) SetText(n *html.Node, value string) {
	if n.Data == value {
		return
	}
	old := n.Data
	n.Data = value
	d.enqueue(MutationRecord{Type: CharacterData, Target: n, OldValue: old})
}

// SetAttr sets an attribute on an element.
func (d *Document) SetAttr(n *html.Node, key, value string) {
	old, had := Attr(n, key)
	if had && old == value {
		return
	}
	setAttr(n, key, value)
	d.enqueue(MutationRecord{Type: Attributes, Target: n, AttributeName: key, OldValue: old})
}

// Flush delivers every pending record synchronously.
func (d *Document) Flush() {
	d.deliver()
}

// Pending reports whether any observer has undelivered records.
func (d *Document) Pending() bool {
	for _, o := range d.observers {
		if len(o.records) > 0 {
			return true
		}
	}
	return false
}

func (d *Document) enqueue(rec MutationRecord) {
	interested := false
	for _, o := range d.observers {
		if o.wants(rec) {
			o.records = append(o.records, rec)
			interested = true
		}
	}
	if interested {
		d.scheduleDelivery()
	}
}

func (d *Document) scheduleDelivery() {
	if d.queued || d.scheduler == nil {
		return
	}
	d.queued = true
	d.scheduler.QueueMicrotask(d.deliver)
}

// deliver hands each observer its queued batch, in registration order.
// Records queued by callbacks schedule another delivery.
func (d *Document) deliver() {
	d.queued = false
	for _, o := range slices.Clone(d.observers) {
		records := o.TakeRecords()
		if len(records) == 0 {
			continue
		}
		o.callback(records, o)
	}
}

func (d *Document) register(o *Observer) {
	if !slices.Contains(d.observers, o) {
		d.observers = append(d.observers, o)
	}
}

func (d *Document) unregister(o *Observer) {
	d.observers = slices.DeleteFunc(d.observers, func(x *Observer) bool { return x == o })
}
