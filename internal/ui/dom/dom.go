// Package dom holds a session's server-side document.
//
// Regions are elements with an id. Mutating a region marks it dirty; Flush
// turns dirty regions into patches the browser applies by id.
package dom

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/ui/view"
)

// Patch replaces the element with the given id by HTML.
type Patch struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// Document wraps a node tree. It is owned by one session loop and is not
// safe for concurrent use.
type Document struct {
	root   *html.Node
	doc    *goquery.Document
	index  map[string]*html.Node
	dirty  []string
	marked map[string]bool
	signal chan struct{}
}

// Option configures a Document.
type Option func(*Document)

// WithSignal shares a change signal between documents, so a subscriber keeps
// listening across view changes.
func WithSignal(ch chan struct{}) Option {
	return func(d *Document) {
		if ch != nil {
			d.signal = ch
		}
	}
}

// New indexes root and returns its Document.
func New(root *html.Node, opts ...Option) *Document {
	d := &Document{
		root:   root,
		doc:    goquery.NewDocumentFromNode(root),
		marked: make(map[string]bool),
		signal: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reindex()
	return d
}

func (d *Document) reindex() {
	d.index = make(map[string]*html.Node)
	d.doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		if _, dup := d.index[id]; !dup && id != "" {
			d.index[id] = s.Get(0)
		}
	})
}

// Region returns the handle for id. The handle is valid even when no such
// element exists; it then does nothing.
func (d *Document) Region(id string) *Region {
	return &Region{doc: d, id: id}
}

// Find runs a goquery selector over the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

func (d *Document) node(id string) *html.Node {
	return d.index[id]
}

func (d *Document) markDirty(id string) {
	if !d.marked[id] {
		d.marked[id] = true
		d.dirty = append(d.dirty, id)
	}
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Changed receives a value after mutations. Several mutations may collapse
// into one signal.
func (d *Document) Changed() <-chan struct{} {
	return d.signal
}

// Dirty reports whether patches are pending.
func (d *Document) Dirty() bool { return len(d.dirty) > 0 }

// Flush returns the pending patches in mutation order and clears them. A
// region nested in another dirty region is covered by its ancestor's patch.
func (d *Document) Flush() []Patch {
	if len(d.dirty) == 0 {
		return nil
	}
	patches := make([]Patch, 0, len(d.dirty))
	for _, id := range d.dirty {
		n := d.node(id)
		if n == nil || d.coveredByAncestor(n) {
			continue
		}
		patches = append(patches, Patch{ID: id, HTML: view.Render(n)})
	}
	d.dirty = d.dirty[:0]
	d.marked = make(map[string]bool)
	return patches
}

func (d *Document) coveredByAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if id, ok := view.GetAttr(p, "id"); ok && d.marked[id] && d.index[id] == p {
			return true
		}
	}
	return false
}

// Render writes the whole document and drops pending patches, which the
// written page already reflects.
func (d *Document) Render(w io.Writer) error {
	d.dirty = d.dirty[:0]
	d.marked = make(map[string]bool)
	return html.Render(w, d.root)
}

// HTML returns the whole document markup without touching pending patches.
func (d *Document) HTML() string {
	return view.Render(d.root)
}
