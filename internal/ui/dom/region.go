package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/ui/view"
)

const hiddenAttr = "hidden"

// Region is a render target addressed by element id.
type Region struct {
	doc *Document
	id  string
}

// ID returns the element id the region targets.
func (r *Region) ID() string { return r.id }

// Present reports whether the element exists in the document.
func (r *Region) Present() bool { return r.doc.node(r.id) != nil }

// Replace swaps the element's children for nodes.
func (r *Region) Replace(nodes ...*html.Node) {
	n := r.doc.node(r.id)
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, k := range nodes {
		if k == nil {
			continue
		}
		if k.Parent != nil {
			k.Parent.RemoveChild(k)
		}
		n.AppendChild(k)
	}
	r.doc.reindex()
	r.doc.markDirty(r.id)
}

// SetText replaces the element's children with a single text node.
func (r *Region) SetText(s string) {
	r.Replace(view.TextNode(s))
}

// Show makes the element visible.
func (r *Region) Show() {
	if n := r.doc.node(r.id); n != nil && view.RemoveAttr(n, hiddenAttr) {
		r.doc.markDirty(r.id)
	}
}

// Hide hides the element.
func (r *Region) Hide() {
	if n := r.doc.node(r.id); n != nil {
		if _, hidden := view.GetAttr(n, hiddenAttr); !hidden {
			view.SetAttr(n, hiddenAttr, "")
			r.doc.markDirty(r.id)
		}
	}
}

// Visible reports whether the element exists and is not hidden.
func (r *Region) Visible() bool {
	n := r.doc.node(r.id)
	if n == nil {
		return false
	}
	_, hidden := view.GetAttr(n, hiddenAttr)
	return !hidden
}

// SetAttr sets an attribute on the element.
func (r *Region) SetAttr(key, val string) {
	n := r.doc.node(r.id)
	if n == nil {
		return
	}
	if cur, ok := view.GetAttr(n, key); ok && cur == val {
		return
	}
	view.SetAttr(n, key, val)
	r.doc.markDirty(r.id)
}

// RemoveAttr deletes an attribute from the element.
func (r *Region) RemoveAttr(key string) {
	if n := r.doc.node(r.id); n != nil && view.RemoveAttr(n, key) {
		r.doc.markDirty(r.id)
	}
}

// Attr reads an attribute of the element.
func (r *Region) Attr(key string) (string, bool) {
	n := r.doc.node(r.id)
	if n == nil {
		return "", false
	}
	return view.GetAttr(n, key)
}

// Selection returns the element as a goquery selection; empty when absent.
func (r *Region) Selection() *goquery.Selection {
	n := r.doc.node(r.id)
	if n == nil {
		return r.doc.doc.FindNodes()
	}
	return r.doc.doc.FindNodes(n)
}

// HTML returns the element's inner markup.
func (r *Region) HTML() string {
	h, _ := r.Selection().Html()
	return h
}

// Text returns the element's text content.
func (r *Region) Text() string {
	return r.Selection().Text()
}
