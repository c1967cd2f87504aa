// Package view builds HTML node trees.
//
// Text and attribute values are stored on the nodes as-is and escaped when
// the tree is rendered, so user supplied strings never become markup.
package view

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Option decorates an element.
type Option func(n *html.Node)

// El creates an element.
func El(tag string, opts ...Option) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// TextNode creates a bare text node.
func TextNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Text appends a text child.
func Text(s string) Option {
	return func(n *html.Node) { n.AppendChild(TextNode(s)) }
}

// Attr sets an attribute, replacing any previous value.
func Attr(key, val string) Option {
	return func(n *html.Node) { SetAttr(n, key, val) }
}

// ID sets the id attribute.
func ID(id string) Option { return Attr("id", id) }

// Data sets a data-* attribute.
func Data(name, val string) Option { return Attr("data-"+name, val) }

// Class appends classes to the class attribute.
func Class(classes ...string) Option {
	return func(n *html.Node) {
		add := strings.Join(classes, " ")
		if add == "" {
			return
		}
		if cur, ok := GetAttr(n, "class"); ok && cur != "" {
			add = cur + " " + add
		}
		SetAttr(n, "class", add)
	}
}

// Kids appends child nodes. Nil entries are skipped.
func Kids(kids ...*html.Node) Option {
	return func(n *html.Node) {
		for _, k := range kids {
			if k != nil {
				n.AppendChild(k)
			}
		}
	}
}

// If applies opts only when cond holds.
func If(cond bool, opts ...Option) Option {
	return func(n *html.Node) {
		if !cond {
			return
		}
		for _, opt := range opts {
			if opt != nil {
				opt(n)
			}
		}
	}
}

// Each builds one node per item.
func Each[T any](items []T, build func(i int, item T) *html.Node) []*html.Node {
	out := make([]*html.Node, 0, len(items))
	for i, it := range items {
		out = append(out, build(i, it))
	}
	return out
}

// GetAttr returns the value of key on n.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n. It reports whether it was present.
func RemoveAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// Render returns the markup of n. Render errors only come from the writer,
// which cannot fail here.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}
