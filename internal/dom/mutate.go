package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// RemoveChild detaches node from parent and returns it.
func RemoveChild(parent, node *html.Node) (*html.Node, error) {
	if parent == nil || node == nil || node.Parent != parent {
		return nil, ErrNotChild
	}
	parent.RemoveChild(node)
	return node, nil
}

// InsertBefore inserts newNode into parent's children just before ref.
// A nil ref appends newNode as the last child.
func InsertBefore(parent, newNode, ref *html.Node) error {
	if newNode.Parent != nil || newNode.PrevSibling != nil || newNode.NextSibling != nil {
		return ErrAttached
	}
	if ref != nil && ref.Parent != parent {
		return ErrNotChild
	}
	parent.InsertBefore(newNode, ref)
	return nil
}

// Snapshot renders a structural fingerprint of the subtree at n: element
// names, attributes and text in tree order. Equal snapshots mean the trees
// have the same shape and content.
func Snapshot(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node, int)
	walk = func(n *html.Node, depth int) {
		buf.WriteString(strings.Repeat("  ", depth))
		switch n.Type {
		case html.DocumentNode:
			buf.WriteString("#document")
		case html.ElementNode:
			buf.WriteString("<" + n.Data)
			for _, a := range n.Attr {
				fmt.Fprintf(&buf, " %s=%q", a.Key, a.Val)
			}
			buf.WriteString(">")
		case html.TextNode:
			fmt.Fprintf(&buf, "%q", n.Data)
		case html.CommentNode:
			fmt.Fprintf(&buf, "<!--%s-->", n.Data)
		case html.DoctypeNode:
			buf.WriteString("<!doctype " + n.Data + ">")
		}
		buf.WriteByte('\n')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	if n != nil {
		walk(n, 0)
	}
	return buf.String()
}
