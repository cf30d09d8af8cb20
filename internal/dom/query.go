package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// FindFirst returns the first descendant of root, in document order, for
// which pred returns true. root itself is never matched.
func FindFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := FindFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// ByID returns the first element under root whose id attribute equals id.
func ByID(root *html.Node, id string) *html.Node {
	return FindFirst(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// WithAttr returns the first element under root carrying the attribute key,
// whatever its value. Names are compared case-insensitively because the
// tokenizer lower-cases them.
func WithAttr(root *html.Node, key string) *html.Node {
	return FindFirst(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		_, ok := Attr(n, key)
		return ok
	})
}

// Attr looks up an attribute by case-insensitive name.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// Contains reports whether node is ancestor or a descendant of it.
func Contains(ancestor, node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}
