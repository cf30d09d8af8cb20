package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNotChild is returned when a node is not a child of the given parent.
	ErrNotChild = errors.New("node is not a child of parent")
	// ErrAttached is returned when inserting a node that still has a parent.
	ErrAttached = errors.New("node is already attached")
)

// Document is a mutable, parsed HTML tree owned by the caller.
type Document struct {
	root     *html.Node
	fragment bool
}

// Parse reads HTML from r. A leading byte order mark is dropped. Input whose
// first token, after whitespace and comments, is a doctype or an html, head
// or body tag is parsed as a full document; anything else is parsed as a
// body fragment and hung under a synthetic document node so every element
// has a parent.
func Parse(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	content := strings.TrimPrefix(string(src), byteOrderMark)

	if isFullDocument(content) {
		root, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return &Document{root: root}, nil
	}

	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{root: root, fragment: true}, nil
}

const byteOrderMark = "\ufeff"

func isFullDocument(content string) bool {
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.CommentToken:
		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				return false
			}
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html, atom.Head, atom.Body:
				return true
			}
			return false
		default:
			return false
		}
	}
}

// NewFragment wraps already-built nodes as a fragment document.
func NewFragment(nodes ...*html.Node) *Document {
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{root: root, fragment: true}
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Render writes the document as HTML. Fragments render only their children.
func (d *Document) Render(w io.Writer) error {
	if !d.fragment {
		return html.Render(w, d.root)
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var buf strings.Builder
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
