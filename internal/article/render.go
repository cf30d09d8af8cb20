// Package article turns source documents into the sectioned article markup
// the transforms operate on.
package article

import (
	"strconv"

	"github.com/dgallion1/pagerewrite/internal/doctree"
	"github.com/dgallion1/pagerewrite/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Section identifiers, suffixed with the section index. Index 0 is the lead.
const (
	SectionBlockPrefix = "section_heading_and_content_block_"
	EditButtonPrefix   = "edit_section_button_"
	ContentBlockPrefix = "content_block_"
)

type section struct {
	title      string
	level      int
	page       int
	paragraphs []string
}

// Render lays out tree as one block per section:
//
//	div#section_heading_and_content_block_N[data-page]
//	  hL.section_heading
//	  span.edit_section_button#edit_section_button_N
//	  div.content_block#content_block_N > p...
//
// Section 0 is the lead, headed by the document title. A tree with no lead
// paragraphs whose first section is a level-1 heading uses that heading as
// the title and its paragraphs as the lead. Sections taken from a paged
// source carry their page number in data-page.
func Render(tree *doctree.DocTree) *dom.Document {
	return render(tree, "")
}

// render is Render with an optional lead title that wins over the source's.
func render(tree *doctree.DocTree, title string) *dom.Document {
	sections := flatten(tree)
	if title != "" {
		sections[0].title = title
	}
	blocks := make([]*html.Node, 0, len(sections))
	for i, s := range sections {
		blocks = append(blocks, renderSection(i, s))
	}
	return dom.NewFragment(blocks...)
}

func flatten(tree *doctree.DocTree) []section {
	lead := section{title: tree.Title, level: 1, paragraphs: tree.Lead}
	rest := tree.Children
	if len(lead.paragraphs) == 0 && len(rest) > 0 && rest[0].Level == 1 {
		first := rest[0]
		lead.title = first.Title
		lead.paragraphs = first.Paragraphs
		rest = append(append([]*doctree.DocNode{}, first.Children...), rest[1:]...)
	}

	out := []section{lead}
	var visit func(nodes []*doctree.DocNode, depth int)
	visit = func(nodes []*doctree.DocNode, depth int) {
		for _, n := range nodes {
			level := n.Level
			if level == 0 {
				level = depth + 1
			}
			out = append(out, section{
				title:      n.Title,
				level:      min(max(level, 2), 6),
				page:       n.Page,
				paragraphs: n.Paragraphs,
			})
			visit(n.Children, depth+1)
		}
	}
	visit(rest, 1)
	return out
}

func renderSection(i int, s section) *html.Node {
	idx := strconv.Itoa(i)

	block := element(atom.Div, "id", SectionBlockPrefix+idx)
	if s.page > 0 {
		block.Attr = append(block.Attr, html.Attribute{Key: "data-page", Val: strconv.Itoa(s.page)})
	}

	heading := element(headingAtom(s.level), "class", "section_heading", "id", idx, "sectionid", idx)
	heading.AppendChild(text(s.title))
	block.AppendChild(heading)

	block.AppendChild(element(atom.Span, "class", "edit_section_button", "id", EditButtonPrefix+idx))

	content := element(atom.Div, "id", ContentBlockPrefix+idx, "class", "content_block")
	for _, para := range s.paragraphs {
		p := element(atom.P)
		p.AppendChild(text(para))
		content.AppendChild(p)
	}
	block.AppendChild(content)

	return block
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	}
	return atom.H6
}

// element builds an element node; attrs are key/value pairs.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
