package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pagerewrite/internal/doctree"
)

// Parser converts raw non-HTML source bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Options tune individual parsers.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can rewrite.
// HTML is loaded as markup directly; everything else goes through a Parser.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".html", ".htm":
		return nil, fmt.Errorf("%s is markup, load it directly", ext)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsMarkup reports whether filename is an HTML file.
func IsMarkup(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// stripExt returns filename without its extension, for default titles.
func stripExt(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// sectionBuilder nests sections by heading level as paragraphs and headings
// arrive in document order.
type sectionBuilder struct {
	tree  *doctree.DocTree
	stack []*doctree.DocNode
}

func newSectionBuilder(title string) *sectionBuilder {
	return &sectionBuilder{tree: &doctree.DocTree{Title: title}}
}

func (b *sectionBuilder) heading(level int, title string) *doctree.DocNode {
	n := &doctree.DocNode{Title: title, Level: level}
	// Pop until the top is a strict ancestor.
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].Level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	if len(b.stack) == 0 {
		b.tree.Children = append(b.tree.Children, n)
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, n)
	}
	b.stack = append(b.stack, n)
	return n
}

func (b *sectionBuilder) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(b.stack) == 0 {
		b.tree.Lead = append(b.tree.Lead, text)
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Paragraphs = append(top.Paragraphs, text)
}

func (b *sectionBuilder) finish() *doctree.DocTree {
	return b.tree
}
