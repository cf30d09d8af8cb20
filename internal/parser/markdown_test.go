package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level child (h1), got %d", len(tree.Children))
	}

	h1 := tree.Children[0]
	if h1.Title != "Title" || h1.Level != 1 {
		t.Errorf("expected h1 %q, got %q (level %d)", "Title", h1.Title, h1.Level)
	}
	if want := []string{"Intro text."}; !reflect.DeepEqual(h1.Paragraphs, want) {
		t.Errorf("expected h1 paragraphs %v, got %v", want, h1.Paragraphs)
	}
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(h1.Children))
	}

	secA := h1.Children[0]
	if secA.Title != "Section A" {
		t.Errorf("expected %q, got %q", "Section A", secA.Title)
	}
	if want := []string{"Section A content."}; !reflect.DeepEqual(secA.Paragraphs, want) {
		t.Errorf("expected section A paragraphs %v, got %v", want, secA.Paragraphs)
	}
	if len(secA.Children) != 1 || secA.Children[0].Title != "Subsection A1" {
		t.Fatalf("expected one h3 child %q under Section A", "Subsection A1")
	}
	if secA.Children[0].Level != 3 {
		t.Errorf("expected level 3, got %d", secA.Children[0].Level)
	}

	if secB := h1.Children[1]; secB.Title != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", secB.Title)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Fatalf("expected no sections for headingless markdown, got %d", len(tree.Children))
	}
	want := []string{"Just some plain text.", "Another paragraph here."}
	if !reflect.DeepEqual(tree.Lead, want) {
		t.Errorf("expected lead %v, got %v", want, tree.Lead)
	}
}

func TestMarkdownParser_InlineMarkupFlattened(t *testing.T) {
	input := "Some *emphasis* and `code` and [a link](http://x).\n"
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "inline.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Some emphasis and code and a link."}
	if !reflect.DeepEqual(tree.Lead, want) {
		t.Errorf("expected %v, got %v", want, tree.Lead)
	}
}

func TestMarkdownParser_ListItemsAreParagraphs(t *testing.T) {
	input := "# Things\n\n- one\n- two\n- three\n"
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "list.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Children))
	}
	want := []string{"one", "two", "three"}
	if got := tree.Children[0].Paragraphs; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMarkdownParser_MixedContentWithCodeBlocks(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level child, got %d", len(tree.Children))
	}
	h1 := tree.Children[0]
	if len(h1.Children) != 1 {
		t.Fatalf("expected 1 h2 child, got %d", len(h1.Children))
	}

	endpoints := h1.Children[0]
	want := []string{
		"List of endpoints:",
		"GET /api/users\nPOST /api/users",
		"More text after code.",
	}
	if !reflect.DeepEqual(endpoints.Paragraphs, want) {
		t.Errorf("expected %q, got %q", want, endpoints.Paragraphs)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 || len(tree.Lead) != 0 {
		t.Errorf("expected empty tree, got %+v", tree)
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		tree, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if tree.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, tree.Title)
		}
	}
}
