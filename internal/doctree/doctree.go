package doctree

// DocTree is the root of a parsed non-HTML source document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Lead     []string   // Paragraphs before the first heading
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title      string     // Section heading (empty for an untitled block)
	Level      int        // Heading level 1-6; 0 when the source has none
	Paragraphs []string   // Body paragraphs, in source order
	Page       int        // Source page (0 if N/A)
	Children   []*DocNode // Subsections
}
