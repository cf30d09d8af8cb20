package article

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/pagerewrite/internal/dom"
	"github.com/dgallion1/pagerewrite/internal/parser"
)

// LoadOptions tune how a source file becomes a document.
type LoadOptions struct {
	// Title replaces the lead heading derived from the source. Ignored for HTML.
	Title  string
	Parser parser.Options
}

// Load builds a document from a source file. HTML is parsed as is, so any
// upstream markers it carries survive; other formats are parsed into
// sections and rendered through Render.
func Load(filename string, data []byte, opts LoadOptions) (*dom.Document, error) {
	if parser.IsMarkup(filename) {
		doc, err := dom.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filename, err)
		}
		return doc, nil
	}

	p, err := parser.ForFile(filename, opts.Parser)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return render(tree, opts.Title), nil
}
