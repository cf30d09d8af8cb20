// Package transform holds named, in-place rewrite steps over a parsed
// document, the registry the pipeline assembler builds them into, and the
// chain that runs them in order.
package transform

import (
	"errors"

	"github.com/dgallion1/pagerewrite/internal/dom"
)

var (
	ErrUnknownTransform   = errors.New("unknown transform")
	ErrDuplicateTransform = errors.New("transform already registered")
)

// Result describes what a single transform did to a document.
type Result struct {
	Changed bool   `json:"changed"`
	Reason  string `json:"reason,omitempty"`
}

// Transform mutates a document in place. The caller owns the document and
// must not touch it concurrently while Apply runs.
type Transform interface {
	Name() string
	Apply(doc *dom.Document) (Result, error)
}

type funcTransform struct {
	name string
	fn   func(*dom.Document) (Result, error)
}

func (f funcTransform) Name() string                            { return f.name }
func (f funcTransform) Apply(doc *dom.Document) (Result, error) { return f.fn(doc) }

// Func adapts a plain function to a Transform.
func Func(name string, fn func(*dom.Document) (Result, error)) Transform {
	return funcTransform{name: name, fn: fn}
}
