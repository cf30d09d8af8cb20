package transform

import (
	"errors"

	"github.com/dgallion1/pagerewrite/internal/dom"
	"golang.org/x/net/html"
)

const (
	// MoveFirstGoodParagraphUp is the registered name of the paragraph relocator.
	MoveFirstGoodParagraphUp = "moveFirstGoodParagraphUp"

	// LeadAnchorID identifies the lead section's edit button.
	LeadAnchorID = "edit_section_button_0"
	// FirstGoodParagraphAttr is set upstream on the paragraph to pull up.
	FirstGoodParagraphAttr = "isFirstGoodParagraph"
)

// ErrHierarchy is returned when the marked paragraph contains the anchor, so
// it cannot be placed after it. The tree is left untouched.
var ErrHierarchy = errors.New("paragraph contains the anchor")

func moveFirstGoodParagraphUp(doc *dom.Document) (Result, error) {
	return RelocateFirstParagraph(doc.Root())
}

// RelocateFirstParagraph moves the first element marked isFirstGoodParagraph
// so it becomes the next sibling of #edit_section_button_0. That puts the
// lead text above infoboxes, tables and images in the lead section.
//
// A missing anchor or a missing marked paragraph is not an error; the tree
// is left as is. Only the marked node changes position.
func RelocateFirstParagraph(root *html.Node) (Result, error) {
	anchor := dom.ByID(root, LeadAnchorID)
	if anchor == nil {
		return Result{Reason: "no_anchor"}, nil
	}
	p := dom.WithAttr(root, FirstGoodParagraphAttr)
	if p == nil {
		return Result{Reason: "no_paragraph"}, nil
	}
	// Matches are always descendants of root, so anchor has a parent.
	parent := anchor.Parent
	if p != anchor && dom.Contains(p, anchor) {
		return Result{Reason: "paragraph_contains_anchor"}, ErrHierarchy
	}

	inPlace := p == anchor || anchor.NextSibling == p

	// The anchor itself keeps its slot: remember what followed it.
	ref := anchor.NextSibling
	if _, err := dom.RemoveChild(p.Parent, p); err != nil {
		return Result{}, err
	}
	if p != anchor {
		ref = anchor.NextSibling
	}
	if err := dom.InsertBefore(parent, p, ref); err != nil {
		return Result{}, err
	}
	if inPlace {
		return Result{Reason: "already_in_place"}, nil
	}
	return Result{Changed: true, Reason: "moved"}, nil
}
