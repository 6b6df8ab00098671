package buffer

import "errors"

// Errors returned by buffer operations.
var (
	// ErrOutOfRange indicates a paragraph index outside the document.
	ErrOutOfRange = errors.New("paragraph index out of range")

	// ErrInvalidOffset indicates a character offset outside a paragraph.
	ErrInvalidOffset = errors.New("offset outside paragraph")

	// ErrInvalidRange indicates a reversed range, a range spanning
	// paragraphs where one paragraph is required, or invalid format ranges.
	ErrInvalidRange = errors.New("invalid range")

	// ErrParagraphBreak indicates inserted text containing a paragraph
	// separator. Split the paragraph instead.
	ErrParagraphBreak = errors.New("text contains a paragraph break")

	// ErrInvalidAttributes indicates format attributes that cannot be stored,
	// such as an unparsable color.
	ErrInvalidAttributes = errors.New("invalid format attributes")
)
