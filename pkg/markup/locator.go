// Package markup locates regions and attribute values in HTML text by scanning for
// literal anchor substrings.
//
// This is not a parser. Every function here is only correct as long as the anchors
// it is given appear literally, and uniquely, in the source markup. Callers keep all
// of their anchors in one place so a change in the page format is a one-place fix.
package markup

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAnchorNotFound is returned when a structural anchor is missing from the text
	ErrAnchorNotFound = errors.New("anchor not found")

	// ErrAttributeNotFound is returned when an attribute value cannot be extracted
	ErrAttributeNotFound = errors.New("attribute not found")
)

// attributeDelimiter closes an attribute value
const attributeDelimiter = `"`

// AnchorError names the anchor that could not be found
type AnchorError struct {
	Anchor string
	Err    error
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Anchor)
}

func (e *AnchorError) Unwrap() error {
	return e.Err
}

// Index returns the offset of the first occurrence of anchor at or after from
func Index(text, anchor string, from int) (int, error) {
	from = clamp(from, len(text))
	idx := strings.Index(text[from:], anchor)
	if idx == -1 {
		return -1, &AnchorError{Anchor: anchor, Err: ErrAnchorNotFound}
	}
	return from + idx, nil
}

// LocateRegion returns the offsets delimiting the region that begins at the first
// startAnchor at or after from and ends at the first endAnchor at or after that start.
// The start offset includes startAnchor; the end offset excludes endAnchor.
func LocateRegion(text, startAnchor, endAnchor string, from int) (int, int, error) {
	start, err := Index(text, startAnchor, from)
	if err != nil {
		return -1, -1, err
	}

	end, err := Index(text, endAnchor, start)
	if err != nil {
		return -1, -1, err
	}

	return start, end, nil
}

// LocateAttribute finds tagAnchor, then attributeAnchor after it, and returns the text
// between the end of attributeAnchor and the next double quote.
func LocateAttribute(text, tagAnchor, attributeAnchor string, from int) (string, error) {
	tagStart, err := Index(text, tagAnchor, from)
	if err != nil {
		return "", &AnchorError{Anchor: tagAnchor, Err: ErrAttributeNotFound}
	}

	attrStart, err := Index(text, attributeAnchor, tagStart)
	if err != nil {
		return "", &AnchorError{Anchor: attributeAnchor, Err: ErrAttributeNotFound}
	}

	valueStart := attrStart + len(attributeAnchor)
	valueEnd, err := Index(text, attributeDelimiter, valueStart)
	if err != nil {
		return "", &AnchorError{Anchor: attributeDelimiter, Err: ErrAttributeNotFound}
	}

	return text[valueStart:valueEnd], nil
}

// Split splits region on separator and drops fragments that are blank once trimmed.
// Blank fragments are artifacts of the split, e.g. the empty text before a leading
// separator.
func Split(region, separator string) []string {
	var fragments []string
	for _, fragment := range strings.Split(region, separator) {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments
}

func clamp(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}
	return offset
}
