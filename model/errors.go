package model

import (
	"errors"
	"fmt"
)

// ErrEmptyKey is returned for inline content without placeholder key.
var ErrEmptyKey = errors.New("inline content must have non-empty key")

// InvalidRangeError is returned when annotation range does not fit text.
type InvalidRangeError struct {
	Index  int
	Range  Range
	Length int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("annotation %d has invalid range [%d, %d) for text of length %d", e.Index, e.Range.Start, e.Range.End, e.Length)
}

// ConflictError is returned when link and inline content cover the same
// characters.
type ConflictError struct {
	Link   int
	Inline int
	Range  Range
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("link annotation %d overlaps inline content annotation %d at [%d, %d)", e.Link, e.Inline, e.Range.Start, e.Range.End)
}

// OverlapError is returned when two inline content annotations share some
// characters without covering the same range.
type OverlapError struct {
	First  int
	Second int
	Range  Range
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("inline content annotation %d overlaps inline content annotation %d at [%d, %d)", e.First, e.Second, e.Range.Start, e.Range.End)
}
