package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPieceCode is returned for code 1 or any code above 13.
	ErrInvalidPieceCode = errors.New("invalid piece code")
	// ErrMalformedBoard is returned for a wrong row count, a row of the
	// wrong length, or non-hex characters.
	ErrMalformedBoard = errors.New("malformed board encoding")
	// ErrIncompleteGlyphTable is returned when a glyph table does not cover
	// exactly the codes 0 and 2..13 with distinct glyphs.
	ErrIncompleteGlyphTable = errors.New("incomplete glyph table")
)

// DecodeError reports the stage and the raw value that failed to decode.
type DecodeError struct {
	Stage string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
