package board

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

// Orientation is the viewpoint a board or move is expressed from.
type Orientation uint8

const (
	// Primary is the server's canonical orientation (the "purple" side).
	Primary Orientation = iota
	// Mirrored is the reflected viewpoint of the other player.
	Mirrored
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Primary:
		return "Primary"
	case Mirrored:
		return "Mirrored"
	default:
		return "Unknown"
	}
}

// OrientationFor returns Primary when isPrimary is set, Mirrored otherwise.
func OrientationFor(isPrimary bool) Orientation {
	if isPrimary {
		return Primary
	}
	return Mirrored
}

// Code is a 4-bit piece code as stored by the server.
// Even codes are the piece kind; the low bit selects the variant.
type Code uint8

const (
	Empty  Code = 0
	Bishop Code = 2
	King   Code = 4
	Knight Code = 6
	Pawn   Code = 8
	Queen  Code = 10
	Rook   Code = 12

	// MaxCode is the highest code with a glyph.
	MaxCode Code = Rook | 1
)

// EmptyGlyph is shown for an unoccupied square.
const EmptyGlyph = ' '

// Kind returns the code with the variant bit cleared.
func (c Code) Kind() Code {
	return c &^ 1
}

// Variant returns the low bit of the code.
func (c Code) Variant() uint8 {
	return uint8(c & 1)
}

// Flip returns the same piece kind with the other variant.
func (c Code) Flip() Code {
	if c == Empty {
		return Empty
	}
	return c ^ 1
}

// String returns the kind name, with a '+' suffix for odd variants.
func (c Code) String() string {
	var name string
	switch c.Kind() {
	case Empty:
		if c == Empty {
			return "Empty"
		}
		return "Reserved"
	case Bishop:
		name = "Bishop"
	case King:
		name = "King"
	case Knight:
		name = "Knight"
	case Pawn:
		name = "Pawn"
	case Queen:
		name = "Queen"
	case Rook:
		name = "Rook"
	default:
		return fmt.Sprintf("Code(%d)", uint8(c))
	}
	if c.Variant() == 1 {
		name += "+"
	}
	return name
}

// GlyphTable maps piece codes to display glyphs for one orientation.
type GlyphTable map[Code]rune

// primaryGlyphs is the only hand-written table; the mirrored one is derived.
var primaryGlyphs = GlyphTable{
	Empty:      EmptyGlyph,
	Bishop:     '♝',
	Bishop | 1: '♗',
	King:       '♚',
	King | 1:   '♔',
	Knight:     '♞',
	Knight | 1: '♘',
	Pawn:       '♟',
	Pawn | 1:   '♙',
	Queen:      '♛',
	Queen | 1:  '♕',
	Rook:       '♜',
	Rook | 1:   '♖',
}

var glyphTables [2]GlyphTable

func init() {
	mirrored, err := DeriveMirrored(primaryGlyphs)
	if err != nil {
		panic(err)
	}
	glyphTables[Primary] = primaryGlyphs
	glyphTables[Mirrored] = mirrored
}

// DeriveMirrored builds the mirrored table from a primary one: every key k
// maps to the primary glyph at k^1, the empty code stays empty and the
// reserved code 1 never gets an entry. The primary table must hold exactly
// the codes 0 and 2..13.
func DeriveMirrored(primary GlyphTable) (GlyphTable, error) {
	if err := checkComplete(primary); err != nil {
		return nil, err
	}
	mirrored := make(GlyphTable, len(primary))
	for code := range primary {
		if code == Empty {
			mirrored[code] = EmptyGlyph
			continue
		}
		mirrored[code] = primary[code^1]
	}
	if err := checkComplete(mirrored); err != nil {
		return nil, err
	}
	return mirrored, nil
}

func checkComplete(t GlyphTable) error {
	codes := maps.Keys(t)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	if len(codes) != int(MaxCode) {
		return fmt.Errorf("glyph table has codes %v: %w", codes, ErrIncompleteGlyphTable)
	}
	if t[Empty] != EmptyGlyph {
		return fmt.Errorf("glyph table maps empty code to %q: %w", t[Empty], ErrIncompleteGlyphTable)
	}
	seen := make(map[rune]Code, len(t))
	for _, code := range codes {
		if code == 1 || code > MaxCode {
			return fmt.Errorf("glyph table has reserved code %d: %w", code, ErrIncompleteGlyphTable)
		}
		g := t[code]
		if prev, ok := seen[g]; ok {
			return fmt.Errorf("glyph %q used by codes %d and %d: %w", g, prev, code, ErrIncompleteGlyphTable)
		}
		seen[g] = code
	}
	return nil
}

// Table returns a copy of the glyph table for an orientation.
func Table(o Orientation) GlyphTable {
	out := make(GlyphTable, len(glyphTables[o&1]))
	for k, v := range glyphTables[o&1] {
		out[k] = v
	}
	return out
}

// Glyph returns the display glyph of a code for an orientation.
// Code 1 and codes above 13 are rejected with ErrInvalidPieceCode.
func Glyph(c Code, o Orientation) (rune, error) {
	if o > Mirrored {
		return 0, fmt.Errorf("unknown orientation %d", o)
	}
	g, ok := glyphTables[o][c]
	if !ok {
		return 0, &DecodeError{Stage: "glyph", Value: fmt.Sprintf("%#x", uint8(c)), Err: ErrInvalidPieceCode}
	}
	return g, nil
}
