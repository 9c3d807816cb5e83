package notation

import (
	"fmt"

	"github.com/nknight/playclient/internal/board"
)

// glyphCount is the number of non-empty glyphs per orientation.
const glyphCount = int(board.MaxCode) - 1

// Translator holds the substitution tables for moves crossing between the
// server (Primary) and a viewer. It is immutable and safe for concurrent use.
type Translator struct {
	glyphs Table // each glyph <-> its other-variant glyph
	ranks  Table // '1'..'8' <-> '8'..'1'
	send   Table // ranks then glyphs
}

// NewTranslator derives every table from the board glyph table and the
// square geometry, and checks each one for completeness. The glyph swap is
// its own inverse, so the same table serves both directions.
func NewTranslator() (*Translator, error) {
	primary, variant := glyphPairs(board.Table(board.Primary))
	glyphs, err := NewSwapTable("glyph swap", primary, variant)
	if err != nil {
		return nil, err
	}
	if n := len(glyphs.Domain()); n != glyphCount {
		return nil, fmt.Errorf("glyph swap: %d glyphs, want %d: %w", n, glyphCount, ErrIncompleteTable)
	}

	low, high := rankPairs()
	ranks, err := NewSwapTable("rank flip", low, high)
	if err != nil {
		return nil, err
	}
	if n := len(ranks.Domain()); n != 8 {
		return nil, fmt.Errorf("rank flip: %d digits, want 8: %w", n, ErrIncompleteTable)
	}

	send, err := ranks.Then("send", glyphs)
	if err != nil {
		return nil, err
	}

	return &Translator{glyphs: glyphs, ranks: ranks, send: send}, nil
}

// MustTranslator is like NewTranslator but panics on a table defect.
func MustTranslator() *Translator {
	t, err := NewTranslator()
	if err != nil {
		panic(err)
	}
	return t
}

// glyphPairs lists, for every piece kind, its base glyph and the glyph of
// its variant. Kinds missing from the table are left out and caught by the
// length check in NewTranslator.
func glyphPairs(primary board.GlyphTable) (base, variant string) {
	var a, b []rune
	for c := board.Bishop; c <= board.Rook; c += 2 {
		g, ok := primary[c]
		flipped, fok := primary[c.Flip()]
		if !ok || !fok {
			continue
		}
		a = append(a, g)
		b = append(b, flipped)
	}
	return string(a), string(b)
}

// rankPairs lists the rank digits of the lower half of the board and the
// digits of their mirrored squares.
func rankPairs() (low, high string) {
	var a, b []byte
	for r := 0; r < 4; r++ {
		sq := board.NewSquare(0, r)
		a = append(a, sq.String()[1])
		b = append(b, sq.Mirror().String()[1])
	}
	return string(a), string(b)
}

// Receive rewrites a server move for display to a viewer with orientation o.
// Mirrored viewers get their glyphs swapped; coordinates are left alone.
func (t *Translator) Receive(move string, o board.Orientation) string {
	if o != board.Mirrored {
		return move
	}
	return t.glyphs.Apply(move)
}

// ReceiveAll applies Receive to every move.
func (t *Translator) ReceiveAll(moves []string, o board.Orientation) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = t.Receive(m, o)
	}
	return out
}

// Send rewrites a move typed by a viewer with orientation o into the
// server's canonical form. Mirrored viewers get rank digits flipped and
// glyphs mapped back to Primary.
func (t *Translator) Send(move string, o board.Orientation) string {
	if o != board.Mirrored {
		return move
	}
	return t.send.Apply(move)
}

var defaultTranslator = MustTranslator()

// Default returns the translator built at startup.
func Default() *Translator {
	return defaultTranslator
}
