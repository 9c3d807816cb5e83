package board

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// RowCount is the number of row-strings in an encoded board.
	RowCount = 8
	// RowHexLen is the length of one hex row-string (8 bytes).
	RowHexLen = 16

	rowSeparator    = ","
	columnSeparator = " | "
)

// Board holds decoded piece codes in the order the server sent the rows.
type Board [RowCount][8]Code

// Grid is a decoded board of glyphs, ready for display.
type Grid struct {
	Orientation Orientation
	Cells       [RowCount][8]rune
}

// Decode splits an encoded board into its eight hex rows and extracts the
// piece code from the low nibble of each byte. It checks the encoding only;
// codes are validated when glyphs are looked up.
func Decode(encoded string) (Board, error) {
	var b Board

	rows := strings.Split(encoded, rowSeparator)
	if len(rows) != RowCount {
		return b, &DecodeError{
			Stage: "decode board",
			Value: encoded,
			Err:   fmt.Errorf("%w: %d rows, want %d", ErrMalformedBoard, len(rows), RowCount),
		}
	}

	for i, row := range rows {
		if len(row) != RowHexLen {
			return b, &DecodeError{
				Stage: "decode row",
				Value: row,
				Err:   fmt.Errorf("%w: row %d has %d hex characters, want %d", ErrMalformedBoard, i, len(row), RowHexLen),
			}
		}
		raw, err := hex.DecodeString(row)
		if err != nil {
			return b, &DecodeError{
				Stage: "decode row",
				Value: row,
				Err:   fmt.Errorf("%w: %v", ErrMalformedBoard, err),
			}
		}
		for j, v := range raw {
			b[i][j] = Code(v & 0xF)
		}
	}

	return b, nil
}

// Grid maps every code to its glyph for the given orientation. Rows keep the
// order the server sent them in; only the glyph table depends on o.
func (b Board) Grid(o Orientation) (Grid, error) {
	g := Grid{Orientation: o}
	for i, row := range b {
		for j, c := range row {
			glyph, err := Glyph(c, o)
			if err != nil {
				return Grid{}, &DecodeError{
					Stage: "decode square",
					Value: fmt.Sprintf("%c%c=%#x", FileLabels(o)[j], RankLabels(o)[i], uint8(c)),
					Err:   err,
				}
			}
			g.Cells[i][j] = glyph
		}
	}
	return g, nil
}

// String renders the grid with a file header and one labelled line per rank.
// Every cell is padded to the widest glyph so columns line up in terminals
// that draw some glyphs double width.
func (g Grid) String() string {
	var sb strings.Builder

	fileLabels := FileLabels(g.Orientation)
	width := g.cellWidth(fileLabels)

	header := make([]string, len(fileLabels))
	for i, f := range fileLabels {
		header[i] = runewidth.FillRight(string(f), width)
	}
	writeRow(&sb, " ", header)

	rankLabels := RankLabels(g.Orientation)
	for i, row := range g.Cells {
		cells := make([]string, len(row))
		for j, r := range row {
			cells[j] = runewidth.FillRight(string(r), width)
		}
		writeRow(&sb, string(rankLabels[i]), cells)
	}

	return sb.String()
}

// cellWidth is the display width of the widest glyph or file label.
func (g Grid) cellWidth(labels []byte) int {
	width := 0
	widen := func(r rune) {
		if w := runewidth.RuneWidth(r); w > width {
			width = w
		}
	}
	for _, l := range labels {
		widen(rune(l))
	}
	for _, r := range glyphTables[g.Orientation&1] {
		widen(r)
	}
	for _, row := range g.Cells {
		for _, r := range row {
			widen(r)
		}
	}
	return width
}

func writeRow(sb *strings.Builder, label string, cells []string) {
	sb.WriteString(label)
	sb.WriteByte(' ')
	sb.WriteString(strings.Join(cells, columnSeparator))
	sb.WriteString(" |\n")
}

// Render decodes an encoded board and returns it as printable text for the
// given orientation.
func Render(encoded string, o Orientation) (string, error) {
	b, err := Decode(encoded)
	if err != nil {
		return "", err
	}
	g, err := b.Grid(o)
	if err != nil {
		return "", err
	}
	return g.String(), nil
}
