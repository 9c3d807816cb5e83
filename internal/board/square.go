// Package board decodes the server's hex board encoding and renders it for
// either orientation.
package board

import "fmt"

// Square is a board square (0-63), a1=0, h1=7, a8=56, h8=63.
type Square uint8

// NoSquare marks an invalid square.
const NoSquare Square = 64

const (
	files = "abcdefgh"
	ranks = "12345678"
)

// File returns the file of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String returns the coordinate token for the square (e.g. "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", files[sq.File()], ranks[sq.Rank()])
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// Mirror returns the square with its rank flipped (e2 <-> e7).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// FileLabels returns the header labels left to right.
func FileLabels(o Orientation) []byte {
	out := []byte(files)
	if o == Mirrored {
		reverse(out)
	}
	return out
}

// RankLabels returns the rank labels top to bottom: 8..1 for Primary and
// 1..8 for Mirrored.
func RankLabels(o Orientation) []byte {
	out := []byte(ranks)
	if o == Primary {
		reverse(out)
	}
	return out
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
