package board

import (
	"errors"
	"testing"
)

func TestGlyphTables(t *testing.T) {
	tests := []struct {
		code     Code
		primary  rune
		mirrored rune
	}{
		{Empty, ' ', ' '},
		{Bishop, '♝', '♗'},
		{Bishop | 1, '♗', '♝'},
		{King, '♚', '♔'},
		{King | 1, '♔', '♚'},
		{Knight, '♞', '♘'},
		{Knight | 1, '♘', '♞'},
		{Pawn, '♟', '♙'},
		{Pawn | 1, '♙', '♟'},
		{Queen, '♛', '♕'},
		{Queen | 1, '♕', '♛'},
		{Rook, '♜', '♖'},
		{Rook | 1, '♖', '♜'},
	}

	for _, tc := range tests {
		t.Run(tc.code.String(), func(t *testing.T) {
			got, err := Glyph(tc.code, Primary)
			if err != nil {
				t.Fatalf("Glyph(%d, Primary) failed: %v", tc.code, err)
			}
			if got != tc.primary {
				t.Errorf("Glyph(%d, Primary) = %q, want %q", tc.code, got, tc.primary)
			}
			got, err = Glyph(tc.code, Mirrored)
			if err != nil {
				t.Fatalf("Glyph(%d, Mirrored) failed: %v", tc.code, err)
			}
			if got != tc.mirrored {
				t.Errorf("Glyph(%d, Mirrored) = %q, want %q", tc.code, got, tc.mirrored)
			}
		})
	}
}

func TestMirroredIsPrimaryFlipped(t *testing.T) {
	codeOf := make(map[rune]Code)
	for c, g := range Table(Primary) {
		codeOf[g] = c
	}

	for c := Code(2); c <= MaxCode; c++ {
		p, err := Glyph(c, Primary)
		if err != nil {
			t.Fatalf("Glyph(%d, Primary) failed: %v", c, err)
		}
		m, err := Glyph(c^1, Mirrored)
		if err != nil {
			t.Fatalf("Glyph(%d, Mirrored) failed: %v", c^1, err)
		}
		if p != m {
			t.Errorf("code %d: primary %q != mirrored(code^1) %q", c, p, m)
		}

		// Reading a mirrored glyph back through the primary table gives the
		// flipped code, and flipping again lands on the original glyph.
		mc, err := Glyph(c, Mirrored)
		if err != nil {
			t.Fatalf("Glyph(%d, Mirrored) failed: %v", c, err)
		}
		k, ok := codeOf[mc]
		if !ok || k != c.Flip() {
			t.Errorf("code %d: mirrored glyph %q reads back as code %d, want %d", c, mc, k, c.Flip())
			continue
		}
		if back, err := Glyph(k.Flip(), Primary); err != nil || back != p {
			t.Errorf("code %d: round trip gave %q (%v), want %q", c, back, err, p)
		}
	}
}

func TestEmptySquareInvariance(t *testing.T) {
	for _, o := range []Orientation{Primary, Mirrored} {
		g, err := Glyph(Empty, o)
		if err != nil {
			t.Fatalf("Glyph(Empty, %v) failed: %v", o, err)
		}
		if g != EmptyGlyph {
			t.Errorf("Glyph(Empty, %v) = %q, want empty glyph", o, g)
		}
	}
}

func TestReservedCodeRejected(t *testing.T) {
	for _, c := range []Code{1, 14, 15, 16, 255} {
		for _, o := range []Orientation{Primary, Mirrored} {
			_, err := Glyph(c, o)
			if !errors.Is(err, ErrInvalidPieceCode) {
				t.Errorf("Glyph(%d, %v) error = %v, want ErrInvalidPieceCode", c, o, err)
			}
		}
	}
}

func TestDeriveMirrored(t *testing.T) {
	t.Run("IncludesReservedCode", func(t *testing.T) {
		bad := Table(Primary)
		bad[1] = 'x'
		if _, err := DeriveMirrored(bad); !errors.Is(err, ErrIncompleteGlyphTable) {
			t.Errorf("expected ErrIncompleteGlyphTable, got %v", err)
		}
	})

	t.Run("MissingCode", func(t *testing.T) {
		bad := Table(Primary)
		delete(bad, Queen|1)
		if _, err := DeriveMirrored(bad); !errors.Is(err, ErrIncompleteGlyphTable) {
			t.Errorf("expected ErrIncompleteGlyphTable, got %v", err)
		}
	})

	t.Run("DuplicateGlyph", func(t *testing.T) {
		bad := Table(Primary)
		bad[Queen] = bad[King]
		if _, err := DeriveMirrored(bad); !errors.Is(err, ErrIncompleteGlyphTable) {
			t.Errorf("expected ErrIncompleteGlyphTable, got %v", err)
		}
	})

	t.Run("TableIsCopy", func(t *testing.T) {
		tbl := Table(Mirrored)
		tbl[Bishop] = 'x'
		if g, _ := Glyph(Bishop, Mirrored); g != '♗' {
			t.Errorf("mutating Table copy changed glyph lookup: %q", g)
		}
	})
}

func TestCodeHelpers(t *testing.T) {
	if Pawn.Flip() != Pawn|1 || (Pawn | 1).Flip() != Pawn {
		t.Error("Flip should toggle the variant bit")
	}
	if Empty.Flip() != Empty {
		t.Error("Flip of empty should stay empty")
	}
	if (Rook | 1).Kind() != Rook {
		t.Errorf("Kind of rook variant = %d", (Rook | 1).Kind())
	}
	if Code(1).String() != "Reserved" {
		t.Errorf("Code(1).String() = %q", Code(1).String())
	}
	if OrientationFor(true) != Primary || OrientationFor(false) != Mirrored {
		t.Error("OrientationFor mismatch")
	}
}
