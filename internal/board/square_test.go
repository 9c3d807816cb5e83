package board

import "testing"

func TestSquare(t *testing.T) {
	tests := []struct {
		s    string
		file int
		rank int
	}{
		{"a1", 0, 0},
		{"h1", 7, 0},
		{"e4", 4, 3},
		{"a8", 0, 7},
		{"h8", 7, 7},
	}

	for _, tc := range tests {
		sq := NewSquare(tc.file, tc.rank)
		if sq.File() != tc.file || sq.Rank() != tc.rank {
			t.Errorf("%s: file=%d rank=%d, want %d %d", tc.s, sq.File(), sq.Rank(), tc.file, tc.rank)
		}
		if sq.String() != tc.s {
			t.Errorf("String() = %q, want %q", sq.String(), tc.s)
		}
	}

	if NoSquare.String() != "-" {
		t.Errorf("NoSquare.String() = %q", NoSquare.String())
	}
}

func TestSquareMirror(t *testing.T) {
	sq := NewSquare(4, 1)
	if got := sq.Mirror().String(); got != "e7" {
		t.Errorf("e2 mirrored = %s, want e7", got)
	}
	if sq.Mirror().Mirror() != sq {
		t.Error("Mirror should be an involution")
	}
}

func TestLabels(t *testing.T) {
	if got := string(FileLabels(Primary)); got != "abcdefgh" {
		t.Errorf("FileLabels(Primary) = %s", got)
	}
	if got := string(FileLabels(Mirrored)); got != "hgfedcba" {
		t.Errorf("FileLabels(Mirrored) = %s", got)
	}
	if got := string(RankLabels(Primary)); got != "87654321" {
		t.Errorf("RankLabels(Primary) = %s", got)
	}
	if got := string(RankLabels(Mirrored)); got != "12345678" {
		t.Errorf("RankLabels(Mirrored) = %s", got)
	}
}
