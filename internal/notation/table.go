// Package notation rewrites move strings between the Primary and Mirrored
// orientations. Translation is character by character; moves are never
// parsed or checked for legality.
package notation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// ErrIncompleteTable is returned when a substitution table is not a
// bijection over its domain.
var ErrIncompleteTable = errors.New("incomplete translation table")

// Table is an immutable character substitution. Characters outside its
// domain pass through unchanged.
type Table struct {
	name string
	m    map[rune]rune
}

// NewTable builds a table mapping each rune of from to the rune at the same
// position in to, like a one-way tr(1).
func NewTable(name, from, to string) (Table, error) {
	src, dst := []rune(from), []rune(to)
	if len(src) == 0 || len(src) != len(dst) {
		return Table{}, fmt.Errorf("%s: %d source and %d target characters: %w", name, len(src), len(dst), ErrIncompleteTable)
	}
	m := make(map[rune]rune, len(src))
	for i, r := range src {
		if _, dup := m[r]; dup {
			return Table{}, fmt.Errorf("%s: %q mapped twice: %w", name, r, ErrIncompleteTable)
		}
		m[r] = dst[i]
	}
	t := Table{name: name, m: m}
	if err := t.validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// NewSwapTable builds a table that exchanges each rune of a with the rune
// at the same position in b, in both directions. The result is its own
// inverse.
func NewSwapTable(name, a, b string) (Table, error) {
	if len([]rune(a)) != len([]rune(b)) {
		return Table{}, fmt.Errorf("%s: swap sides differ in length: %w", name, ErrIncompleteTable)
	}
	t, err := NewTable(name, a+b, b+a)
	if err != nil {
		return Table{}, err
	}
	if !t.Involution() {
		return Table{}, fmt.Errorf("%s: swap table is not its own inverse: %w", name, ErrIncompleteTable)
	}
	return t, nil
}

// validate checks the mapping is injective: no two source runes share a
// target, so the table can be inverted.
func (t Table) validate() error {
	seen := make(map[rune]rune, len(t.m))
	for _, k := range t.Domain() {
		v := t.m[k]
		if prev, ok := seen[v]; ok {
			return fmt.Errorf("%s: %q and %q both map to %q: %w", t.name, prev, k, v, ErrIncompleteTable)
		}
		seen[v] = k
	}
	return nil
}

// Domain returns the source runes in ascending order.
func (t Table) Domain() []rune {
	keys := maps.Keys(t.m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Involution reports whether applying the table twice is the identity.
func (t Table) Involution() bool {
	for k, v := range t.m {
		back, ok := t.m[v]
		if !ok || back != k {
			return false
		}
	}
	return true
}

// Then returns a table applying t first and next second. Runes that t
// leaves unchanged are still subject to next.
func (t Table) Then(name string, next Table) (Table, error) {
	m := make(map[rune]rune, len(t.m)+len(next.m))
	for k, v := range next.m {
		m[k] = v
	}
	for k, v := range t.m {
		if w, ok := next.m[v]; ok {
			v = w
		}
		m[k] = v
	}
	out := Table{name: name, m: m}
	if err := out.validate(); err != nil {
		return Table{}, err
	}
	return out, nil
}

// Apply rewrites s rune by rune.
func (t Table) Apply(s string) string {
	if len(t.m) == 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if v, ok := t.m[r]; ok {
			return v
		}
		return r
	}, s)
}
