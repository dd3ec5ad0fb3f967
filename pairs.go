package tdfbundle

import (
	"fmt"
	"sort"

	"github.com/wbrown/tdfbundle/tdf"
)

const (
	// EscapeIndex introduces a run in an RLE stream and is never a
	// palette index.
	EscapeIndex = 255

	// MaxPaletteSize is the number of distinct cells a font may use.
	MaxPaletteSize = 254
)

// Palette is the ordered set of distinct cells used by one font. Glyph
// streams refer to cells by their position in it.
type Palette struct {
	pairs []CellPair
	index map[CellPair]byte
}

type sortablePairs []CellPair

func (s sortablePairs) Len() int      { return len(s) }
func (s sortablePairs) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s sortablePairs) Less(i, j int) bool {
	if s[i].Char != s[j].Char {
		return s[i].Char < s[j].Char
	}
	return s[i].Attr < s[j].Attr
}

// BuildPalette collects the distinct cells of a font's glyphs. The padding
// cell is included when any glyph is ragged.
func BuildPalette(glyphs []tdf.RawGlyph) (*Palette, error) {
	padding := false
	for _, g := range glyphs {
		if g.Ragged() {
			padding = true
			break
		}
	}
	return BuildPaletteWithPadding(glyphs, padding)
}

// BuildPaletteWithPadding is BuildPalette with the padding decision made
// by the caller. It fails with ErrPaletteOverflow when the font uses more
// than MaxPaletteSize distinct cells.
func BuildPaletteWithPadding(glyphs []tdf.RawGlyph, requiresPadding bool) (*Palette, error) {
	seen := make(map[CellPair]bool)
	for _, g := range glyphs {
		for _, line := range g.Lines {
			for _, c := range line {
				seen[c] = true
			}
		}
	}
	if requiresPadding {
		seen[PaddingPair] = true
	}
	if len(seen) > MaxPaletteSize {
		return nil, fmt.Errorf("%w: %d distinct cells, limit %d", ErrPaletteOverflow, len(seen), MaxPaletteSize)
	}

	pairs := make(sortablePairs, 0, len(seen))
	for c := range seen {
		pairs = append(pairs, c)
	}
	sort.Sort(pairs)
	return newPalette(pairs), nil
}

func newPalette(pairs []CellPair) *Palette {
	p := &Palette{
		pairs: pairs,
		index: make(map[CellPair]byte, len(pairs)),
	}
	for i, c := range pairs {
		p.index[c] = byte(i)
	}
	return p
}

// Len returns the number of cells in the palette.
func (p *Palette) Len() int {
	return len(p.pairs)
}

// Pairs returns the palette in canonical order. The slice must not be
// modified.
func (p *Palette) Pairs() []CellPair {
	return p.pairs
}

// Index returns the position of c in the palette.
func (p *Palette) Index(c CellPair) (byte, bool) {
	i, ok := p.index[c]
	return i, ok
}
