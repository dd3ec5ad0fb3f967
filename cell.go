// Package tdfbundle packs TheDraw colour fonts into a compact random
// access bundle and renders text from it.
//
// The packing path parses .tdf containers (see package tdf), builds a
// per-font palette of distinct (character, attribute) cells, run-length
// encodes every glyph against that palette and writes all fonts into one
// byte buffer. The rendering path loads such a buffer, looks glyphs up by
// binary search, decodes them and lays out and rasterizes text.
package tdfbundle

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/wbrown/tdfbundle/tdf"
)

const (
	// CellWidth and CellHeight are the pixel size of one character cell.
	CellWidth  = 8
	CellHeight = 16
)

// CellPair is one glyph cell: a CP437 character code and its attribute.
// The attribute holds the background colour index in bits 4-6 and the
// foreground colour index in bits 0-3.
type CellPair = tdf.Cell

// PaddingPair fills the cells missing from ragged glyph lines.
var PaddingPair = CellPair{Char: 0x20, Attr: 0x00}

// Foreground returns the foreground colour index of an attribute.
func Foreground(attr byte) int {
	return int(attr & 0x0F)
}

// Background returns the background colour index of an attribute.
func Background(attr byte) int {
	return int(attr>>4) & 0x07
}

// Metrics is the size of a glyph in cells.
type Metrics struct {
	Width  int
	Height int
}

// Glyph is a decoded glyph: a Width x Height grid of cells, row-major.
type Glyph struct {
	Char   byte
	Width  int
	Height int
	Cells  []CellPair
}

// At returns the cell at column x, row y.
func (g *Glyph) At(x, y int) CellPair {
	return g.Cells[y*g.Width+x]
}

// cellCode maps a rune of input text to the CP437 code a glyph is stored
// under. ASCII maps to itself.
func cellCode(r rune) (byte, bool) {
	if r >= 0 && r < 0x80 {
		return byte(r), true
	}
	return charmap.CodePage437.EncodeRune(r)
}

// cellRune maps a CP437 code to the rune it displays as.
func cellRune(code byte) rune {
	if code < 0x80 {
		return rune(code)
	}
	return charmap.CodePage437.DecodeByte(code)
}
