// Package tdf reads and writes TheDraw font containers (.tdf).
//
// A container holds one or more font definitions back to back. Each
// definition starts with a four byte signature followed by a fixed size
// metadata block (name, type, spacing, data block size and a 94 entry
// offset table covering ASCII 33..126) and then the glyph data block.
// Only colour fonts are understood by this package; outline and block
// fonts are reported and skipped.
package tdf

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// FontType is the type byte stored in a font's metadata block.
type FontType byte

const (
	FontTypeOutline FontType = 0
	FontTypeBlock   FontType = 1
	FontTypeColor   FontType = 2
)

func (t FontType) String() string {
	switch t {
	case FontTypeOutline:
		return "outline"
	case FontTypeBlock:
		return "block"
	case FontTypeColor:
		return "color"
	}
	return fmt.Sprintf("type(%d)", byte(t))
}

const (
	// FirstChar and LastChar bound the characters a font can define.
	FirstChar = 33
	LastChar  = 126
	NumChars  = LastChar - FirstChar + 1

	// NameSize is the fixed width of the name field.
	NameSize = 12

	// MaxSpacing is the largest letter spacing accepted from a font.
	MaxSpacing = 40

	// RowSeparator ends a glyph line, Terminator ends the glyph.
	RowSeparator = 0x0D
	Terminator   = 0x00

	// Undefined marks a character without a glyph in the offset table.
	Undefined = 0xFFFF

	// MetadataSize is the size of a font block header, signature included.
	MetadataSize = len(Signature) + 1 + NameSize + 4 + 1 + 1 + 2 + NumChars*2
)

// Signature precedes every font definition in a container.
const Signature = "\x55\xAA\x00\xFF"

// FilePreamble is the optional header written at the start of a container.
const FilePreamble = "\x13TheDraw FONTS file\x1A"

// Cell is one character position of a glyph: a CP437 character code and
// a colour attribute (background in bits 4-6, foreground in bits 0-3).
type Cell struct {
	Char byte
	Attr byte
}

// FontMetadata describes one font definition found in a container.
type FontMetadata struct {
	Name      string
	Type      FontType
	Spacing   byte
	BlockSize uint16
	Offsets   [NumChars]uint16

	// Offset is where the signature was found. DataStart and DataEnd
	// bound the glyph data block, clamped to the container length.
	Offset    int
	DataStart int
	DataEnd   int
}

// Defines reports whether the font has a table entry for ch.
func (m *FontMetadata) Defines(ch byte) bool {
	if ch < FirstChar || ch > LastChar {
		return false
	}
	return m.Offsets[ch-FirstChar] != Undefined
}

// RawGlyph is a glyph as stored in the container. Lines may be shorter
// than Width ("ragged").
type RawGlyph struct {
	Char           byte
	Width          byte
	DeclaredHeight byte
	Lines          [][]Cell

	// Unterminated is set when the cell stream ran out before a
	// terminator byte was found.
	Unterminated bool
}

// Height returns the number of lines, never less than one.
func (g RawGlyph) Height() int {
	return max(1, len(g.Lines))
}

// GridWidth returns the width of the rectangle the glyph occupies: the
// declared width, widened if some line is longer than declared.
func (g RawGlyph) GridWidth() int {
	w := int(g.Width)
	for _, line := range g.Lines {
		w = max(w, len(line))
	}
	return w
}

// Cells returns the number of cells actually present in the glyph.
func (g RawGlyph) Cells() int {
	n := 0
	for _, line := range g.Lines {
		n += len(line)
	}
	return n
}

// Ragged reports whether the glyph needs padding cells to fill its
// rectangle. A glyph with a positive width but no cells counts as ragged.
func (g RawGlyph) Ragged() bool {
	return g.Cells() < g.GridWidth()*g.Height()
}

// WarningCode classifies a Warning.
type WarningCode int

const (
	WarnTruncatedHeader WarningCode = iota
	WarnSkippedType
	WarnSpacingClamped
	WarnTruncatedBlock
	WarnBadOffset
	WarnUnterminated
)

// Warning is a non-fatal problem found while reading a container.
type Warning struct {
	Code    WarningCode
	Offset  int
	Font    string
	Char    byte
	Message string
}

func (w Warning) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "offset %d", w.Offset)
	if w.Font != "" {
		fmt.Fprintf(&sb, ", font %q", w.Font)
	}
	if w.Char != 0 {
		fmt.Fprintf(&sb, ", char %q", rune(w.Char))
	}
	sb.WriteString(": ")
	sb.WriteString(w.Message)
	return sb.String()
}

// decodeName converts a CP437 name field to UTF-8, dropping padding.
func decodeName(field []byte) string {
	var sb strings.Builder
	for _, b := range field {
		if b == 0 {
			break
		}
		sb.WriteRune(charmap.CodePage437.DecodeByte(b))
	}
	return strings.TrimSpace(sb.String())
}
