package tdf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrReservedByte  = errors.New("cell character collides with a control byte")
	ErrBlockTooLarge = errors.New("glyph data exceeds 65534 bytes")
	ErrCharRange     = errors.New("glyph character outside 33..126")
)

// ColorFont is a colour font to be written with Marshal.
type ColorFont struct {
	Name    string
	Spacing byte
	Glyphs  []RawGlyph
}

// Marshal writes fonts as a TheDraw container, preamble included.
func Marshal(fonts []ColorFont) ([]byte, error) {
	out := []byte(FilePreamble)
	for i := range fonts {
		var err error
		out, err = appendFont(out, &fonts[i])
		if err != nil {
			return nil, fmt.Errorf("font %q: %w", fonts[i].Name, err)
		}
	}
	return out, nil
}

func appendFont(out []byte, font *ColorFont) ([]byte, error) {
	glyphs := append([]RawGlyph(nil), font.Glyphs...)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].Char < glyphs[j].Char })

	var offsets [NumChars]uint16
	for i := range offsets {
		offsets[i] = Undefined
	}

	var block []byte
	for _, g := range glyphs {
		if g.Char < FirstChar || g.Char > LastChar {
			return nil, fmt.Errorf("%w: %d", ErrCharRange, g.Char)
		}
		if offsets[g.Char-FirstChar] != Undefined {
			return nil, fmt.Errorf("glyph %q defined twice", rune(g.Char))
		}
		if len(block) >= Undefined {
			return nil, ErrBlockTooLarge
		}
		offsets[g.Char-FirstChar] = uint16(len(block))

		height := g.DeclaredHeight
		if height == 0 {
			height = byte(min(len(g.Lines), 255))
		}
		block = append(block, g.Width, height)
		for i, line := range g.Lines {
			for _, c := range line {
				if c.Char == Terminator || c.Char == RowSeparator {
					return nil, fmt.Errorf("%w: glyph %q", ErrReservedByte, rune(g.Char))
				}
				block = append(block, c.Char, c.Attr)
			}
			if i < len(g.Lines)-1 {
				block = append(block, RowSeparator)
			}
		}
		block = append(block, Terminator)
	}
	if len(block) > 0xFFFF {
		return nil, ErrBlockTooLarge
	}

	var name [NameSize]byte
	n := 0
	for _, r := range font.Name {
		if n == NameSize {
			break
		}
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			b = '?'
		}
		name[n] = b
		n++
	}

	out = append(out, Signature...)
	out = append(out, byte(n))
	out = append(out, name[:]...)
	out = append(out, 0, 0, 0, 0)
	out = append(out, byte(FontTypeColor), font.Spacing)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(block)))
	for _, off := range offsets {
		out = binary.LittleEndian.AppendUint16(out, off)
	}
	return append(out, block...), nil
}
