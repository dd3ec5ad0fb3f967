package tdfbundle

import (
	"errors"
	"fmt"

	"github.com/wbrown/tdfbundle/tdf"
)

// EncodedGlyph is a glyph ready to be written: its grid size and the RLE
// stream of palette indices, row-major.
type EncodedGlyph struct {
	Char   byte
	Width  byte
	Height byte
	Stream []byte
}

// FontRecord is one font of a bundle.
type FontRecord struct {
	Key     string
	Spacing byte
	Palette []CellPair
	Glyphs  []EncodedGlyph
}

// EncodeGlyph flattens a glyph into palette indices, filling ragged lines
// with the padding cell, and compresses the result.
func EncodeGlyph(g tdf.RawGlyph, p *Palette) (EncodedGlyph, error) {
	w, h := g.GridWidth(), g.Height()
	if w > 255 || h > 255 {
		return EncodedGlyph{}, fmt.Errorf("%w: %dx%d", ErrGlyphTooLarge, w, h)
	}

	indices := make([]byte, w*h)
	if g.Ragged() {
		pad, ok := p.Index(PaddingPair)
		if !ok {
			return EncodedGlyph{}, errors.New("ragged glyph but palette has no padding cell")
		}
		for i := range indices {
			indices[i] = pad
		}
	}
	for y, line := range g.Lines {
		for x, c := range line {
			idx, ok := p.Index(c)
			if !ok {
				return EncodedGlyph{}, fmt.Errorf("cell %v missing from palette", c)
			}
			indices[y*w+x] = idx
		}
	}

	stream, err := EncodeRLE(indices)
	if err != nil {
		return EncodedGlyph{}, err
	}
	return EncodedGlyph{
		Char:   g.Char,
		Width:  byte(w),
		Height: byte(h),
		Stream: stream,
	}, nil
}

// BuildFont turns the glyphs of one source font into a FontRecord. A
// palette overflow or an oversized glyph table fails the whole font; a
// glyph that cannot be encoded is dropped and reported.
func BuildFont(key string, spacing byte, glyphs []tdf.RawGlyph) (*FontRecord, Diagnostics, error) {
	var diags Diagnostics

	palette, err := BuildPalette(glyphs)
	if err != nil {
		return nil, nil, err
	}

	rec := &FontRecord{
		Key:     key,
		Spacing: min(spacing, tdf.MaxSpacing),
		Palette: palette.Pairs(),
	}
	for _, g := range glyphs {
		if g.Unterminated {
			diags.add(KindUnterminatedGlyph, key, g.Char, "glyph closed implicitly")
		}
		enc, err := EncodeGlyph(g, palette)
		if err != nil {
			diags.add(KindGlyphSkipped, key, g.Char, "%v", err)
			continue
		}
		rec.Glyphs = append(rec.Glyphs, enc)
	}
	if _, err := glyphTableSize(rec.Glyphs); err != nil {
		return nil, diags, err
	}
	return rec, diags, nil
}

// glyphTableSize returns the size of the glyph data table and checks that
// every glyph starts at an offset a 16-bit lookup entry can address.
func glyphTableSize(glyphs []EncodedGlyph) (int, error) {
	size := 0
	for _, g := range glyphs {
		if size > 0xFFFF {
			return 0, fmt.Errorf("%w: glyph %q at offset %d", ErrFontTooLarge, rune(g.Char), size)
		}
		size += 2 + len(g.Stream)
	}
	return size, nil
}
