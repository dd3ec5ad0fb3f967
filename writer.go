package tdfbundle

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// Magic opens every bundle.
	Magic = "TDFB"
	// Version is the bundle format version written and accepted.
	Version = 1

	headerSize     = 21
	indexEntrySize = 8
	lookupSize     = 3
)

// WriteBundle serializes fonts. Fonts are ordered by key, glyphs by
// character code, so the same set of fonts always produces the same bytes.
func WriteBundle(fonts []FontRecord) ([]byte, error) {
	sorted := make([]*FontRecord, len(fonts))
	for i := range fonts {
		sorted[i] = &fonts[i]
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	for i, f := range sorted {
		if f.Key == "" || strings.IndexByte(f.Key, 0) >= 0 || !utf8.ValidString(f.Key) {
			return nil, fmt.Errorf("font key %q is not a valid NUL-free UTF-8 string", f.Key)
		}
		if i > 0 && sorted[i-1].Key == f.Key {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, f.Key)
		}
	}

	var strPool []byte
	keyOffsets := make([]uint32, len(sorted))
	for i, f := range sorted {
		keyOffsets[i] = uint32(len(strPool))
		strPool = append(strPool, f.Key...)
		strPool = append(strPool, 0)
	}

	var dataPool []byte
	dataOffsets := make([]uint32, len(sorted))
	for i, f := range sorted {
		dataOffsets[i] = uint32(len(dataPool))
		var err error
		dataPool, err = appendFontData(dataPool, f)
		if err != nil {
			return nil, fmt.Errorf("font %q: %w", f.Key, err)
		}
	}

	indexOffset := headerSize
	strOffset := indexOffset + len(sorted)*indexEntrySize
	dataOffset := strOffset + len(strPool)
	if uint64(dataOffset)+uint64(len(dataPool)) > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: bundle exceeds 4 GiB", ErrFontTooLarge)
	}

	out := make([]byte, 0, dataOffset+len(dataPool))
	out = append(out, Magic...)
	out = append(out, Version)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(sorted)))
	out = binary.LittleEndian.AppendUint32(out, uint32(indexOffset))
	out = binary.LittleEndian.AppendUint32(out, uint32(strOffset))
	out = binary.LittleEndian.AppendUint32(out, uint32(dataOffset))
	for i := range sorted {
		out = binary.LittleEndian.AppendUint32(out, keyOffsets[i])
		out = binary.LittleEndian.AppendUint32(out, dataOffsets[i])
	}
	out = append(out, strPool...)
	return append(out, dataPool...), nil
}

// appendFontData writes spacing, palette, glyph lookup table and glyph
// data table of one font.
func appendFontData(out []byte, f *FontRecord) ([]byte, error) {
	if len(f.Palette) > MaxPaletteSize {
		return nil, fmt.Errorf("%w: %d entries", ErrPaletteOverflow, len(f.Palette))
	}
	if len(f.Glyphs) > 255 {
		return nil, fmt.Errorf("%w: %d glyphs", ErrFontTooLarge, len(f.Glyphs))
	}

	glyphs := append([]EncodedGlyph(nil), f.Glyphs...)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].Char < glyphs[j].Char })
	for i := 1; i < len(glyphs); i++ {
		if glyphs[i].Char == glyphs[i-1].Char {
			return nil, fmt.Errorf("glyph %q defined twice", rune(glyphs[i].Char))
		}
	}
	if _, err := glyphTableSize(glyphs); err != nil {
		return nil, err
	}

	out = append(out, f.Spacing, byte(len(f.Palette)))
	for _, c := range f.Palette {
		out = append(out, c.Char, c.Attr)
	}

	out = append(out, byte(len(glyphs)))
	rel := 0
	for _, g := range glyphs {
		out = append(out, g.Char)
		out = binary.LittleEndian.AppendUint16(out, uint16(rel))
		rel += 2 + len(g.Stream)
	}
	for _, g := range glyphs {
		out = append(out, g.Width, g.Height)
		out = append(out, g.Stream...)
	}
	return out, nil
}
