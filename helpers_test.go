package tdfbundle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/tdfbundle/tdf"
)

// row builds one glyph line of cells sharing an attribute.
func row(attr byte, s string) []tdf.Cell {
	line := make([]tdf.Cell, len(s))
	for i := range s {
		line[i] = tdf.Cell{Char: s[i], Attr: attr}
	}
	return line
}

func glyph(ch, width byte, lines ...[]tdf.Cell) tdf.RawGlyph {
	return tdf.RawGlyph{Char: ch, Width: width, Lines: lines}
}

// blockFont has a solid yellow 'A' two cells wide, a ragged 'B' and a
// three row tall 'T'.
func blockFont() tdf.ColorFont {
	return tdf.ColorFont{
		Name:    "Block",
		Spacing: 1,
		Glyphs: []tdf.RawGlyph{
			glyph('A', 2, row(0x0E, "\xdb\xdb")),
			glyph('B', 3, row(0x0C, "\xdb"), row(0x0C, "\xdb\xdb\xdb")),
			glyph('T', 1, row(0x0A, "\xdb"), row(0x0A, "\xdb"), row(0x0A, "\xdb")),
		},
	}
}

func marshalFonts(t *testing.T, fonts ...tdf.ColorFont) []byte {
	t.Helper()
	data, err := tdf.Marshal(fonts)
	require.NoError(t, err)
	return data
}

// packFonts packs each font list as one source file and loads the result.
func packFonts(t *testing.T, sources map[string][]tdf.ColorFont) (*Bundle, []byte, Diagnostics) {
	t.Helper()
	var srcs []Source
	for name, fonts := range sources {
		srcs = append(srcs, Source{Name: name, Data: marshalFonts(t, fonts...)})
	}
	data, diags, err := PackSources(context.Background(), srcs)
	require.NoError(t, err)

	b, loadDiags, err := Load(data)
	require.NoError(t, err)
	require.Empty(t, loadDiags)
	return b, data, diags
}
