package tdfbundle

import (
	"strconv"
	"strings"
)

// ESC starts an ANSI escape sequence.
const ESC = "\u001b"

// ansiCell is one terminal cell. Unset cells take the background option:
// the nearest of the eight background colours, or the terminal's own
// colours when the background is transparent.
type ansiCell struct {
	pair CellPair
	set  bool
}

// RenderANSI renders text as lines of SGR coloured UTF-8 for a terminal.
// Cell characters are translated from CP437 and the colour codes are only
// emitted when they change, so runs of identical cells share one sequence.
func (r *Renderer) RenderANSI(key, text string) (string, Diagnostics, error) {
	layout, err := r.Layout(key, text)
	if err != nil {
		return "", nil, err
	}

	cols := (layout.Width + CellWidth - 1) / CellWidth
	rows := (layout.Height + CellHeight - 1) / CellHeight
	grid := make([][]ansiCell, rows)
	for i := range grid {
		grid[i] = make([]ansiCell, cols)
	}

	var diags Diagnostics
	err = r.eachGlyph(key, layout, func(g *Glyph, x, y int, glyphDiags Diagnostics) {
		diags = append(diags, glyphDiags...)
		col, row := x/CellWidth, y/CellHeight
		for gy := 0; gy < g.Height; gy++ {
			for gx := 0; gx < g.Width; gx++ {
				if row+gy < rows && col+gx < cols {
					grid[row+gy][col+gx] = ansiCell{pair: g.At(gx, gy), set: true}
				}
			}
		}
	})
	if err != nil {
		return "", diags, err
	}

	blank := "0"
	if bg := r.Options.Background; bg.A != 0 {
		blank = "0;" + strconv.Itoa(ansiCode(r.colors.NearestBackground(bg), true))
	}
	var sb strings.Builder
	for _, row := range grid {
		writeANSIRow(&sb, row, blank)
	}
	return sb.String(), diags, nil
}

// writeANSIRow writes one grid row, emitting an SGR sequence only when the
// colours change, and resets the colours at the end of the line. Unset
// cells use the blank SGR code.
func writeANSIRow(sb *strings.Builder, row []ansiCell, blank string) {
	current := ""
	for _, c := range row {
		code := blank
		if c.set {
			code = sgrCode(c.pair.Attr)
		}
		if code != current {
			sb.WriteString(ESC)
			sb.WriteByte('[')
			sb.WriteString(code)
			sb.WriteByte('m')
			current = code
		}
		sb.WriteRune(displayRune(c.pair.Char))
	}
	sb.WriteString(ESC + "[0m\n")
}

// sgrCode returns the SGR parameters selecting an attribute's colours.
func sgrCode(attr byte) string {
	return strconv.Itoa(ansiCode(Foreground(attr), false)) + ";" +
		strconv.Itoa(ansiCode(Background(attr), true))
}

// displayRune returns the printable rune for a cell code. Control codes
// show as spaces.
func displayRune(code byte) rune {
	if code < 0x20 || code == 0x7F {
		return ' '
	}
	return cellRune(code)
}
