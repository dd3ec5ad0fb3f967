package tdf

import "fmt"

// ExtractGlyph walks the cell stream of ch. It returns false when the font
// has no usable entry for ch. A stream that ends without a terminator is
// closed implicitly and reported through the returned warnings.
func ExtractGlyph(data []byte, meta *FontMetadata, ch byte) (RawGlyph, bool, []Warning) {
	if !meta.Defines(ch) {
		return RawGlyph{}, false, nil
	}
	warn := func(code WarningCode, offset int, format string, args ...any) []Warning {
		return []Warning{{
			Code:    code,
			Offset:  offset,
			Font:    meta.Name,
			Char:    ch,
			Message: fmt.Sprintf(format, args...),
		}}
	}

	end := min(meta.DataEnd, len(data))
	pos := meta.DataStart + int(meta.Offsets[ch-FirstChar])
	if pos+2 > end {
		return RawGlyph{}, false, warn(WarnBadOffset, pos, "glyph offset %d outside data block", meta.Offsets[ch-FirstChar])
	}

	glyph := RawGlyph{
		Char:           ch,
		Width:          data[pos],
		DeclaredHeight: data[pos+1],
	}
	pos += 2

	var line []Cell
	finish := func() {
		if len(line) > 0 || len(glyph.Lines) == 0 {
			glyph.Lines = append(glyph.Lines, line)
		}
	}
	for {
		if pos >= end {
			finish()
			glyph.Unterminated = true
			return glyph, true, warn(WarnUnterminated, pos, "glyph stream ends without terminator")
		}
		b := data[pos]
		pos++
		switch b {
		case Terminator:
			finish()
			return glyph, true, nil
		case RowSeparator:
			glyph.Lines = append(glyph.Lines, line)
			line = nil
		default:
			if pos >= end {
				finish()
				glyph.Unterminated = true
				return glyph, true, warn(WarnUnterminated, pos, "glyph stream ends inside a cell")
			}
			line = append(line, Cell{Char: b, Attr: data[pos]})
			pos++
		}
	}
}

// ExtractGlyphs extracts every glyph a font defines, in character order.
func ExtractGlyphs(data []byte, meta *FontMetadata) ([]RawGlyph, []Warning) {
	var glyphs []RawGlyph
	var warnings []Warning
	for ch := FirstChar; ch <= LastChar; ch++ {
		g, ok, w := ExtractGlyph(data, meta, byte(ch))
		warnings = append(warnings, w...)
		if ok {
			glyphs = append(glyphs, g)
		}
	}
	return glyphs, warnings
}
