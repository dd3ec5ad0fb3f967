package tdfbundle

import (
	"image"
	"image/color"
	"image/draw"
)

// DrawGlyph rasterizes a decoded glyph with its top-left corner at
// (baseX, baseY). Each cell becomes a CellWidth x CellHeight block where
// set bitmap bits take the foreground colour of the cell's attribute and
// clear bits the background colour. Cells whose character has no bitmap
// are filled with the background colour and reported.
func DrawGlyph(dst draw.Image, g *Glyph, baseX, baseY int, src BitmapSource, colors *ColorTable) Diagnostics {
	if colors == nil {
		colors = DefaultColorTable()
	}

	var diags Diagnostics
	missing := make(map[byte]bool)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			cell := g.At(x, y)
			startX := baseX + x*CellWidth
			startY := baseY + y*CellHeight
			fg := colors.ForegroundColor(cell.Attr)
			bg := colors.BackgroundColor(cell.Attr)

			bitmap, exists := src.Glyph(cell.Char)
			if !exists {
				fillRect(dst, startX, startY, CellWidth, CellHeight, bg)
				if !missing[cell.Char] {
					missing[cell.Char] = true
					diags.add(KindMissingBitmap, "", g.Char, "no bitmap for cell code 0x%02X", cell.Char)
				}
				continue
			}
			renderBitmap(dst, bitmap, startX, startY, fg, bg)
		}
	}
	return diags
}

// renderBitmap renders a GlyphBitmap at the given position
func renderBitmap(dst draw.Image, bitmap GlyphBitmap, startX, startY int, fg, bg color.RGBA) {
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			c := bg
			if bitmap.getBit(x, y) {
				c = fg
			}
			dst.Set(startX+x, startY+y, c)
		}
	}
}

// fillRect fills a rectangle with the given color
func fillRect(dst draw.Image, x, y, width, height int, c color.Color) {
	rect := image.Rect(x, y, x+width, y+height)
	draw.Draw(dst, rect, &image.Uniform{c}, image.Point{}, draw.Src)
}
