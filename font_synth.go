package tdfbundle

// Generated bitmaps for the CP437 shade, block and box drawing ranges,
// which TheDraw fonts are mostly made of.

// arm is the line style of one side of a box drawing character.
type arm uint8

const (
	noArm arm = iota
	singleArm
	doubleArm
)

// boxArms lists up, down, left and right arms of 0xB3-0xDA.
var boxArms = map[byte][4]arm{
	0xB3: {singleArm, singleArm, noArm, noArm},
	0xB4: {singleArm, singleArm, singleArm, noArm},
	0xB5: {singleArm, singleArm, doubleArm, noArm},
	0xB6: {doubleArm, doubleArm, singleArm, noArm},
	0xB7: {noArm, doubleArm, singleArm, noArm},
	0xB8: {noArm, singleArm, doubleArm, noArm},
	0xB9: {doubleArm, doubleArm, doubleArm, noArm},
	0xBA: {doubleArm, doubleArm, noArm, noArm},
	0xBB: {noArm, doubleArm, doubleArm, noArm},
	0xBC: {doubleArm, noArm, doubleArm, noArm},
	0xBD: {doubleArm, noArm, singleArm, noArm},
	0xBE: {singleArm, noArm, doubleArm, noArm},
	0xBF: {noArm, singleArm, singleArm, noArm},
	0xC0: {singleArm, noArm, noArm, singleArm},
	0xC1: {singleArm, noArm, singleArm, singleArm},
	0xC2: {noArm, singleArm, singleArm, singleArm},
	0xC3: {singleArm, singleArm, noArm, singleArm},
	0xC4: {noArm, noArm, singleArm, singleArm},
	0xC5: {singleArm, singleArm, singleArm, singleArm},
	0xC6: {singleArm, singleArm, noArm, doubleArm},
	0xC7: {doubleArm, doubleArm, noArm, singleArm},
	0xC8: {doubleArm, noArm, noArm, doubleArm},
	0xC9: {noArm, doubleArm, noArm, doubleArm},
	0xCA: {doubleArm, noArm, doubleArm, doubleArm},
	0xCB: {noArm, doubleArm, doubleArm, doubleArm},
	0xCC: {doubleArm, doubleArm, noArm, doubleArm},
	0xCD: {noArm, noArm, doubleArm, doubleArm},
	0xCE: {doubleArm, doubleArm, doubleArm, doubleArm},
	0xCF: {singleArm, noArm, doubleArm, doubleArm},
	0xD0: {doubleArm, noArm, singleArm, singleArm},
	0xD1: {noArm, singleArm, doubleArm, doubleArm},
	0xD2: {noArm, doubleArm, singleArm, singleArm},
	0xD3: {doubleArm, noArm, noArm, singleArm},
	0xD4: {singleArm, noArm, noArm, doubleArm},
	0xD5: {noArm, singleArm, noArm, doubleArm},
	0xD6: {noArm, doubleArm, noArm, singleArm},
	0xD7: {doubleArm, doubleArm, singleArm, singleArm},
	0xD8: {singleArm, singleArm, doubleArm, doubleArm},
	0xD9: {singleArm, noArm, singleArm, noArm},
	0xDA: {noArm, singleArm, noArm, singleArm},
}

// Pixel positions of vertical and horizontal strokes by style.
var (
	strokeColumns = [3][]int{noArm: nil, singleArm: {3}, doubleArm: {2, 5}}
	strokeRows    = [3][]int{noArm: nil, singleArm: {7}, doubleArm: {6, 9}}
)

// synthesizeBitmap returns a generated bitmap for code, if it has one.
func synthesizeBitmap(code byte) (GlyphBitmap, bool) {
	var g GlyphBitmap
	switch code {
	case 0x20:
	case 0xB0:
		g.fill(func(x, y int) bool { return x%2 == 0 && y%2 == 0 })
	case 0xB1:
		g.fill(func(x, y int) bool { return (x+y)%2 == 0 })
	case 0xB2:
		g.fill(func(x, y int) bool { return x%2 == 0 || y%2 == 0 })
	case 0xDB:
		g.fill(func(x, y int) bool { return true })
	case 0xDC:
		g.fill(func(x, y int) bool { return y >= GlyphHeight/2 })
	case 0xDD:
		g.fill(func(x, y int) bool { return x < GlyphWidth/2 })
	case 0xDE:
		g.fill(func(x, y int) bool { return x >= GlyphWidth/2 })
	case 0xDF:
		g.fill(func(x, y int) bool { return y < GlyphHeight/2 })
	case 0xFE:
		g.fill(func(x, y int) bool { return x >= 2 && x <= 5 && y >= 5 && y <= 10 })
	default:
		arms, ok := boxArms[code]
		if !ok {
			return g, false
		}
		g.drawBox(arms)
	}
	return g, true
}

func (g *GlyphBitmap) fill(on func(x, y int) bool) {
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if on(x, y) {
				g.setBit(x, y, true)
			}
		}
	}
}

// drawBox draws the strokes of a box drawing character. Vertical strokes
// reach the outermost horizontal stroke and vice versa, so joints close.
func (g *GlyphBitmap) drawBox(arms [4]arm) {
	up, down, left, right := arms[0], arms[1], arms[2], arms[3]
	cols := strokeColumns[max(up, down)]
	rows := strokeRows[max(left, right)]

	// Without a crossing stroke, arms meet at the cell centre.
	top, bottom := GlyphHeight/2-1, GlyphHeight/2-1
	if len(rows) > 0 {
		top, bottom = rows[0], rows[len(rows)-1]
	}
	leftEnd, rightEnd := GlyphWidth/2-1, GlyphWidth/2-1
	if len(cols) > 0 {
		leftEnd, rightEnd = cols[0], cols[len(cols)-1]
	}

	for _, x := range strokeColumns[up] {
		g.vline(x, 0, bottom)
	}
	for _, x := range strokeColumns[down] {
		g.vline(x, top, GlyphHeight-1)
	}
	for _, y := range strokeRows[left] {
		g.hline(y, 0, rightEnd)
	}
	for _, y := range strokeRows[right] {
		g.hline(y, leftEnd, GlyphWidth-1)
	}
}

func (g *GlyphBitmap) vline(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		g.setBit(x, y, true)
	}
}

func (g *GlyphBitmap) hline(y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		g.setBit(x, y, true)
	}
}
