package tdfbundle

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// TestGlyphBitmapBitOperations tests basic bit operations on GlyphBitmap
func TestGlyphBitmapBitOperations(t *testing.T) {
	var bitmap GlyphBitmap

	// Test setting bits
	bitmap.setBit(0, 0, true)
	if !bitmap.getBit(0, 0) {
		t.Error("Expected bit at (0,0) to be set")
	}
	if bitmap[0] != 0x80 {
		t.Errorf("Expected leftmost pixel in bit 7, got row %08b", bitmap[0])
	}

	bitmap.setBit(7, 15, true)
	if !bitmap.getBit(7, 15) {
		t.Error("Expected bit at (7,15) to be set")
	}

	// Test clearing bits
	bitmap.setBit(0, 0, false)
	if bitmap.getBit(0, 0) {
		t.Error("Expected bit at (0,0) to be clear")
	}

	// Test out of bounds
	bitmap.setBit(8, 16, true)
	if bitmap.getBit(8, 16) {
		t.Error("Out of bounds bit should return false")
	}
}

func countBits(g GlyphBitmap) int {
	n := 0
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if g.getBit(x, y) {
				n++
			}
		}
	}
	return n
}

// TestDefaultFontBitmaps checks the generated block and box glyphs and
// that ASCII comes from the bitmap face.
func TestDefaultFontBitmaps(t *testing.T) {
	fb := DefaultFontBitmaps()

	tests := []struct {
		code byte
		bits int
	}{
		{0x20, 0},
		{0xDB, GlyphWidth * GlyphHeight},
		{0xDC, GlyphWidth * GlyphHeight / 2},
		{0xDF, GlyphWidth * GlyphHeight / 2},
		{0xDD, GlyphWidth * GlyphHeight / 2},
		{0xB0, GlyphWidth * GlyphHeight / 4},
		{0xB1, GlyphWidth * GlyphHeight / 2},
		{0xB2, GlyphWidth * GlyphHeight * 3 / 4},
		{0xC4, GlyphWidth},
		{0xB3, GlyphHeight},
		{0xCD, 2 * GlyphWidth},
		{0xBA, 2 * GlyphHeight},
	}
	for _, tt := range tests {
		bitmap, ok := fb.Glyph(tt.code)
		if !ok {
			t.Errorf("code 0x%02X missing", tt.code)
			continue
		}
		if got := countBits(bitmap); got != tt.bits {
			t.Errorf("code 0x%02X: %d bits set, want %d", tt.code, got, tt.bits)
		}
	}

	lower, _ := fb.Glyph(0xDC)
	if lower.getBit(0, 0) || !lower.getBit(0, GlyphHeight-1) {
		t.Error("lower half block should cover the bottom rows only")
	}

	cross, _ := fb.Glyph(0xC5)
	if !cross.getBit(3, 0) || !cross.getBit(3, GlyphHeight-1) || !cross.getBit(0, 7) || !cross.getBit(7, 7) {
		t.Error("single cross should reach all four edges")
	}

	for code := 0xB3; code <= 0xDA; code++ {
		if _, ok := fb.Glyph(byte(code)); !ok {
			t.Errorf("box drawing code 0x%02X missing", code)
		}
	}

	for _, code := range []byte{'A', 'g', '0', '~'} {
		bitmap, ok := fb.Glyph(code)
		if !ok {
			t.Errorf("character %q missing", cellRune(code))
			continue
		}
		if countBits(bitmap) == 0 {
			t.Errorf("character %q is blank", cellRune(code))
		}
	}

	if _, ok := fb.Glyph(0x01); ok {
		t.Error("control codes should have no bitmap")
	}
}

// TestFontBitmapsEncodeDecode round trips glyph data through the .glyphs
// file format.
func TestFontBitmapsEncodeDecode(t *testing.T) {
	fb := DefaultFontBitmaps()

	path := filepath.Join(t.TempDir(), "builtin.glyphs")
	var buf bytes.Buffer
	if err := fb.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFontBitmaps(path)
	if err != nil {
		t.Fatalf("LoadFontBitmaps failed: %v", err)
	}
	if loaded.Name() != fb.Name() || loaded.Len() != fb.Len() {
		t.Errorf("Expected %s with %d glyphs, got %s with %d", fb.Name(), fb.Len(), loaded.Name(), loaded.Len())
	}
	for code := 0; code < 256; code++ {
		want, wantOK := fb.Glyph(byte(code))
		got, gotOK := loaded.Glyph(byte(code))
		if want != got || wantOK != gotOK {
			t.Errorf("code 0x%02X differs after round trip", code)
		}
	}
}

func TestDecodeFontBitmapsRejectsGarbage(t *testing.T) {
	if _, err := DecodeFontBitmaps(bytes.NewReader([]byte("not gzip"))); err == nil {
		t.Error("Expected error for non-gzip data")
	}
}

// TestLoadTrueTypeFont renders the Go font into cell bitmaps.
func TestLoadTrueTypeFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatal(err)
	}

	fb, err := LoadFontBitmaps(path)
	if err != nil {
		t.Fatalf("Failed to load font: %v", err)
	}
	if fb.Name() != "goregular.ttf" {
		t.Errorf("unexpected name %q", fb.Name())
	}
	for _, code := range []byte{'A', 'W', '#'} {
		bitmap, ok := fb.Glyph(code)
		if !ok {
			t.Errorf("Expected character %q", code)
			continue
		}
		if countBits(bitmap) == 0 {
			t.Errorf("character %q rendered blank", code)
		}
	}
	if space, ok := fb.Glyph(' '); !ok || countBits(space) != 0 {
		t.Error("Expected a blank space")
	}
}

// TestMissingFont tests behavior when font file doesn't exist
func TestMissingFont(t *testing.T) {
	if _, err := LoadFontBitmaps("nonexistent.ttf"); err == nil {
		t.Error("Expected error when loading non-existent font")
	}
	if _, err := LoadFontBitmaps("nonexistent.glyphs"); err == nil {
		t.Error("Expected error when loading non-existent glyph data")
	}
}

// TestDrawGlyph draws a two cell glyph at an offset.
func TestDrawGlyph(t *testing.T) {
	g := &Glyph{Char: 'X', Width: 2, Height: 1, Cells: []CellPair{
		{Char: 0xDF, Attr: 0x1F}, // upper half, white on blue
		{Char: 0x01, Attr: 0x40}, // no bitmap, red background
	}}
	dst := image.NewRGBA(image.Rect(0, 0, 4*CellWidth, CellHeight))

	diags := DrawGlyph(dst, g, CellWidth, 0, DefaultFontBitmaps(), nil)
	if diags.Count(KindMissingBitmap) != 1 {
		t.Errorf("Expected one missing-bitmap diagnostic, got %v", diags)
	}

	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 255}
	blue := color.RGBA{B: 0xAA, A: 255}
	red := color.RGBA{R: 0xAA, A: 255}
	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{}}, // untouched
		{CellWidth, 0, white},
		{2*CellWidth - 1, CellHeight/2 - 1, white},
		{CellWidth, CellHeight / 2, blue},
		{2 * CellWidth, 0, red},
		{3*CellWidth - 1, CellHeight - 1, red},
		{3 * CellWidth, 0, color.RGBA{}},
	}
	for _, c := range checks {
		if got := dst.RGBAAt(c.x, c.y); got != c.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}
