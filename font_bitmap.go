package tdfbundle

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// GlyphWidth and GlyphHeight define the size of a character bitmap,
	// which is the size of one cell.
	GlyphWidth  = CellWidth
	GlyphHeight = CellHeight
)

// GlyphBitmap is an 8x16 character bitmap, one byte per row. Bit 7 of a
// row is its leftmost pixel: 1 = foreground, 0 = background.
type GlyphBitmap [GlyphHeight]uint8

// BitmapSource supplies the pixel pattern of each CP437 character code.
type BitmapSource interface {
	Glyph(code byte) (GlyphBitmap, bool)
}

// FontBitmaps holds pre-rendered character bitmaps keyed by CP437 code.
type FontBitmaps struct {
	glyphs map[byte]GlyphBitmap
	name   string
}

// FontGlyphData represents pre-computed glyph bitmaps for a font (for serialization)
type FontGlyphData struct {
	FontName string
	Glyphs   map[byte]GlyphBitmap
}

// getBit checks if a specific bit is set in the bitmap
func (g GlyphBitmap) getBit(x, y int) bool {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return false
	}
	return g[y]&(0x80>>x) != 0
}

// setBit sets a specific bit in the bitmap
func (g *GlyphBitmap) setBit(x, y int, value bool) {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return
	}
	if value {
		g[y] |= 0x80 >> x
	} else {
		g[y] &^= 0x80 >> x
	}
}

// Glyph returns the bitmap for a character code.
func (fb *FontBitmaps) Glyph(code byte) (GlyphBitmap, bool) {
	bitmap, exists := fb.glyphs[code]
	return bitmap, exists
}

// Name returns the name of the font the bitmaps were rendered from.
func (fb *FontBitmaps) Name() string {
	return fb.name
}

// Len returns the number of character codes with a bitmap.
func (fb *FontBitmaps) Len() int {
	return len(fb.glyphs)
}

var defaultBitmaps = sync.OnceValue(buildDefaultBitmaps)

// DefaultFontBitmaps returns the built-in bitmaps. Characters the
// basicfont 7x13 face covers are drawn from it; shades, block elements and
// box drawing characters are generated.
func DefaultFontBitmaps() *FontBitmaps {
	return defaultBitmaps()
}

func buildDefaultBitmaps() *FontBitmaps {
	fb := &FontBitmaps{
		glyphs: make(map[byte]GlyphBitmap),
		name:   "builtin",
	}
	fb.glyphs[0x00] = GlyphBitmap{}
	fb.glyphs[0xFF] = GlyphBitmap{}
	for c := 0x20; c <= 0xFE; c++ {
		code := byte(c)
		if bitmap, ok := synthesizeBitmap(code); ok {
			fb.glyphs[code] = bitmap
			continue
		}
		r := cellRune(code)
		if !faceHasRune(basicfont.Face7x13, r) {
			continue
		}
		fb.glyphs[code] = renderFaceBitmap(basicfont.Face7x13, r)
	}
	return fb
}

// faceHasRune reports whether r is in one of the face's ranges. The face
// itself substitutes U+FFFD for missing runes.
func faceHasRune(face *basicfont.Face, r rune) bool {
	for _, rng := range face.Ranges {
		if r >= rng.Low && r < rng.High {
			return true
		}
	}
	return false
}

// renderFaceBitmap draws r from a fixed-size face into a cell, with the
// glyph box vertically centred.
func renderFaceBitmap(face *basicfont.Face, r rune) GlyphBitmap {
	img := image.NewAlpha(image.Rect(0, 0, GlyphWidth, GlyphHeight))
	top := (GlyphHeight - face.Height) / 2
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, top+face.Ascent),
	}
	d.DrawString(string(r))
	return bitmapFromAlpha(img)
}

// bitmapFromAlpha thresholds an alpha image at 25% coverage.
func bitmapFromAlpha(img *image.Alpha) GlyphBitmap {
	var bitmap GlyphBitmap
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if img.AlphaAt(x, y).A > 64 {
				bitmap.setBit(x, y, true)
			}
		}
	}
	return bitmap
}

// LoadFontBitmaps loads bitmaps from a .glyphs file written by
// FontBitmaps.Encode, or renders them from a TrueType font.
func LoadFontBitmaps(path string) (*FontBitmaps, error) {
	if strings.EqualFold(filepath.Ext(path), ".glyphs") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open glyph data: %w", err)
		}
		defer f.Close()
		return DecodeFontBitmaps(f)
	}
	return loadFontBitmapsFromTTF(path)
}

// DecodeFontBitmaps reads gzip-compressed gob glyph data.
func DecodeFontBitmaps(r io.Reader) (*FontBitmaps, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	var glyphData FontGlyphData
	dec := gob.NewDecoder(gr)
	if err := dec.Decode(&glyphData); err != nil {
		return nil, fmt.Errorf("failed to decode glyph data: %w", err)
	}
	if glyphData.Glyphs == nil {
		glyphData.Glyphs = make(map[byte]GlyphBitmap)
	}

	return &FontBitmaps{
		glyphs: glyphData.Glyphs,
		name:   glyphData.FontName,
	}, nil
}

// Encode writes the bitmaps as gzip-compressed gob glyph data.
func (fb *FontBitmaps) Encode(w io.Writer) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(FontGlyphData{FontName: fb.name, Glyphs: fb.glyphs}); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// loadFontBitmapsFromTTF pre-renders the CP437 repertoire of a TrueType
// font. Codes the font has no glyph for are left out.
func loadFontBitmapsFromTTF(path string) (*FontBitmaps, error) {
	ttf, err := loadFont(path)
	if err != nil {
		return nil, err
	}

	fb := &FontBitmaps{
		glyphs: make(map[byte]GlyphBitmap),
		name:   filepath.Base(path),
	}
	fb.glyphs[0x00] = GlyphBitmap{}
	for c := 0x20; c <= 0xFF; c++ {
		r := cellRune(byte(c))
		if r != ' ' && ttf.Index(r) == 0 {
			continue
		}
		fb.glyphs[byte(c)] = renderGlyphToBitmap(ttf, r)
	}
	return fb, nil
}

// loadFont loads a TrueType font from file
func loadFont(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ttf, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	return ttf, nil
}

// renderGlyphToBitmap renders a single glyph to an 8x16 bitmap.
//
// The glyph is drawn into an alpha image at a 16 point size and
// thresholded at 25% coverage so thin anti-aliased strokes survive. The
// baseline comes from the face metrics, which keeps descenders inside the
// cell for fonts with different proportions.
func renderGlyphToBitmap(ttf *truetype.Font, r rune) GlyphBitmap {
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(GlyphHeight),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, GlyphWidth, GlyphHeight))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(float64(GlyphHeight))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	ascent := metrics.Ascent.Round()
	descent := metrics.Descent.Round()
	baselineY := (GlyphHeight + ascent - descent) / 2

	ctx.DrawString(string(r), freetype.Pt(0, baselineY))
	return bitmapFromAlpha(img)
}
