package tdfbundle

import (
	"bytes"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/tdfbundle/tdf"
)

var (
	yellow = color.RGBA{R: 0xFF, G: 0xFF, B: 0x55, A: 255}
	black  = color.RGBA{A: 255}
	red    = color.RGBA{R: 0xFF, A: 255}
)

// noBitmaps is a bitmap source without any characters.
type noBitmaps struct{}

func (noBitmaps) Glyph(byte) (GlyphBitmap, bool) { return GlyphBitmap{}, false }

func blockBundle(t *testing.T) *Bundle {
	t.Helper()
	b, _, _ := packFonts(t, map[string][]tdf.ColorFont{"blocks.tdf": {blockFont()}})
	return b
}

func TestMeasureScenario(t *testing.T) {
	font := tdf.ColorFont{
		Name:    "Scenario",
		Spacing: 1,
		Glyphs:  []tdf.RawGlyph{glyph('A', 2, row(0x07, "AA"))},
	}
	b, _, _ := packFonts(t, map[string][]tdf.ColorFont{"s.tdf": {font}})
	r := NewRenderer(b, WithMinSpaceWidth(3))

	size, err := r.Measure("s/Scenario", "A A")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(9*CellWidth, CellHeight), size)

	size, err = r.Measure("s/Scenario", "")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(CellWidth, CellHeight), size)

	_, err = r.Measure("s/Missing", "A")
	assert.ErrorIs(t, err, ErrFontNotFound)
}

func TestRenderPixels(t *testing.T) {
	r := NewRenderer(blockBundle(t), WithBackground(red))
	img, diags, err := r.Render("blocks/Block", "A A")
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 9*CellWidth, img.Width())
	require.Equal(t, CellHeight, img.Height())

	for x := 0; x < img.Width(); x++ {
		want := red
		if x < 2*CellWidth || x >= 7*CellWidth {
			want = yellow
		}
		for y := 0; y < CellHeight; y++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRenderPaddingAndTallGlyphs(t *testing.T) {
	r := NewRenderer(blockBundle(t), WithBackground(red))
	img, _, err := r.Render("blocks/Block", "BT")
	require.NoError(t, err)
	// B is 3x2, T is 1x3, one cell apart.
	require.Equal(t, 5*CellWidth, img.Width())
	require.Equal(t, 3*CellHeight, img.Height())

	lightRed := color.RGBA{R: 0xFF, G: 0x55, B: 0x55, A: 255}
	lightGreen := color.RGBA{R: 0x55, G: 0xFF, B: 0x55, A: 255}
	assert.Equal(t, lightRed, img.RGBAAt(0, 0))
	// Padding cells draw as a black space.
	assert.Equal(t, black, img.RGBAAt(CellWidth, 0))
	assert.Equal(t, lightRed, img.RGBAAt(2*CellWidth, CellHeight))
	// Below the shorter B is uncovered background.
	assert.Equal(t, red, img.RGBAAt(0, 2*CellHeight))
	// The spacing column and the tall T.
	assert.Equal(t, red, img.RGBAAt(3*CellWidth, 0))
	assert.Equal(t, lightGreen, img.RGBAAt(4*CellWidth, 2*CellHeight+CellHeight-1))
}

func TestRenderAlignment(t *testing.T) {
	r := NewRenderer(blockBundle(t), WithBackground(red), WithAlign(AlignRight))
	img, _, err := r.Render("blocks/Block", "AA\nA")
	require.NoError(t, err)
	require.Equal(t, 5*CellWidth, img.Width())
	assert.Equal(t, red, img.RGBAAt(0, CellHeight))
	assert.Equal(t, yellow, img.RGBAAt(3*CellWidth, CellHeight))
}

func TestRenderMissingBitmap(t *testing.T) {
	r := NewRenderer(blockBundle(t), WithBitmaps(noBitmaps{}), WithBackground(red))
	img, diags, err := r.Render("blocks/Block", "A")
	require.NoError(t, err)
	assert.Equal(t, black, img.RGBAAt(0, 0))
	require.Equal(t, 1, diags.Count(KindMissingBitmap))
	assert.Equal(t, "blocks/Block", diags[0].Font)
}

func TestRenderUnknownFont(t *testing.T) {
	r := NewRenderer(blockBundle(t))
	_, _, err := r.Render("blocks/Nope", "A")
	assert.ErrorIs(t, err, ErrFontNotFound)
	_, _, err = r.RenderANSI("blocks/Nope", "A")
	assert.ErrorIs(t, err, ErrFontNotFound)
}

func TestRenderWithOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.ExtraLineGap = 3
	r := NewRenderer(blockBundle(t), WithOptions(opts), WithExtraLineGap(5))
	size, err := r.Measure("blocks/Block", "A\nA")
	require.NoError(t, err)
	assert.Equal(t, 2*CellHeight+5, size.Y)
}

func TestRenderBackdrop(t *testing.T) {
	blue := color.RGBA{B: 0xFF, A: 255}
	backdrop := image.NewRGBA(image.Rect(0, 0, 3, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 3; x++ {
			backdrop.SetRGBA(x, y, blue)
		}
	}

	r := NewRenderer(blockBundle(t), WithBackground(red), WithBackdrop(backdrop))
	img, diags, err := r.Render("blocks/Block", "A A")
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 9*CellWidth, img.Width())
	assert.Equal(t, yellow, img.RGBAAt(0, 0))
	for _, p := range []image.Point{{2 * CellWidth, 0}, {7*CellWidth - 1, CellHeight - 1}} {
		got := img.RGBAAt(p.X, p.Y)
		assert.InDelta(t, 0xFF, int(got.B), 1, "blue at %v", p)
		assert.InDelta(t, 0, int(got.R), 1, "red at %v", p)
	}
	assert.Equal(t, yellow, img.RGBAAt(7*CellWidth, 0))

	// The terminal rendering keeps using the background colour.
	out, _, err := r.RenderANSI("blocks/Block", "A A")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[0;41m     ")
}

func TestRenderANSI(t *testing.T) {
	r := NewRenderer(blockBundle(t))
	out, diags, err := r.RenderANSI("blocks/Block", "A")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "\x1b[93;40m██\x1b[0m\n", out)

	out, _, err = r.RenderANSI("blocks/Block", "A A")
	require.NoError(t, err)
	assert.Equal(t, "\x1b[93;40m██\x1b[0;40m     \x1b[93;40m██\x1b[0m\n", out)

	out, _, err = r.RenderANSI("blocks/Block", "B")
	require.NoError(t, err)
	assert.Equal(t, "\x1b[91;40m█\x1b[30;40m  \x1b[0m\n\x1b[91;40m███\x1b[0m\n", out)
}

func TestRenderANSIBackground(t *testing.T) {
	r := NewRenderer(blockBundle(t), WithBackground(red))
	out, _, err := r.RenderANSI("blocks/Block", "A A")
	require.NoError(t, err)
	assert.Equal(t, "\x1b[93;40m██\x1b[0;41m     \x1b[93;40m██\x1b[0m\n", out)

	// A transparent background leaves the terminal's colours alone.
	r = NewRenderer(blockBundle(t), WithBackground(color.RGBA{}))
	out, _, err = r.RenderANSI("blocks/Block", "A A")
	require.NoError(t, err)
	assert.Equal(t, "\x1b[93;40m██\x1b[0m     \x1b[93;40m██\x1b[0m\n", out)
}

func TestANSICodes(t *testing.T) {
	fg := map[int]int{0: 30, 1: 34, 2: 32, 3: 36, 4: 31, 5: 35, 6: 33, 7: 37, 8: 90, 9: 94, 12: 91, 14: 93, 15: 97}
	for index, want := range fg {
		assert.Equal(t, want, ansiCode(index, false), "foreground %d", index)
	}
	bg := map[int]int{0: 40, 1: 44, 4: 41, 6: 43, 7: 47}
	for index, want := range bg {
		assert.Equal(t, want, ansiCode(index, true), "background %d", index)
	}
}

func TestConcurrentRendering(t *testing.T) {
	_, data, _ := packFonts(t, map[string][]tdf.ColorFont{"blocks.tdf": {blockFont()}})
	b, _, err := Load(data)
	require.NoError(t, err)
	r := NewRenderer(b)

	want, _, err := NewRenderer(blockBundle(t)).Render("blocks/Block", "ABT\nTBA")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, _, err := r.Render("blocks/Block", "ABT\nTBA")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = img.Pix
		}()
	}
	wg.Wait()

	for i, pix := range results {
		assert.True(t, bytes.Equal(want.Pix, pix), "goroutine %d rendered different pixels", i)
	}
}
