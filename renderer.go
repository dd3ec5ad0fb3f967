package tdfbundle

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/wbrown/tdfbundle/imageutil"
)

// Renderer lays out and draws text with the fonts of a bundle. A Renderer
// only reads its bundle, so one bundle can serve many renderers and many
// goroutines at once.
type Renderer struct {
	Options Options

	bundle   *Bundle
	bitmaps  BitmapSource
	colors   *ColorTable
	backdrop image.Image
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer for b with the given options.
// Default values: DefaultOptions(), DefaultFontBitmaps(), DefaultColorTable().
func NewRenderer(b *Bundle, opts ...RendererOption) *Renderer {
	r := &Renderer{
		Options: DefaultOptions(),
		bundle:  b,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.bitmaps == nil {
		r.bitmaps = DefaultFontBitmaps()
	}
	if r.colors == nil {
		r.colors = DefaultColorTable()
	}
	return r
}

// WithBitmaps sets the character bitmaps used to rasterize cells.
func WithBitmaps(src BitmapSource) RendererOption {
	return func(r *Renderer) {
		r.bitmaps = src
	}
}

// WithColorTable sets the colours attributes resolve to.
func WithColorTable(t *ColorTable) RendererOption {
	return func(r *Renderer) {
		r.colors = t
	}
}

// WithOptions replaces all layout options.
func WithOptions(o Options) RendererOption {
	return func(r *Renderer) {
		r.Options = o
	}
}

// WithAlign sets the line alignment.
func WithAlign(a Align) RendererOption {
	return func(r *Renderer) {
		r.Options.Align = a
	}
}

// WithBackground sets the colour of pixels no glyph covers.
func WithBackground(c color.RGBA) RendererOption {
	return func(r *Renderer) {
		r.Options.Background = c
	}
}

// WithBackdrop sets an image stretched behind the text in place of the
// background colour. RenderANSI ignores it.
func WithBackdrop(img image.Image) RendererOption {
	return func(r *Renderer) {
		r.backdrop = img
	}
}

// WithMinSpaceWidth sets the width in cells of a space the font lacks.
func WithMinSpaceWidth(cells uint) RendererOption {
	return func(r *Renderer) {
		r.Options.MinSpaceWidth = cells
	}
}

// WithExtraLineGap sets the pixel gap added between lines.
func WithExtraLineGap(px uint) RendererOption {
	return func(r *Renderer) {
		r.Options.ExtraLineGap = px
	}
}

// Layout computes the geometry of text in the given font from glyph
// metrics alone.
func (r *Renderer) Layout(key, text string) (*TextLayout, error) {
	spacing, err := r.bundle.Spacing(key)
	if err != nil {
		return nil, err
	}
	metrics := func(code byte) (Metrics, bool) {
		m, ok, _ := r.bundle.GlyphMetrics(key, code)
		return m, ok
	}
	return LayoutText(text, spacing, metrics, r.Options), nil
}

// Measure returns the pixel size of text in the given font.
func (r *Renderer) Measure(key, text string) (image.Point, error) {
	layout, err := r.Layout(key, text)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(layout.Width, layout.Height), nil
}

// Render draws text in the given font. Glyphs are top aligned within
// their line. Problems with individual glyphs are reported in the
// diagnostics and drawn as placeholders.
func (r *Renderer) Render(key, text string) (*imageutil.RGBAImage, Diagnostics, error) {
	layout, err := r.Layout(key, text)
	if err != nil {
		return nil, nil, err
	}

	img := imageutil.NewRGBAImage(layout.Width, layout.Height)
	if r.backdrop != nil && layout.Width > 0 && layout.Height > 0 {
		fitted := imageutil.Fit(imageutil.RGBAImageFromImage(r.backdrop), layout.Width, layout.Height)
		draw.Draw(img, img.Bounds(), fitted, image.Point{}, draw.Src)
	} else {
		img.Fill(r.Options.Background)
	}

	var diags Diagnostics
	err = r.eachGlyph(key, layout, func(g *Glyph, x, y int, glyphDiags Diagnostics) {
		diags = append(diags, glyphDiags...)
		drawDiags := DrawGlyph(img, g, x, y, r.bitmaps, r.colors)
		for i := range drawDiags {
			drawDiags[i].Font = key
		}
		diags = append(diags, drawDiags...)
	})
	if err != nil {
		return nil, diags, err
	}
	return img, diags, nil
}

// eachGlyph decodes every defined character of a layout and calls fn with
// the glyph and its pixel position.
func (r *Renderer) eachGlyph(key string, layout *TextLayout, fn func(g *Glyph, x, y int, diags Diagnostics)) error {
	cache := make(map[byte]*Glyph)
	for _, line := range layout.Lines {
		for _, pc := range line.Chars {
			if !pc.Defined {
				continue
			}
			g, ok := cache[pc.Code]
			var diags Diagnostics
			if !ok {
				var err error
				g, diags, err = r.bundle.DecodeGlyph(key, pc.Code)
				if err != nil {
					return err
				}
				cache[pc.Code] = g
			}
			if g == nil {
				continue
			}
			fn(g, line.X+pc.X, line.Y, diags)
		}
	}
	return nil
}
