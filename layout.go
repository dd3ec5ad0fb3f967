package tdfbundle

import (
	"fmt"
	"image/color"
	"strings"
)

// Align is the horizontal alignment of lines within a text block.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign parses "left", "center" or "right".
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(s) {
	case "left", "":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Options controls text layout and rendering.
type Options struct {
	Align      Align
	Background color.RGBA

	// MinSpaceWidth is the width in cells of a space when the font has
	// no space glyph of positive width.
	MinSpaceWidth uint

	// ExtraLineGap is added in pixels between consecutive lines.
	ExtraLineGap uint
}

// DefaultOptions returns left aligned layout on an opaque black background
// with three cell wide spaces.
func DefaultOptions() Options {
	return Options{
		Align:         AlignLeft,
		Background:    color.RGBA{A: 255},
		MinSpaceWidth: 3,
	}
}

// MetricsFunc reports the size of a character of some font.
type MetricsFunc func(code byte) (Metrics, bool)

// PlacedChar is one character of a laid out line.
type PlacedChar struct {
	Code    byte
	X       int // pixel offset from the start of the line
	Width   int // pixels
	Height  int // pixels
	Defined bool
}

// Line is one laid out line of text.
type Line struct {
	Chars  []PlacedChar
	X, Y   int // pixel position of the line within the block
	Width  int
	Height int
}

// TextLayout is the pixel geometry of a block of text.
type TextLayout struct {
	Lines  []Line
	Width  int
	Height int
}

// LayoutText positions every character of text. Lines are separated by
// "\n"; spacing is the font's letter spacing in cells. Characters the
// font does not define take no width but still occupy one cell row.
func LayoutText(text string, spacing int, metrics MetricsFunc, opts Options) *TextLayout {
	layout := &TextLayout{}
	for _, s := range strings.Split(text, "\n") {
		line := layoutLine(strings.TrimSuffix(s, "\r"), spacing*CellWidth, metrics, opts)
		layout.Width = max(layout.Width, line.Width)
		layout.Lines = append(layout.Lines, line)
	}
	layout.Width = max(layout.Width, CellWidth)

	y := 0
	for i := range layout.Lines {
		line := &layout.Lines[i]
		if i > 0 {
			y += int(opts.ExtraLineGap)
		}
		line.Y = y
		y += line.Height
		switch opts.Align {
		case AlignCenter:
			line.X = (layout.Width - line.Width) / 2
		case AlignRight:
			line.X = layout.Width - line.Width
		}
	}
	layout.Height = y
	return layout
}

func layoutLine(s string, spacing int, metrics MetricsFunc, opts Options) Line {
	line := Line{Height: CellHeight}
	x, placed := 0, 0
	for _, r := range s {
		pc := placeChar(r, metrics, opts)
		if pc.Width > 0 {
			if placed > 0 {
				x += spacing
			}
			placed++
		}
		pc.X = x
		x += pc.Width
		line.Height = max(line.Height, pc.Height)
		line.Chars = append(line.Chars, pc)
	}
	line.Width = x
	return line
}

func placeChar(r rune, metrics MetricsFunc, opts Options) PlacedChar {
	code, ok := cellCode(r)
	if !ok {
		return PlacedChar{Code: '?', Height: CellHeight}
	}
	pc := PlacedChar{Code: code, Height: CellHeight}
	m, defined := metrics(code)
	if r == ' ' {
		if defined && m.Width > 0 {
			pc.Defined = true
			pc.Width = m.Width * CellWidth
			pc.Height = max(m.Height, 1) * CellHeight
		} else {
			pc.Width = int(opts.MinSpaceWidth) * CellWidth
		}
		return pc
	}
	if defined {
		pc.Defined = true
		pc.Width = m.Width * CellWidth
		pc.Height = max(m.Height, 1) * CellHeight
	}
	return pc
}
