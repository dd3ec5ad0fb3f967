package tdfbundle

import (
	"errors"
	"fmt"
)

var (
	ErrFormat          = errors.New("invalid bundle")
	ErrFontNotFound    = errors.New("font not found")
	ErrNoFonts         = errors.New("no usable fonts")
	ErrPaletteOverflow = errors.New("palette overflow")
	ErrDuplicateKey    = errors.New("duplicate font key")
	ErrGlyphTooLarge   = errors.New("glyph too large")
	ErrFontTooLarge    = errors.New("font data too large")
	ErrUnencodableRun  = errors.New("short run of the escape index")
)

// FormatError is returned by Load when a buffer is not a usable bundle.
// It is the only hard failure of the read path.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid bundle at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func formatErrorf(offset int, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
