package tdfbundle

import (
	"fmt"
	"strings"

	"github.com/wbrown/tdfbundle/tdf"
)

// DiagnosticKind classifies a non-fatal problem.
type DiagnosticKind int

const (
	KindSourceSkipped DiagnosticKind = iota
	KindFontSkipped
	KindTruncatedHeader
	KindUnterminatedGlyph
	KindGlyphSkipped
	KindPaletteOverflow
	KindDuplicateKey
	KindBadKey
	KindCorruptFont
	KindShortStream
	KindBadPaletteIndex
	KindMissingBitmap
	KindSpacingClamped
)

var kindNames = map[DiagnosticKind]string{
	KindSourceSkipped:     "source-skipped",
	KindFontSkipped:       "font-skipped",
	KindTruncatedHeader:   "truncated-header",
	KindUnterminatedGlyph: "unterminated-glyph",
	KindGlyphSkipped:      "glyph-skipped",
	KindPaletteOverflow:   "palette-overflow",
	KindDuplicateKey:      "duplicate-key",
	KindBadKey:            "bad-key",
	KindCorruptFont:       "corrupt-font",
	KindShortStream:       "short-stream",
	KindBadPaletteIndex:   "bad-palette-index",
	KindMissingBitmap:     "missing-bitmap",
	KindSpacingClamped:    "spacing-clamped",
}

func (k DiagnosticKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Diagnostic describes something that went wrong but was recovered from:
// a skipped font, a padded stream, a placeholder cell.
type Diagnostic struct {
	Kind    DiagnosticKind
	Source  string // file name, when packing
	Font    string // font key or source font name
	Char    byte   // 0 when not tied to a glyph
	Message string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Kind.String())
	if d.Source != "" {
		fmt.Fprintf(&sb, " %s", d.Source)
	}
	if d.Font != "" {
		fmt.Fprintf(&sb, " [%s]", d.Font)
	}
	if d.Char != 0 {
		fmt.Fprintf(&sb, " %q", rune(d.Char))
	}
	if d.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Message)
	}
	return sb.String()
}

// Diagnostics is the list of non-fatal issues returned next to a result.
type Diagnostics []Diagnostic

func (ds *Diagnostics) add(kind DiagnosticKind, font string, ch byte, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Kind:    kind,
		Font:    font,
		Char:    ch,
		Message: fmt.Sprintf(format, args...),
	})
}

// Count returns how many diagnostics have the given kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

var warningKinds = map[tdf.WarningCode]DiagnosticKind{
	tdf.WarnTruncatedHeader: KindTruncatedHeader,
	tdf.WarnSkippedType:     KindFontSkipped,
	tdf.WarnSpacingClamped:  KindSpacingClamped,
	tdf.WarnTruncatedBlock:  KindTruncatedHeader,
	tdf.WarnBadOffset:       KindGlyphSkipped,
	tdf.WarnUnterminated:    KindUnterminatedGlyph,
}

// fromWarnings converts container warnings into diagnostics.
func fromWarnings(source string, warnings []tdf.Warning) Diagnostics {
	ds := make(Diagnostics, 0, len(warnings))
	for _, w := range warnings {
		ds = append(ds, Diagnostic{
			Kind:    warningKinds[w.Code],
			Source:  source,
			Font:    w.Font,
			Char:    w.Char,
			Message: fmt.Sprintf("offset %d: %s", w.Offset, w.Message),
		})
	}
	return ds
}
