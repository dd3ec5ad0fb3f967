package tdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ScanHeaders finds every font definition in a container and returns the
// metadata of the colour fonts. Other font types, and metadata blocks
// that run past the end of data, are skipped with a warning. Scanning
// always resumes just past the last signature, so a block size that
// overstates its data cannot hide the fonts after it.
func ScanHeaders(data []byte) ([]FontMetadata, []Warning) {
	var fonts []FontMetadata
	var warnings []Warning

	sig := []byte(Signature)
	pos := 0
	for pos < len(data) {
		i := bytes.Index(data[pos:], sig)
		if i < 0 {
			break
		}
		start := pos + i
		pos = start + len(sig)

		if start+MetadataSize > len(data) {
			warnings = append(warnings, Warning{
				Code:    WarnTruncatedHeader,
				Offset:  start,
				Message: fmt.Sprintf("font header truncated (%d of %d bytes)", len(data)-start, MetadataSize),
			})
			continue
		}

		meta := parseMetadata(data, start)
		if meta.Type != FontTypeColor {
			warnings = append(warnings, Warning{
				Code:    WarnSkippedType,
				Offset:  start,
				Font:    meta.Name,
				Message: fmt.Sprintf("skipping %s font", meta.Type),
			})
			continue
		}
		if meta.Spacing > MaxSpacing {
			warnings = append(warnings, Warning{
				Code:    WarnSpacingClamped,
				Offset:  start,
				Font:    meta.Name,
				Message: fmt.Sprintf("spacing %d clamped to %d", meta.Spacing, MaxSpacing),
			})
			meta.Spacing = MaxSpacing
		}
		if meta.DataEnd < meta.DataStart+int(meta.BlockSize) {
			warnings = append(warnings, Warning{
				Code:    WarnTruncatedBlock,
				Offset:  start,
				Font:    meta.Name,
				Message: fmt.Sprintf("data block truncated (%d of %d bytes)", meta.DataEnd-meta.DataStart, meta.BlockSize),
			})
		}
		fonts = append(fonts, meta)
	}
	return fonts, warnings
}

// parseMetadata decodes the metadata block at start. The caller has
// checked that MetadataSize bytes are available.
func parseMetadata(data []byte, start int) FontMetadata {
	p := start + len(Signature)
	meta := FontMetadata{Offset: start}

	nameLen := int(data[p])
	p++
	meta.Name = decodeName(data[p : p+min(nameLen, NameSize)])
	p += NameSize
	p += 4 // reserved
	meta.Type = FontType(data[p])
	p++
	meta.Spacing = data[p]
	p++
	meta.BlockSize = binary.LittleEndian.Uint16(data[p:])
	p += 2
	for i := range meta.Offsets {
		meta.Offsets[i] = binary.LittleEndian.Uint16(data[p:])
		p += 2
	}

	meta.DataStart = p
	meta.DataEnd = min(p+int(meta.BlockSize), len(data))
	return meta
}
