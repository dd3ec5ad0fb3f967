package tdfbundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Bundle is a loaded bundle. It owns the byte buffer it was loaded from
// and never modifies it. Per-font headers are parsed on first use and
// cached; all methods are safe for concurrent use.
type Bundle struct {
	data     []byte
	fontPool int

	fonts   *orderedMap[string, uint32]      // key -> offset in the font data pool
	headers *orderedMap[uint32, *fontHeader] // offset -> parsed header

	mu    sync.Mutex
	diags Diagnostics
}

// fontHeader is the parsed fixed part of a font's data block.
type fontHeader struct {
	spacing   byte
	palette   []CellPair
	numGlyphs int
	lookup    int // absolute offset of the glyph lookup table
	glyphData int // absolute offset of the glyph data table
}

// FontInfo summarizes one font of a bundle.
type FontInfo struct {
	Key         string
	Spacing     int
	PaletteSize int
	Chars       []byte
}

// Load validates the header of a bundle and indexes its fonts. It fails
// with a *FormatError when the buffer is too short, carries the wrong
// magic or version, or declares sections outside the buffer. Index
// entries with unreadable keys or offsets are skipped and reported.
func Load(data []byte) (*Bundle, Diagnostics, error) {
	if len(data) < headerSize {
		return nil, nil, formatErrorf(0, "%d bytes is shorter than the %d byte header", len(data), headerSize)
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, nil, formatErrorf(0, "bad magic %q", data[:len(Magic)])
	}
	if v := data[4]; v != Version {
		return nil, nil, formatErrorf(4, "unsupported version %d", v)
	}

	count := uint64(binary.LittleEndian.Uint32(data[5:]))
	indexOffset := uint64(binary.LittleEndian.Uint32(data[9:]))
	strOffset := uint64(binary.LittleEndian.Uint32(data[13:]))
	dataOffset := uint64(binary.LittleEndian.Uint32(data[17:]))
	size := uint64(len(data))

	if indexOffset < headerSize || indexOffset+count*indexEntrySize > size {
		return nil, nil, formatErrorf(9, "index table of %d entries at %d exceeds %d bytes", count, indexOffset, size)
	}
	if strOffset > size {
		return nil, nil, formatErrorf(13, "string pool offset %d beyond end", strOffset)
	}
	if dataOffset > size {
		return nil, nil, formatErrorf(17, "font data offset %d beyond end", dataOffset)
	}
	if dataOffset < strOffset {
		return nil, nil, formatErrorf(17, "font data offset %d precedes string pool at %d", dataOffset, strOffset)
	}

	b := &Bundle{
		data:     data,
		fontPool: int(dataOffset),
		fonts:    newOrderedMap[string, uint32](),
		headers:  newOrderedMap[uint32, *fontHeader](),
	}

	var diags Diagnostics
	for i := uint64(0); i < count; i++ {
		entry := int(indexOffset + i*indexEntrySize)
		keyOff := uint64(binary.LittleEndian.Uint32(data[entry:]))
		fontOff := binary.LittleEndian.Uint32(data[entry+4:])

		key, err := b.readKey(strOffset+keyOff, dataOffset)
		if err != nil {
			diags.add(KindBadKey, "", 0, "index entry %d: %v", i, err)
			continue
		}
		if uint64(b.fontPool)+uint64(fontOff) >= size {
			diags.add(KindCorruptFont, key, 0, "data offset %d beyond end", fontOff)
			continue
		}
		if _, dup := b.fonts.Get(key); dup {
			diags.add(KindDuplicateKey, key, 0, "index entry %d ignored", i)
			continue
		}
		b.fonts.Set(key, fontOff)
	}
	return b, diags, nil
}

// readKey decodes the NUL-terminated key at an absolute offset. The key
// and its terminator must lie before poolEnd.
func (b *Bundle) readKey(offset, poolEnd uint64) (string, error) {
	if offset >= poolEnd {
		return "", fmt.Errorf("key offset %d outside the string pool", offset)
	}
	rest := b.data[offset:poolEnd]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", fmt.Errorf("key at %d is not terminated", offset)
	}
	if end == 0 {
		return "", fmt.Errorf("empty key at %d", offset)
	}
	if !utf8.Valid(rest[:end]) {
		return "", fmt.Errorf("key at %d is not valid UTF-8", offset)
	}
	return string(rest[:end]), nil
}

// Fonts returns the keys of all fonts, sorted.
func (b *Bundle) Fonts() []string {
	keys := b.fonts.Keys()
	sort.Strings(keys)
	return keys
}

// Diagnostics returns the problems found while lazily parsing fonts.
func (b *Bundle) Diagnostics() Diagnostics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(Diagnostics(nil), b.diags...)
}

func (b *Bundle) report(kind DiagnosticKind, font string, ch byte, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diags.add(kind, font, ch, format, args...)
}

// header returns the parsed header of a font, parsing it on first use.
// A header that runs past the end of the buffer yields a font with no
// glyphs.
func (b *Bundle) header(key string) (*fontHeader, error) {
	off, ok := b.fonts.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFontNotFound, key)
	}
	if h, ok := b.headers.Get(off); ok {
		return h, nil
	}

	h, err := b.parseHeader(b.fontPool + int(off))
	if err != nil {
		b.report(KindCorruptFont, key, 0, "%v", err)
	}
	// Two readers may race to parse the same font; both compute the same
	// header and the first one stored wins.
	return b.headers.SetIfAbsent(off, h), nil
}

func (b *Bundle) parseHeader(p int) (*fontHeader, error) {
	h := &fontHeader{}
	if p+2 > len(b.data) {
		return h, fmt.Errorf("font header at %d truncated", p)
	}
	h.spacing = b.data[p]
	n := int(b.data[p+1])
	p += 2
	if p+n*2 > len(b.data) {
		return h, fmt.Errorf("palette of %d entries at %d truncated", n, p)
	}
	h.palette = make([]CellPair, n)
	for i := range h.palette {
		h.palette[i] = CellPair{Char: b.data[p+i*2], Attr: b.data[p+i*2+1]}
	}
	p += n * 2

	if p+1 > len(b.data) {
		return h, fmt.Errorf("glyph count at %d truncated", p)
	}
	g := int(b.data[p])
	p++
	if p+g*lookupSize > len(b.data) {
		return h, fmt.Errorf("glyph lookup table of %d entries at %d truncated", g, p)
	}
	h.numGlyphs = g
	h.lookup = p
	h.glyphData = p + g*lookupSize
	return h, nil
}

// find binary searches the glyph lookup table and returns the absolute
// offset of ch's glyph record.
func (b *Bundle) find(h *fontHeader, ch byte) (int, bool) {
	i := sort.Search(h.numGlyphs, func(i int) bool {
		return b.data[h.lookup+i*lookupSize] >= ch
	})
	if i == h.numGlyphs || b.data[h.lookup+i*lookupSize] != ch {
		return 0, false
	}
	rel := binary.LittleEndian.Uint16(b.data[h.lookup+i*lookupSize+1:])
	return h.glyphData + int(rel), true
}

// glyphRecord locates ch and reads its size.
func (b *Bundle) glyphRecord(key string, ch byte) (*fontHeader, int, Metrics, bool, error) {
	h, err := b.header(key)
	if err != nil {
		return nil, 0, Metrics{}, false, err
	}
	at, ok := b.find(h, ch)
	if !ok {
		return h, 0, Metrics{}, false, nil
	}
	if at+2 > len(b.data) {
		b.report(KindCorruptFont, key, ch, "glyph record at %d beyond end", at)
		return h, 0, Metrics{}, false, nil
	}
	m := Metrics{Width: int(b.data[at]), Height: int(b.data[at+1])}
	return h, at, m, true, nil
}

// GlyphMetrics returns the size in cells of ch in the given font, without
// decoding the glyph. It fails only when the font does not exist.
func (b *Bundle) GlyphMetrics(key string, ch byte) (Metrics, bool, error) {
	_, _, m, ok, err := b.glyphRecord(key, ch)
	return m, ok, err
}

// Spacing returns the letter spacing of a font, in cells.
func (b *Bundle) Spacing(key string) (int, error) {
	h, err := b.header(key)
	if err != nil {
		return 0, err
	}
	return int(h.spacing), nil
}

// DecodeGlyph expands ch of the given font into cells. It returns nil when
// the font has no such glyph. Corrupt streams and palette indices decode to
// placeholder cells and are reported in the returned diagnostics.
func (b *Bundle) DecodeGlyph(key string, ch byte) (*Glyph, Diagnostics, error) {
	h, at, m, ok, err := b.glyphRecord(key, ch)
	if err != nil || !ok {
		return nil, nil, err
	}

	count := m.Width * m.Height
	indices, _, diags := DecodeRLE(b.data[at+2:], count)
	for i := range diags {
		diags[i].Font = key
		diags[i].Char = ch
	}

	g := &Glyph{Char: ch, Width: m.Width, Height: m.Height, Cells: make([]CellPair, count)}
	bad := 0
	for i, idx := range indices {
		if int(idx) >= len(h.palette) {
			g.Cells[i] = PaddingPair
			bad++
			continue
		}
		g.Cells[i] = h.palette[idx]
	}
	if bad > 0 {
		diags.add(KindBadPaletteIndex, key, ch, "%d cells refer past the %d entry palette", bad, len(h.palette))
	}
	return g, diags, nil
}

// FontInfo describes a font.
func (b *Bundle) FontInfo(key string) (FontInfo, error) {
	h, err := b.header(key)
	if err != nil {
		return FontInfo{}, err
	}
	info := FontInfo{
		Key:         key,
		Spacing:     int(h.spacing),
		PaletteSize: len(h.palette),
		Chars:       make([]byte, h.numGlyphs),
	}
	for i := range info.Chars {
		info.Chars[i] = b.data[h.lookup+i*lookupSize]
	}
	return info, nil
}

// FilterFontsSupporting returns the sorted keys of the fonts that define
// a glyph for every visible character of text. Whitespace and control
// characters need no glyph.
func (b *Bundle) FilterFontsSupporting(text string) []string {
	var needed []byte
	seen := make(map[byte]bool)
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		code, ok := cellCode(r)
		if !ok {
			// No font can hold a character outside the cell charset.
			return nil
		}
		if !seen[code] {
			seen[code] = true
			needed = append(needed, code)
		}
	}

	var keys []string
	for _, key := range b.Fonts() {
		h, err := b.header(key)
		if err != nil {
			continue
		}
		supported := true
		for _, code := range needed {
			if _, ok := b.find(h, code); !ok {
				supported = false
				break
			}
		}
		if supported {
			keys = append(keys, key)
		}
	}
	return keys
}
